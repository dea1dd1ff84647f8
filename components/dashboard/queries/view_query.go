package queries

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/saludarte/go-master-dashboard/components/dashboard"
)

// ErrNoResolver is returned when a query is built without a session resolver.
var ErrNoResolver = errors.New("queries: session resolver is required")

// Views is the read surface of a session controller.
type Views interface {
	Activate(ctx context.Context, target string) (dashboard.View, error)
	SearchProducts(ctx context.Context, query string) error
	FilterProducts(ctx context.Context, category string) error
	Snapshot() dashboard.PageSnapshot
}

var _ Views = (*dashboard.Controller)(nil)

// Resolver finds the controller of a session.
type Resolver func(ctx context.Context, session, locale string) (Views, error)

// SessionResolver resolves controllers from a session pool.
func SessionResolver(sessions *dashboard.Sessions) Resolver {
	return func(ctx context.Context, session, locale string) (Views, error) {
		c, err := sessions.Get(ctx, session, locale)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
}

// ViewInput names the tab to activate.
type ViewInput struct {
	Session string `json:"session"`
	Locale  string `json:"locale"`
	Target  string `json:"target"`
}

// ViewQuery activates a tab, which always re-fetches its data, and returns
// the resulting page state.
type ViewQuery struct {
	resolver Resolver
}

// NewViewQuery builds the query.
func NewViewQuery(resolver Resolver) *ViewQuery {
	return &ViewQuery{resolver: resolver}
}

var _ gocommand.Querier[ViewInput, dashboard.PageSnapshot] = (*ViewQuery)(nil)

// Query activates the view. A failed load still returns the snapshot, which
// keeps the previous rows and carries the error banner.
func (q *ViewQuery) Query(ctx context.Context, input ViewInput) (dashboard.PageSnapshot, error) {
	if q.resolver == nil {
		return dashboard.PageSnapshot{}, ErrNoResolver
	}
	ctl, err := q.resolver(ctx, input.Session, input.Locale)
	if err != nil {
		return dashboard.PageSnapshot{}, err
	}
	if _, err := ctl.Activate(ctx, input.Target); err != nil {
		return ctl.Snapshot(), err
	}
	return ctl.Snapshot(), nil
}

// SnapshotInput identifies a session.
type SnapshotInput struct {
	Session string `json:"session"`
	Locale  string `json:"locale"`
}

// SnapshotQuery returns the current page state without fetching.
type SnapshotQuery struct {
	resolver Resolver
}

// NewSnapshotQuery builds the query.
func NewSnapshotQuery(resolver Resolver) *SnapshotQuery {
	return &SnapshotQuery{resolver: resolver}
}

var _ gocommand.Querier[SnapshotInput, dashboard.PageSnapshot] = (*SnapshotQuery)(nil)

// Query returns the session snapshot.
func (q *SnapshotQuery) Query(ctx context.Context, input SnapshotInput) (dashboard.PageSnapshot, error) {
	if q.resolver == nil {
		return dashboard.PageSnapshot{}, ErrNoResolver
	}
	ctl, err := q.resolver(ctx, input.Session, input.Locale)
	if err != nil {
		return dashboard.PageSnapshot{}, err
	}
	return ctl.Snapshot(), nil
}
