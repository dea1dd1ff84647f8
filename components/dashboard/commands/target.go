package commands

import (
	"context"
	"errors"

	dashboard "github.com/saludarte/go-master-dashboard/components/dashboard"
)

// ErrNoResolver is returned when a command is built without a session resolver.
var ErrNoResolver = errors.New("commands: session resolver is required")

// Target addresses the session an action runs in and the operator behind it.
type Target struct {
	Session  string `json:"session"`
	Locale   string `json:"locale"`
	ActorID  string `json:"actor_id"`
	UserID   string `json:"user_id"`
	TenantID string `json:"tenant_id"`
}

func (t Target) withActivity(ctx context.Context) context.Context {
	return dashboard.ContextWithActivity(ctx, dashboard.ActivityContext{
		ActorID:  t.ActorID,
		UserID:   t.UserID,
		TenantID: t.TenantID,
	})
}

// Actions is the controller surface the commands drive.
type Actions interface {
	AddProduct(ctx context.Context, form dashboard.ProductForm) (dashboard.ActionResult, error)
	UploadCatalog(ctx context.Context, upload dashboard.CatalogUpload) (dashboard.ActionResult, error)
	DeleteProduct(ctx context.Context, id string) (dashboard.ActionResult, error)
	ResolveCase(ctx context.Context, id string) (dashboard.ActionResult, error)
	AddNotes(ctx context.Context, id string) (dashboard.ActionResult, error)
}

var _ Actions = (*dashboard.Controller)(nil)

// Resolver finds the controller of a session.
type Resolver func(ctx context.Context, session, locale string) (Actions, error)

// SessionResolver resolves controllers from a session pool.
func SessionResolver(sessions *dashboard.Sessions) Resolver {
	return func(ctx context.Context, session, locale string) (Actions, error) {
		c, err := sessions.Get(ctx, session, locale)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
}

func (r Resolver) resolve(ctx context.Context, t Target) (Actions, error) {
	if r == nil {
		return nil, ErrNoResolver
	}
	return r(ctx, t.Session, t.Locale)
}
