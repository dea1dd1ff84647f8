package dashboard

import (
	"context"
	"time"
)

// ActivityContext captures the operator identifiers attached to activity events.
type ActivityContext struct {
	ActorID  string
	UserID   string
	TenantID string
}

// ActivityEvent records a successful operator mutation.
type ActivityEvent struct {
	Verb       string
	ObjectType string
	ObjectID   string
	Actor      ActivityContext
	Metadata   map[string]any
	OccurredAt time.Time
}

// ActivityHook receives operator activity; pkg/activity provides adapters.
type ActivityHook interface {
	Notify(ctx context.Context, event ActivityEvent) error
}

// Activity verbs emitted by the controller.
const (
	VerbProductAdd    = "product.add"
	VerbProductDelete = "product.delete"
	VerbCatalogUpload = "catalog.upload"
	VerbCaseResolve   = "case.resolve"
	VerbCaseNotes     = "case.notes"
)

type activityContextKey struct{}

// ContextWithActivity stores activity context on the provided context.
func ContextWithActivity(ctx context.Context, meta ActivityContext) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, activityContextKey{}, meta)
}

func activityContextFrom(ctx context.Context) ActivityContext {
	if ctx == nil {
		return ActivityContext{}
	}
	if meta, ok := ctx.Value(activityContextKey{}).(ActivityContext); ok {
		return meta
	}
	return ActivityContext{}
}
