package commands

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	dashboard "github.com/saludarte/go-master-dashboard/components/dashboard"
	"github.com/saludarte/go-master-dashboard/pkg/masterapi"
)

type stubTelemetry struct {
	events []string
	last   map[string]any
}

func (s *stubTelemetry) Record(_ context.Context, event string, payload map[string]any) {
	s.events = append(s.events, event)
	s.last = payload
}

type stubActions struct {
	calls    []string
	lastID   string
	lastForm dashboard.ProductForm
	upload   dashboard.CatalogUpload
	err      error
}

func (s *stubActions) record(_ context.Context, name string) (dashboard.ActionResult, error) {
	s.calls = append(s.calls, name)
	if s.err != nil {
		return dashboard.ActionResult{Status: dashboard.ActionFailed}, s.err
	}
	return dashboard.ActionResult{Status: dashboard.ActionSucceeded}, nil
}

func (s *stubActions) AddProduct(ctx context.Context, form dashboard.ProductForm) (dashboard.ActionResult, error) {
	s.lastForm = form
	return s.record(ctx, "add")
}

func (s *stubActions) UploadCatalog(ctx context.Context, upload dashboard.CatalogUpload) (dashboard.ActionResult, error) {
	s.upload = upload
	return s.record(ctx, "upload")
}

func (s *stubActions) DeleteProduct(ctx context.Context, id string) (dashboard.ActionResult, error) {
	s.lastID = id
	return s.record(ctx, "delete")
}

func (s *stubActions) ResolveCase(ctx context.Context, id string) (dashboard.ActionResult, error) {
	s.lastID = id
	return s.record(ctx, "resolve")
}

func (s *stubActions) AddNotes(ctx context.Context, id string) (dashboard.ActionResult, error) {
	s.lastID = id
	return s.record(ctx, "notes")
}

func resolverFor(actions Actions, sessions *[]string) Resolver {
	return func(_ context.Context, session, _ string) (Actions, error) {
		if sessions != nil {
			*sessions = append(*sessions, session)
		}
		return actions, nil
	}
}

func TestAddProductCommand(t *testing.T) {
	actions := &stubActions{}
	telemetry := &stubTelemetry{}
	var sessions []string
	cmd := NewAddProductCommand(resolverFor(actions, &sessions), telemetry)

	form := dashboard.ProductForm{Name: "Árnica", Symptoms: "golpes", Presentation: "gel"}
	if err := cmd.Execute(context.Background(), AddProductInput{Target: Target{Session: "s1"}, Form: form}); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if actions.lastForm != form {
		t.Fatalf("expected form forwarded, got %+v", actions.lastForm)
	}
	if len(sessions) != 1 || sessions[0] != "s1" {
		t.Fatalf("expected session s1 resolved, got %v", sessions)
	}
	if len(telemetry.events) != 1 || telemetry.events[0] != "master.product.add" {
		t.Fatalf("expected telemetry event, got %v", telemetry.events)
	}
	if telemetry.last["status"] != dashboard.ActionSucceeded {
		t.Fatalf("expected status in telemetry, got %v", telemetry.last)
	}
}

func TestUploadCatalogCommand(t *testing.T) {
	actions := &stubActions{}
	cmd := NewUploadCatalogCommand(resolverFor(actions, nil), nil)
	_, err := cmd.Run(context.Background(), UploadCatalogInput{Filename: "catalogo.xlsx", Content: strings.NewReader("x")})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if actions.upload.Filename != "catalogo.xlsx" || actions.upload.Content == nil {
		t.Fatalf("expected upload forwarded, got %+v", actions.upload)
	}
}

func TestDeleteProductCommandCancelsWithoutConfirmation(t *testing.T) {
	client := masterapi.NewMockClient(masterapi.DemoData(time.Now()))
	sessions := dashboard.NewSessions(func(session, locale string) (*dashboard.Controller, error) {
		return dashboard.NewController(dashboard.ControllerOptions{Client: client, Session: session, Locale: locale})
	}, nil)
	t.Cleanup(func() { sessions.Drop("s1") })
	cmd := NewDeleteProductCommand(SessionResolver(sessions), nil)

	products, _ := client.ListProducts(context.Background())
	res, err := cmd.Run(context.Background(), DeleteProductInput{Target: Target{Session: "s1"}, ProductID: products[0].ID})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if res.Status != dashboard.ActionCancelled {
		t.Fatalf("expected cancelled delete, got %s", res.Status)
	}
	after, _ := client.ListProducts(context.Background())
	if len(after) != len(products) {
		t.Fatalf("expected catalog untouched")
	}

	res, err = cmd.Run(context.Background(), DeleteProductInput{Target: Target{Session: "s1"}, ProductID: products[0].ID, Confirmed: true})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if res.Status != dashboard.ActionSucceeded || res.Reloaded != dashboard.ViewCatalog {
		t.Fatalf("unexpected result %+v", res)
	}
	after, _ = client.ListProducts(context.Background())
	if len(after) != len(products)-1 {
		t.Fatalf("expected product deleted, got %d products", len(after))
	}
}

func TestResolveCaseCommand(t *testing.T) {
	actions := &stubActions{}
	cmd := NewResolveCaseCommand(resolverFor(actions, nil), nil)
	res, err := cmd.Run(context.Background(), ResolveCaseInput{Target: Target{ActorID: "op-1"}, CaseID: "abc123"})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if actions.lastID != "abc123" || res.Status != dashboard.ActionSucceeded {
		t.Fatalf("expected case id forwarded, got %q %s", actions.lastID, res.Status)
	}
}

func TestAddNotesCommandAgainstController(t *testing.T) {
	client := masterapi.NewMockClient(masterapi.DemoData(time.Now()))
	activity := &recordingActivity{}
	sessions := dashboard.NewSessions(func(session, locale string) (*dashboard.Controller, error) {
		return dashboard.NewController(dashboard.ControllerOptions{Client: client, Session: session, Activity: activity})
	}, nil)
	t.Cleanup(func() { sessions.Drop("s1") })
	cmd := NewAddNotesCommand(SessionResolver(sessions), nil)
	target := Target{Session: "s1", ActorID: "op-9"}

	res, err := cmd.Run(context.Background(), AddNotesInput{Target: target, CaseID: "c-1001", Notes: "   ", Provided: true})
	if err != nil || res.Status != dashboard.ActionCancelled {
		t.Fatalf("expected blank notes to cancel, got %+v (%v)", res, err)
	}

	res, err = cmd.Run(context.Background(), AddNotesInput{Target: target, CaseID: "c-1001", Notes: "llamar", Provided: true})
	if err != nil || res.Status != dashboard.ActionSucceeded {
		t.Fatalf("expected notes added, got %+v (%v)", res, err)
	}
	if len(activity.events) != 1 || activity.events[0].Actor.ActorID != "op-9" {
		t.Fatalf("expected activity with actor, got %+v", activity.events)
	}
	cases, _ := client.ListUnresolved(context.Background(), dashboard.CaseQuery{})
	if cases[0].Notes != "llamar" {
		t.Fatalf("expected notes stored, got %q", cases[0].Notes)
	}
}

func TestCommandsPropagateErrors(t *testing.T) {
	boom := errors.New("boom")
	actions := &stubActions{err: boom}
	telemetry := &stubTelemetry{}
	cmd := NewResolveCaseCommand(resolverFor(actions, nil), telemetry)
	if err := cmd.Execute(context.Background(), ResolveCaseInput{CaseID: "x"}); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if telemetry.last["error"] != "boom" {
		t.Fatalf("expected error recorded, got %v", telemetry.last)
	}

	nilResolver := NewAddProductCommand(nil, nil)
	if err := nilResolver.Execute(context.Background(), AddProductInput{}); !errors.Is(err, ErrNoResolver) {
		t.Fatalf("expected ErrNoResolver, got %v", err)
	}
}

type recordingActivity struct {
	events []dashboard.ActivityEvent
}

func (r *recordingActivity) Notify(_ context.Context, evt dashboard.ActivityEvent) error {
	r.events = append(r.events, evt)
	return nil
}
