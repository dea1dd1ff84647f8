package dashboard

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewControllerRequiresClient(t *testing.T) {
	_, err := NewController(ControllerOptions{})
	if !errors.Is(err, ErrMissingClient) {
		t.Fatalf("expected ErrMissingClient, got %v", err)
	}
}

func TestInitRendersCatalogWithPlaceholders(t *testing.T) {
	client := newStubClient()
	client.products = func(context.Context) ([]Product, error) {
		return []Product{{ID: "p1", Name: "Árnica", Symptoms: "golpes", Presentation: ""}}, nil
	}
	c := newTestController(client, &manualScheduler{})

	require.NoError(t, c.Init(context.Background()))

	snap := c.Snapshot()
	require.Len(t, snap.Products.Rows, 1)
	row := snap.Products.Rows[0]
	assert.Equal(t, "Árnica", row.Name)
	assert.Equal(t, "golpes", row.Symptoms)
	assert.Equal(t, "No especificada", row.Presentation)
	assert.Equal(t, "p1", row.ID)
	assert.Equal(t, ViewCatalog, snap.Active)
	assert.Empty(t, snap.Alerts)
}

func TestLoadFailureKeepsPreviousTableAndAlerts(t *testing.T) {
	client := newStubClient()
	fail := false
	client.products = func(context.Context) ([]Product, error) {
		if fail {
			return nil, &TransportError{Method: "GET", Path: "/master/api/products", Err: errors.New("connection refused")}
		}
		return []Product{{ID: "p1", Name: "Árnica"}}, nil
	}
	c := newTestController(client, &manualScheduler{})
	require.NoError(t, c.LoadProducts(context.Background()))

	fail = true
	err := c.LoadProducts(context.Background())
	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)

	snap := c.Snapshot()
	require.Len(t, snap.Products.Rows, 1, "previous rows stay in place")
	require.Len(t, snap.Alerts, 1)
	assert.Equal(t, "Error cargando productos", snap.Alerts[0].Message)
	assert.Equal(t, "alert-danger", snap.Alerts[0].Class)
}

func TestSearchFailureIsLoggedWithoutAlert(t *testing.T) {
	client := newStubClient()
	client.search = func(context.Context, string) ([]Product, error) {
		return nil, &ApplicationError{Path: "/master/api/products/search", Status: 500, Message: "boom"}
	}
	c := newTestController(client, &manualScheduler{})

	err := c.SearchProducts(context.Background(), "dolor")
	require.Error(t, err)
	assert.Empty(t, c.Snapshot().Alerts)
	assert.Equal(t, 1, client.count("SearchProducts"))
}

func TestSearchBlankQueryLoadsCatalog(t *testing.T) {
	client := newStubClient()
	c := newTestController(client, &manualScheduler{})
	require.NoError(t, c.SearchProducts(context.Background(), "   "))
	assert.Equal(t, 0, client.count("SearchProducts"))
	assert.Equal(t, 1, client.count("ListProducts"))
}

func TestFilterReplacesProducts(t *testing.T) {
	client := newStubClient()
	var got string
	client.filter = func(_ context.Context, category string) ([]Product, error) {
		got = category
		return []Product{{ID: "a"}, {ID: "b"}}, nil
	}
	c := newTestController(client, &manualScheduler{})
	require.NoError(t, c.FilterProducts(context.Background(), " gel "))
	assert.Equal(t, "gel", got)
	assert.Len(t, c.Snapshot().Products.Rows, 2)
}

func TestStaleResponseIsDiscarded(t *testing.T) {
	client := newStubClient()
	started := make(chan struct{})
	release := make(chan struct{})
	var mu sync.Mutex
	calls := 0
	client.products = func(context.Context) ([]Product, error) {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()
		if n == 1 {
			close(started)
			<-release
			return []Product{{ID: "old", Name: "Viejo"}}, nil
		}
		return []Product{{ID: "new", Name: "Nuevo"}}, nil
	}
	c := newTestController(client, &manualScheduler{})

	done := make(chan error, 1)
	go func() { done <- c.LoadProducts(context.Background()) }()
	<-started
	require.NoError(t, c.LoadProducts(context.Background()))
	close(release)
	require.NoError(t, <-done)

	rows := c.Snapshot().Products.Rows
	require.Len(t, rows, 1)
	assert.Equal(t, "new", rows[0].ID)
}

func TestActivateDispatchesEachView(t *testing.T) {
	client := newStubClient()
	c := newTestController(client, &manualScheduler{})
	ctx := context.Background()

	view, err := c.Activate(ctx, "#movements")
	require.NoError(t, err)
	assert.Equal(t, ViewMovements, view)
	_, err = c.Activate(ctx, "unresolved")
	require.NoError(t, err)
	_, err = c.Activate(ctx, "analytics")
	require.NoError(t, err)
	_, err = c.Activate(ctx, "catalog")
	require.NoError(t, err)
	_, err = c.Activate(ctx, "#movements")
	require.NoError(t, err)

	assert.Equal(t, 2, client.count("ListMovements"), "no caching between activations")
	assert.Equal(t, 1, client.count("ListUnresolved"))
	assert.Equal(t, 1, client.count("FetchAnalytics"))
	assert.Equal(t, 1, client.count("FetchProblemAnalysis"))
	assert.Equal(t, 1, client.count("ListProducts"))
	assert.Equal(t, ViewMovements, c.Snapshot().Active)

	_, err = c.Activate(ctx, "#settings")
	assert.ErrorIs(t, err, ErrUnknownView)
}

func TestLoadAnalyticsFailsWhenEitherPayloadFails(t *testing.T) {
	client := newStubClient()
	client.problems = func(context.Context) (ProblemAnalysis, error) {
		return ProblemAnalysis{}, &ApplicationError{Path: "/master/api/problem-analysis", Message: "Error interno"}
	}
	c := newTestController(client, &manualScheduler{})
	err := c.LoadAnalytics(context.Background())
	require.Error(t, err)
	alerts := c.Snapshot().Alerts
	require.Len(t, alerts, 1)
	assert.Equal(t, "Error cargando análisis avanzado", alerts[0].Message)
}

func TestLoadAnalyticsRendersPanel(t *testing.T) {
	client := newStubClient()
	client.analytics = func(_ context.Context, days int) (AnalyticsSnapshot, error) {
		return AnalyticsSnapshot{
			TotalConsultations: 42,
			DailyAverage:       1.4,
			TopProducts:        []CountEntry{{"Árnica", 4}, {"Manzanilla", 2}},
		}, nil
	}
	client.problems = func(context.Context) (ProblemAnalysis, error) {
		return ProblemAnalysis{Categories: []CountEntry{{"dolor", 1}}}, nil
	}
	c := newTestController(client, &manualScheduler{})
	require.NoError(t, c.LoadAnalytics(context.Background()))

	panel := c.Snapshot().Analytics
	assert.Equal(t, 42, panel.Summary.TotalConsultations)
	require.Len(t, panel.TopProducts.Bars, 2)
	assert.Equal(t, 50.0, panel.TopProducts.Bars[1].Percent)
	assert.True(t, panel.TopSymptoms.Empty)
	assert.Equal(t, "1 caso", panel.Categories.Rows[0].CountLabel)
	assert.True(t, panel.Suggestions.Empty)
}

func TestResolveCaseScenario(t *testing.T) {
	client := newStubClient()
	var resolved []string
	client.resolve = func(_ context.Context, id string) (MutationResult, error) {
		resolved = append(resolved, id)
		return MutationResult{Message: "ok"}, nil
	}
	client.unresolved = func(context.Context, CaseQuery) ([]UnresolvedCase, error) {
		return []UnresolvedCase{{ID: "abc123", Status: StatusResolved}}, nil
	}
	sched := &manualScheduler{}
	c := newTestController(client, sched)

	res, err := c.ResolveCase(context.Background(), "abc123")
	require.NoError(t, err)

	assert.Equal(t, ActionSucceeded, res.Status)
	assert.Equal(t, []string{"abc123"}, resolved)
	assert.Equal(t, 1, client.count("ListUnresolved"))
	alerts := c.Snapshot().Alerts
	require.Len(t, alerts, 1)
	assert.Equal(t, AlertSuccess, alerts[0].Kind)
	assert.Equal(t, "Caso marcado como resuelto", alerts[0].Message)

	sched.Advance(4 * time.Second)
	assert.Len(t, c.Snapshot().Alerts, 1)
	sched.Advance(time.Second)
	assert.Empty(t, c.Snapshot().Alerts)
}

func TestAddProductServerRejectionKeepsDialogOpen(t *testing.T) {
	client := newStubClient()
	client.addProduct = func(context.Context, ProductForm) (MutationResult, error) {
		return MutationResult{}, &ApplicationError{Path: "/master/api/products/add", Status: 400, Message: "Nombre requerido"}
	}
	c := newTestController(client, &manualScheduler{})

	res, err := c.AddProduct(context.Background(), ProductForm{Name: "X", Symptoms: "Y", Presentation: "Z"})
	require.Error(t, err)
	assert.Equal(t, ActionFailed, res.Status)
	assert.False(t, res.CloseDialog)
	assert.False(t, res.ResetForm)
	assert.Equal(t, 0, client.count("ListProducts"), "no re-fetch after failure")
	alerts := c.Snapshot().Alerts
	require.Len(t, alerts, 1)
	assert.Equal(t, "Nombre requerido", alerts[0].Message)
	assert.Equal(t, AlertError, alerts[0].Kind)
}

func TestAddProductTransportFailureUsesGenericMessage(t *testing.T) {
	client := newStubClient()
	client.addProduct = func(context.Context, ProductForm) (MutationResult, error) {
		return MutationResult{}, &TransportError{Method: "POST", Path: "/master/api/products/add", Err: errors.New("reset")}
	}
	c := newTestController(client, &manualScheduler{})
	_, err := c.AddProduct(context.Background(), ProductForm{Name: "X", Symptoms: "Y", Presentation: "Z"})
	require.Error(t, err)
	assert.Equal(t, "Error agregando producto", c.Snapshot().Alerts[0].Message)
}

func TestAddProductSuccessReloadsAndEmitsActivity(t *testing.T) {
	client := newStubClient()
	client.products = func(context.Context) ([]Product, error) {
		return []Product{{ID: "p1", Name: "Árnica"}}, nil
	}
	activity := &recordingActivity{}
	c := newTestController(client, &manualScheduler{}, func(o *ControllerOptions) { o.Activity = activity })
	ctx := ContextWithActivity(context.Background(), ActivityContext{ActorID: "admin-1"})

	res, err := c.AddProduct(ctx, ProductForm{Name: "Árnica", Symptoms: "golpes", Presentation: "gel"})
	require.NoError(t, err)
	assert.True(t, res.CloseDialog)
	assert.True(t, res.ResetForm)
	assert.Equal(t, ViewCatalog, res.Reloaded)
	assert.Equal(t, 1, client.count("AddProduct"))
	assert.Equal(t, 1, client.count("ListProducts"))
	assert.Equal(t, "Producto agregado exitosamente", c.Snapshot().Alerts[0].Message)

	require.Len(t, activity.events, 1)
	assert.Equal(t, VerbProductAdd, activity.events[0].Verb)
	assert.Equal(t, "admin-1", activity.events[0].Actor.ActorID)
}

func TestAddProductInvalidFormSendsNothing(t *testing.T) {
	client := newStubClient()
	c := newTestController(client, &manualScheduler{})
	res, err := c.AddProduct(context.Background(), ProductForm{Name: "Árnica"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, ActionFailed, res.Status)
	assert.Equal(t, 0, client.count("AddProduct"))
}

func TestUploadCatalogSchedulesFollowUpNotice(t *testing.T) {
	client := newStubClient()
	sched := &manualScheduler{}
	c := newTestController(client, sched)

	res, err := c.UploadCatalog(context.Background(), CatalogUpload{Filename: "catalogo.xlsx", Content: strings.NewReader("xlsx")})
	require.NoError(t, err)
	assert.True(t, res.CloseDialog)
	assert.Equal(t, 1, client.count("ListProducts"))

	alerts := c.Snapshot().Alerts
	require.Len(t, alerts, 1)
	assert.Equal(t, "Catálogo actualizado exitosamente", alerts[0].Message)

	sched.Advance(2 * time.Second)
	alerts = c.Snapshot().Alerts
	require.Len(t, alerts, 2)
	assert.Equal(t, AlertInfo, alerts[1].Kind)
	assert.Equal(t, "El sistema se ha actualizado con el nuevo catálogo", alerts[1].Message)

	sched.Advance(3 * time.Second)
	alerts = c.Snapshot().Alerts
	require.Len(t, alerts, 1, "first banner expires on its own timer")
	assert.Equal(t, AlertInfo, alerts[0].Kind)
}

func TestUploadCatalogRequiresFile(t *testing.T) {
	client := newStubClient()
	c := newTestController(client, &manualScheduler{})
	_, err := c.UploadCatalog(context.Background(), CatalogUpload{})
	assert.ErrorIs(t, err, ErrNoFile)
	assert.Equal(t, 0, client.count("UploadCatalog"))
}

func TestDeleteProductCancelledWithoutConfirmation(t *testing.T) {
	client := newStubClient()
	c := newTestController(client, &manualScheduler{})
	res, err := c.DeleteProduct(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, ActionCancelled, res.Status)
	assert.Equal(t, 0, client.count("DeleteProduct"))
	assert.Equal(t, 0, client.count("ListProducts"))
}

func TestDeleteProductResolvesCurrentPosition(t *testing.T) {
	client := newStubClient()
	catalog := []Product{{ID: "a", Position: 0}, {ID: "b", Position: 1}, {ID: "c", Position: 2}}
	client.products = func(context.Context) ([]Product, error) { return catalog, nil }
	var deleted []int
	client.deleteProduct = func(_ context.Context, index int) (MutationResult, error) {
		deleted = append(deleted, index)
		return MutationResult{}, nil
	}
	c := newTestController(client, &manualScheduler{})
	ctx := ContextWithPrompter(context.Background(), Answers{Confirmed: true})

	res, err := c.DeleteProduct(ctx, "c")
	require.NoError(t, err)
	assert.Equal(t, ActionSucceeded, res.Status)
	assert.Equal(t, []int{2}, deleted)
	assert.Equal(t, 2, client.count("ListProducts"), "resolve position, then reload")
	assert.Equal(t, "Producto eliminado exitosamente", c.Snapshot().Alerts[0].Message)
}

func TestDeleteProductMissingID(t *testing.T) {
	client := newStubClient()
	client.products = func(context.Context) ([]Product, error) { return []Product{{ID: "a"}}, nil }
	c := newTestController(client, &manualScheduler{}, func(o *ControllerOptions) {
		o.Prompter = Answers{Confirmed: true}
	})
	_, err := c.DeleteProduct(context.Background(), "gone")
	assert.ErrorIs(t, err, ErrProductNotFound)
	assert.Equal(t, 0, client.count("DeleteProduct"))
}

func TestAddNotesRequiresNonBlankAnswer(t *testing.T) {
	client := newStubClient()
	c := newTestController(client, &manualScheduler{})

	res, err := c.AddNotes(ContextWithPrompter(context.Background(), Answers{Text: "   ", Provided: true}), "abc123")
	require.NoError(t, err)
	assert.Equal(t, ActionCancelled, res.Status)

	res, err = c.AddNotes(ContextWithPrompter(context.Background(), Answers{}), "abc123")
	require.NoError(t, err)
	assert.Equal(t, ActionCancelled, res.Status)
	assert.Equal(t, 0, client.count("AddCaseNotes"))
}

func TestAddNotesPostsAndReloads(t *testing.T) {
	client := newStubClient()
	var gotID, gotNotes string
	client.notes = func(_ context.Context, id, notes string) (MutationResult, error) {
		gotID, gotNotes = id, notes
		return MutationResult{}, nil
	}
	c := newTestController(client, &manualScheduler{})
	ctx := ContextWithPrompter(context.Background(), Answers{Text: "Revisar con farmacia", Provided: true})

	res, err := c.AddNotes(ctx, "abc123")
	require.NoError(t, err)
	assert.Equal(t, ActionSucceeded, res.Status)
	assert.Equal(t, "abc123", gotID)
	assert.Equal(t, "Revisar con farmacia", gotNotes)
	assert.Equal(t, 1, client.count("ListUnresolved"))
	assert.Equal(t, "Notas agregadas exitosamente", c.Snapshot().Alerts[0].Message)
}

func TestEditProductPrefillsForm(t *testing.T) {
	client := newStubClient()
	client.products = func(context.Context) ([]Product, error) {
		return []Product{{ID: "p1", Name: "Árnica", Symptoms: "golpes", Presentation: "gel", Benefits: "antiinflamatorio"}}, nil
	}
	c := newTestController(client, &manualScheduler{})
	form, err := c.EditProduct(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, ProductForm{Name: "Árnica", Symptoms: "golpes", Presentation: "gel", Benefits: "antiinflamatorio"}, form)
}

func TestControllerPublishesEvents(t *testing.T) {
	client := newStubClient()
	hook := NewBroadcastHook()
	events, cancel := hook.Subscribe()
	defer cancel()
	c := newTestController(client, &manualScheduler{}, func(o *ControllerOptions) { o.Events = hook })

	require.NoError(t, c.LoadMovements(context.Background()))

	select {
	case evt := <-events:
		assert.Equal(t, EventViewReplaced, evt.Type)
		assert.Equal(t, ViewMovements, evt.View)
		assert.Equal(t, "s1", evt.Session)
	default:
		t.Fatalf("expected view event")
	}
}

func TestRenderPageUsesTemplates(t *testing.T) {
	client := newStubClient()
	renderer := &stubRenderer{}
	c := newTestController(client, &manualScheduler{}, func(o *ControllerOptions) { o.Renderer = renderer })

	var buf bytes.Buffer
	require.NoError(t, c.RenderPage(context.Background(), &buf))
	assert.Equal(t, "<master_dashboard.html>", buf.String())
	assert.Contains(t, renderer.calls, "tabs/catalog.html")
	assert.Contains(t, renderer.calls, "tabs/analytics.html")
	assert.Contains(t, renderer.calls, "partials/alerts.html")

	buf.Reset()
	require.NoError(t, c.RenderView(context.Background(), ViewMovements, &buf))
	assert.Equal(t, "<tabs/movements.html>", buf.String())
}
