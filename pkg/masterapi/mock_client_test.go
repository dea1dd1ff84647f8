package masterapi

import (
	"context"
	"strings"
	"testing"
	"time"

	dashboard "github.com/saludarte/go-master-dashboard/components/dashboard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockClientReturnsClones(t *testing.T) {
	client := NewMockClient(MockData{
		Products: []dashboard.Product{{Name: "Árnica", Extra: map[string]string{"stock": "3"}}},
		Analytics: dashboard.AnalyticsSnapshot{
			TopProducts: []dashboard.CountEntry{{Label: "Árnica", Count: 3}},
		},
	})
	ctx := context.Background()

	products, err := client.ListProducts(ctx)
	require.NoError(t, err)
	products[0].Extra["stock"] = "0"
	products[0].Name = "changed"

	again, _ := client.ListProducts(ctx)
	assert.Equal(t, "Árnica", again[0].Name)
	assert.Equal(t, "3", again[0].Extra["stock"])

	snap, _ := client.FetchAnalytics(ctx, 30)
	snap.TopProducts[0].Count = 99
	snap, _ = client.FetchAnalytics(ctx, 30)
	assert.Equal(t, 3, snap.TopProducts[0].Count)
}

func TestMockClientMutationsAreObservable(t *testing.T) {
	client := NewMockClient(DemoData(time.Date(2025, 6, 27, 12, 0, 0, 0, time.UTC)))
	ctx := context.Background()

	before, _ := client.ListProducts(ctx)
	_, err := client.AddProduct(ctx, dashboard.ProductForm{Name: "Tila", Symptoms: "nervios", Presentation: "infusión"})
	require.NoError(t, err)
	after, _ := client.ListProducts(ctx)
	require.Len(t, after, len(before)+1)
	last := after[len(after)-1]
	assert.Equal(t, ProductID("Tila", "nervios", "infusión", 0), last.ID)
	assert.Equal(t, len(after)-1, last.Position)

	_, err = client.DeleteProduct(ctx, 0)
	require.NoError(t, err)
	remaining, _ := client.ListProducts(ctx)
	assert.Equal(t, 0, remaining[0].Position)
	assert.Equal(t, before[1].ID, remaining[0].ID)

	_, err = client.DeleteProduct(ctx, 99)
	assert.Equal(t, "Índice de producto inválido", dashboard.ServerMessage(err))

	_, err = client.AddProduct(ctx, dashboard.ProductForm{})
	assert.Error(t, err)
}

func TestMockClientCases(t *testing.T) {
	client := NewMockClient(DemoData(time.Now()))
	ctx := context.Background()

	_, err := client.ResolveCase(ctx, "c-1001")
	require.NoError(t, err)
	pending, _ := client.ListUnresolved(ctx, dashboard.CaseQuery{Status: "pending"})
	assert.Empty(t, pending)
	all, _ := client.ListUnresolved(ctx, dashboard.CaseQuery{Status: "all"})
	assert.Len(t, all, 2)

	_, err = client.AddCaseNotes(ctx, "c-1002", "   ")
	assert.Equal(t, "Notas requeridas", dashboard.ServerMessage(err))
	_, err = client.AddCaseNotes(ctx, "missing", "hola")
	assert.Equal(t, "Caso no encontrado", dashboard.ServerMessage(err))
}

func TestMockClientSearchFilterAndUpload(t *testing.T) {
	client := NewMockClient(DemoData(time.Now()))
	ctx := context.Background()

	found, _ := client.SearchProducts(ctx, "INSOMNIO")
	require.Len(t, found, 1)
	assert.Equal(t, "Valeriana", found[0].Name)

	digestive, _ := client.FilterProducts(ctx, "digestivo")
	require.Len(t, digestive, 1)
	assert.Equal(t, "Manzanilla", digestive[0].Name)

	movements, _ := client.ListMovements(ctx, dashboard.MovementQuery{Limit: 2})
	assert.Len(t, movements, 2)

	_, err := client.UploadCatalog(ctx, dashboard.CatalogUpload{Filename: "c.xlsx", Content: strings.NewReader("x")})
	require.NoError(t, err)
	_, err = client.UploadCatalog(ctx, dashboard.CatalogUpload{})
	require.ErrorIs(t, err, dashboard.ErrNoFile)
}
