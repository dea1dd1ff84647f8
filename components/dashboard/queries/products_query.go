package queries

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/saludarte/go-master-dashboard/components/dashboard"
)

// ProductsInput narrows the catalog table by search text or category.
// Search wins when both are set.
type ProductsInput struct {
	Session  string `json:"session"`
	Locale   string `json:"locale"`
	Search   string `json:"q"`
	Category string `json:"category"`
}

// ProductsQuery replaces the catalog table with search or filter results.
type ProductsQuery struct {
	resolver Resolver
}

// NewProductsQuery builds the query.
func NewProductsQuery(resolver Resolver) *ProductsQuery {
	return &ProductsQuery{resolver: resolver}
}

var _ gocommand.Querier[ProductsInput, dashboard.ProductTable] = (*ProductsQuery)(nil)

// Query runs the search or filter and returns the rendered table.
func (q *ProductsQuery) Query(ctx context.Context, input ProductsInput) (dashboard.ProductTable, error) {
	if q.resolver == nil {
		return dashboard.ProductTable{}, ErrNoResolver
	}
	ctl, err := q.resolver(ctx, input.Session, input.Locale)
	if err != nil {
		return dashboard.ProductTable{}, err
	}
	if input.Search != "" || input.Category == "" {
		err = ctl.SearchProducts(ctx, input.Search)
	} else {
		err = ctl.FilterProducts(ctx, input.Category)
	}
	return ctl.Snapshot().Products, err
}
