package commands

import (
	"context"
	"io"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/saludarte/go-master-dashboard/components/dashboard"
)

// AddProductInput carries the add-product dialog.
type AddProductInput struct {
	Target
	Form dashboard.ProductForm `json:"form"`
}

// AddProductCommand creates a catalog product.
type AddProductCommand struct {
	resolver  Resolver
	telemetry Telemetry
}

// NewAddProductCommand builds the command.
func NewAddProductCommand(resolver Resolver, telemetry Telemetry) *AddProductCommand {
	return &AddProductCommand{resolver: resolver, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[AddProductInput] = (*AddProductCommand)(nil)

// Execute adds the product.
func (c *AddProductCommand) Execute(ctx context.Context, msg AddProductInput) error {
	_, err := c.Run(ctx, msg)
	return err
}

// Run adds the product and reports what the dialog should do next.
func (c *AddProductCommand) Run(ctx context.Context, msg AddProductInput) (dashboard.ActionResult, error) {
	ctl, err := c.resolver.resolve(ctx, msg.Target)
	if err != nil {
		return dashboard.ActionResult{Status: dashboard.ActionFailed}, err
	}
	ctx = msg.withActivity(ctx)
	res, err := ctl.AddProduct(ctx, msg.Form)
	recordResult(ctx, c.telemetry, "master.product.add", res, err, map[string]any{"name": msg.Form.Name})
	return res, err
}

// UploadCatalogInput carries the catalog spreadsheet.
type UploadCatalogInput struct {
	Target
	Filename string    `json:"filename"`
	Content  io.Reader `json:"-"`
}

// UploadCatalogCommand replaces the catalog with a spreadsheet.
type UploadCatalogCommand struct {
	resolver  Resolver
	telemetry Telemetry
}

// NewUploadCatalogCommand builds the command.
func NewUploadCatalogCommand(resolver Resolver, telemetry Telemetry) *UploadCatalogCommand {
	return &UploadCatalogCommand{resolver: resolver, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[UploadCatalogInput] = (*UploadCatalogCommand)(nil)

// Execute uploads the catalog.
func (c *UploadCatalogCommand) Execute(ctx context.Context, msg UploadCatalogInput) error {
	_, err := c.Run(ctx, msg)
	return err
}

// Run uploads the catalog and returns the action outcome.
func (c *UploadCatalogCommand) Run(ctx context.Context, msg UploadCatalogInput) (dashboard.ActionResult, error) {
	ctl, err := c.resolver.resolve(ctx, msg.Target)
	if err != nil {
		return dashboard.ActionResult{Status: dashboard.ActionFailed}, err
	}
	ctx = msg.withActivity(ctx)
	res, err := ctl.UploadCatalog(ctx, dashboard.CatalogUpload{Filename: msg.Filename, Content: msg.Content})
	recordResult(ctx, c.telemetry, "master.catalog.upload", res, err, map[string]any{"filename": msg.Filename})
	return res, err
}

// DeleteProductInput identifies the product to delete. Confirmed records the
// operator's answer to the confirmation dialog.
type DeleteProductInput struct {
	Target
	ProductID string `json:"product_id"`
	Confirmed bool   `json:"confirmed"`
}

// DeleteProductCommand removes a catalog product.
type DeleteProductCommand struct {
	resolver  Resolver
	telemetry Telemetry
}

// NewDeleteProductCommand builds the command.
func NewDeleteProductCommand(resolver Resolver, telemetry Telemetry) *DeleteProductCommand {
	return &DeleteProductCommand{resolver: resolver, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[DeleteProductInput] = (*DeleteProductCommand)(nil)

// Execute deletes the product.
func (c *DeleteProductCommand) Execute(ctx context.Context, msg DeleteProductInput) error {
	_, err := c.Run(ctx, msg)
	return err
}

// Run deletes the product. Without confirmation the action is cancelled.
func (c *DeleteProductCommand) Run(ctx context.Context, msg DeleteProductInput) (dashboard.ActionResult, error) {
	ctl, err := c.resolver.resolve(ctx, msg.Target)
	if err != nil {
		return dashboard.ActionResult{Status: dashboard.ActionFailed}, err
	}
	ctx = dashboard.ContextWithPrompter(msg.withActivity(ctx), dashboard.Answers{Confirmed: msg.Confirmed})
	res, err := ctl.DeleteProduct(ctx, msg.ProductID)
	recordResult(ctx, c.telemetry, "master.product.delete", res, err, map[string]any{"product_id": msg.ProductID})
	return res, err
}
