package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"

	"github.com/saludarte/go-master-dashboard/components/dashboard"
	"github.com/saludarte/go-master-dashboard/components/intake"
)

type productsCmd struct {
	List   productsListCmd   `cmd:"" default:"1" help:"List the catalog."`
	Search productsSearchCmd `cmd:"" help:"Search products by name or symptom."`
	Filter productsFilterCmd `cmd:"" help:"Filter products by category."`
	Add    productsAddCmd    `cmd:"" help:"Add a product."`
	Delete productsDeleteCmd `cmd:"" help:"Delete a product by ID."`
}

type productsListCmd struct{}

func (cmd *productsListCmd) Run(ctx context.Context, g *Globals) error {
	return withConsole(g, func(c *console) error {
		err := c.ctl.LoadProducts(ctx)
		c.out.Products(c.ctl.Snapshot().Products)
		return c.finish(dashboard.ActionResult{}, err)
	})
}

type productsSearchCmd struct {
	Query string `arg:"" optional:"" help:"Search text; empty lists everything."`
}

func (cmd *productsSearchCmd) Run(ctx context.Context, g *Globals) error {
	return withConsole(g, func(c *console) error {
		err := c.ctl.SearchProducts(ctx, cmd.Query)
		c.out.Products(c.ctl.Snapshot().Products)
		return c.finish(dashboard.ActionResult{}, err)
	})
}

type productsFilterCmd struct {
	Category string `arg:"" help:"Category to keep."`
}

func (cmd *productsFilterCmd) Run(ctx context.Context, g *Globals) error {
	return withConsole(g, func(c *console) error {
		err := c.ctl.FilterProducts(ctx, cmd.Category)
		c.out.Products(c.ctl.Snapshot().Products)
		return c.finish(dashboard.ActionResult{}, err)
	})
}

type productsAddCmd struct {
	Name         string `required:"" help:"Product name."`
	Symptoms     string `required:"" help:"Symptoms the product addresses."`
	Presentation string `required:"" help:"Presentation (cápsulas, gel, infusión...)."`
	Benefits     string `help:"Optional benefits."`
}

func (cmd *productsAddCmd) Run(ctx context.Context, g *Globals) error {
	return withConsole(g, func(c *console) error {
		res, err := c.ctl.AddProduct(ctx, dashboard.ProductForm{
			Name:         cmd.Name,
			Symptoms:     cmd.Symptoms,
			Presentation: cmd.Presentation,
			Benefits:     cmd.Benefits,
		})
		if err == nil {
			c.out.Products(c.ctl.Snapshot().Products)
		}
		return c.finish(res, err)
	})
}

type productsDeleteCmd struct {
	ID  string `arg:"" help:"Product ID as shown by 'products list'."`
	Yes bool   `short:"y" help:"Skip the confirmation prompt."`
}

func (cmd *productsDeleteCmd) Run(ctx context.Context, g *Globals) error {
	return withConsole(g, func(c *console) error {
		if cmd.Yes {
			ctx = dashboard.ContextWithPrompter(ctx, dashboard.Answers{Confirmed: true})
		}
		res, err := c.ctl.DeleteProduct(ctx, cmd.ID)
		return c.finish(res, err)
	})
}

type catalogCmd struct {
	Upload catalogUploadCmd `cmd:"" help:"Replace the catalog with an .xlsx file."`
}

type catalogUploadCmd struct {
	File string `arg:"" type:"existingfile" help:"Catalog spreadsheet."`
}

func (cmd *catalogUploadCmd) Run(ctx context.Context, g *Globals) error {
	return withConsole(g, func(c *console) error {
		f, err := os.Open(cmd.File) //nolint:gosec
		if err != nil {
			return fmt.Errorf("masterctl: open catalog: %w", err)
		}
		defer f.Close()
		var res dashboard.ActionResult
		err = spin("Subiendo catálogo...", func() error {
			var uploadErr error
			res, uploadErr = c.ctl.UploadCatalog(ctx, dashboard.CatalogUpload{Filename: filepath.Base(cmd.File), Content: f})
			return uploadErr
		})
		return c.finish(res, err)
	})
}

type movementsCmd struct{}

func (cmd *movementsCmd) Run(ctx context.Context, g *Globals) error {
	return withConsole(g, func(c *console) error {
		err := c.ctl.LoadMovements(ctx)
		c.out.Movements(c.ctl.Snapshot().Movements)
		return c.finish(dashboard.ActionResult{}, err)
	})
}

type casesCmd struct {
	List    casesListCmd    `cmd:"" default:"1" help:"List unresolved cases."`
	Resolve casesResolveCmd `cmd:"" help:"Mark a case resolved."`
	Notes   casesNotesCmd   `cmd:"" help:"Attach notes to a case."`
}

type casesListCmd struct{}

func (cmd *casesListCmd) Run(ctx context.Context, g *Globals) error {
	return withConsole(g, func(c *console) error {
		err := c.ctl.LoadUnresolved(ctx)
		c.out.Cases(c.ctl.Snapshot().Cases)
		return c.finish(dashboard.ActionResult{}, err)
	})
}

type casesResolveCmd struct {
	ID string `arg:"" help:"Case ID."`
}

func (cmd *casesResolveCmd) Run(ctx context.Context, g *Globals) error {
	return withConsole(g, func(c *console) error {
		res, err := c.ctl.ResolveCase(ctx, cmd.ID)
		return c.finish(res, err)
	})
}

type casesNotesCmd struct {
	ID    string `arg:"" help:"Case ID."`
	Notes string `help:"Notes text; prompts when omitted."`
}

func (cmd *casesNotesCmd) Run(ctx context.Context, g *Globals) error {
	return withConsole(g, func(c *console) error {
		if cmd.Notes != "" {
			ctx = dashboard.ContextWithPrompter(ctx, dashboard.Answers{Text: cmd.Notes, Provided: true})
		}
		res, err := c.ctl.AddNotes(ctx, cmd.ID)
		return c.finish(res, err)
	})
}

type analyticsCmd struct{}

func (cmd *analyticsCmd) Run(ctx context.Context, g *Globals) error {
	return withConsole(g, func(c *console) error {
		err := spin("Cargando analíticas...", func() error {
			return c.ctl.LoadAnalytics(ctx)
		})
		c.out.Analytics(c.ctl.Snapshot().Analytics)
		return c.finish(dashboard.ActionResult{}, err)
	})
}

type intakeCmd struct {
	Age      string `help:"Patient age in years."`
	Weight   string `help:"Patient weight in kg (optional)."`
	Symptoms string `help:"Symptom description."`
}

func (cmd *intakeCmd) Run(ctx context.Context, g *Globals) error {
	if g.NoColor {
		color.NoColor = true
	}
	cfg, err := g.config()
	if err != nil {
		return err
	}
	catalog, err := dashboard.DefaultMessageCatalog()
	if err != nil {
		return err
	}
	v := intake.NewValidator(intake.Options{Translator: catalog, Locale: cfg.Locale})
	res, err := v.Validate(ctx, cfg.Locale, intake.Form{Age: cmd.Age, Weight: cmd.Weight, Symptoms: cmd.Symptoms})
	if err != nil {
		return err
	}
	newPrinter(os.Stdout).Intake(res)
	if !res.Valid {
		return fmt.Errorf("masterctl: intake form has invalid fields")
	}
	return nil
}

func withConsole(g *Globals, fn func(*console) error) error {
	c, err := g.console()
	if err != nil {
		return err
	}
	defer c.close()
	return fn(c)
}
