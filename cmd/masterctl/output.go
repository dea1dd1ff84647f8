package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/saludarte/go-master-dashboard/components/dashboard"
	"github.com/saludarte/go-master-dashboard/components/intake"
)

// printer writes dashboard view models to a terminal.
type printer struct {
	w io.Writer
}

func newPrinter(w io.Writer) *printer {
	return &printer{w: w}
}

func (p *printer) table() *tabwriter.Writer {
	return tabwriter.NewWriter(p.w, 0, 4, 2, ' ', 0)
}

func (p *printer) heading(title string) {
	color.New(color.FgCyan, color.Bold).Fprintln(p.w, title)
}

// Products prints the catalog table.
func (p *printer) Products(table dashboard.ProductTable) {
	p.heading("Productos")
	if len(table.Rows) == 0 {
		p.Note("Sin productos")
		return
	}
	tw := p.table()
	fmt.Fprintln(tw, "ID\tNOMBRE\tSÍNTOMAS\tPRESENTACIÓN")
	for _, row := range table.Rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", row.ID, row.Name, row.Symptoms, row.Presentation)
	}
	_ = tw.Flush()
}

// Movements prints the movement log.
func (p *printer) Movements(table dashboard.MovementTable) {
	p.heading("Movimientos")
	if len(table.Rows) == 0 {
		p.Note("Sin movimientos")
		return
	}
	tw := p.table()
	fmt.Fprintln(tw, "FECHA\tPRODUCTO\tACCIÓN\tSÍNTOMAS\tUSUARIO")
	for _, row := range table.Rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			row.Date, row.Product, severityColor(row.ActionSeverity).Sprint(row.ActionLabel), row.Symptoms, row.UserType)
	}
	_ = tw.Flush()
}

// Cases prints the unresolved cases.
func (p *printer) Cases(table dashboard.CaseTable) {
	p.heading("Casos sin resolver")
	if len(table.Rows) == 0 {
		p.Note("Sin casos pendientes")
		return
	}
	tw := p.table()
	fmt.Fprintln(tw, "ID\tFECHA\tSÍNTOMAS\tESTADO\tNOTAS")
	for _, row := range table.Rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			row.ID, row.Date, row.Symptoms, severityColor(row.StatusSeverity).Sprint(row.StatusLabel), row.Notes)
	}
	_ = tw.Flush()
}

// Analytics prints the usage summary, the top lists and the suggestions.
func (p *printer) Analytics(panel dashboard.AnalyticsPanel) {
	p.heading("Analíticas")
	fmt.Fprintf(p.w, "  Consultas: %s   Promedio diario: %s   Sin resolver: %d\n\n",
		color.New(color.Bold).Sprint(panel.Summary.Total),
		color.New(color.Bold).Sprint(panel.Summary.Average),
		panel.UnresolvedTotal)

	p.bars("Productos más recomendados", panel.TopProducts)
	p.bars("Síntomas más consultados", panel.TopSymptoms)

	p.heading("Categorías de problemas")
	if panel.Categories.Empty {
		p.Note(panel.Categories.EmptyMessage)
	}
	for _, row := range panel.Categories.Rows {
		fmt.Fprintf(p.w, "  %s  %s\n", row.Label, color.YellowString(row.CountLabel))
	}
	fmt.Fprintln(p.w)

	p.heading("Recomendaciones")
	if panel.Suggestions.Empty {
		p.Note(panel.Suggestions.EmptyMessage)
	}
	for _, item := range panel.Suggestions.Items {
		fmt.Fprintf(p.w, "  • %s\n", item)
	}
}

const barWidth = 30

func (p *printer) bars(title string, panel dashboard.TopEntriesPanel) {
	p.heading(title)
	if panel.Empty {
		p.Note(panel.EmptyMessage)
		fmt.Fprintln(p.w)
		return
	}
	tw := p.table()
	for _, bar := range panel.Bars {
		filled := int(bar.Percent / 100 * barWidth)
		fmt.Fprintf(tw, "  %s\t%s%s\t%d\n", bar.Label,
			color.GreenString(strings.Repeat("█", filled)), strings.Repeat("░", barWidth-filled), bar.Count)
	}
	_ = tw.Flush()
	fmt.Fprintln(p.w)
}

// Alerts prints the active banners, colored by kind.
func (p *printer) Alerts(alerts []dashboard.Alert) {
	for _, a := range alerts {
		alertColor(a.Kind).Fprintf(p.w, "%s %s\n", alertIcon(a.Kind), a.Message)
	}
}

// Note prints a dim informational line.
func (p *printer) Note(msg string) {
	color.New(color.Faint).Fprintf(p.w, "  %s\n", msg)
}

// Intake prints per-field feedback for the patient form.
func (p *printer) Intake(res intake.Result) {
	p.heading("Formulario de consulta")
	for _, f := range res.Fields {
		switch f.State {
		case intake.StateValid:
			fmt.Fprintf(p.w, "  %s %s: %s\n", color.GreenString("✓"), f.Field, f.Message)
		case intake.StateInvalid:
			fmt.Fprintf(p.w, "  %s %s: %s\n", color.RedString("✗"), f.Field, f.Message)
		default:
			fmt.Fprintf(p.w, "  - %s\n", f.Field)
		}
	}
}

func alertColor(kind dashboard.AlertKind) *color.Color {
	switch kind {
	case dashboard.AlertSuccess:
		return color.New(color.FgGreen)
	case dashboard.AlertError:
		return color.New(color.FgRed, color.Bold)
	case dashboard.AlertWarning:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgCyan)
	}
}

func alertIcon(kind dashboard.AlertKind) string {
	switch kind {
	case dashboard.AlertSuccess:
		return "✓"
	case dashboard.AlertError:
		return "✗"
	case dashboard.AlertWarning:
		return "!"
	default:
		return "i"
	}
}

func severityColor(s dashboard.Severity) *color.Color {
	switch s {
	case dashboard.SeveritySuccess:
		return color.New(color.FgGreen)
	case dashboard.SeverityPrimary:
		return color.New(color.FgBlue)
	case dashboard.SeverityInfo:
		return color.New(color.FgCyan)
	case dashboard.SeverityWarning:
		return color.New(color.FgYellow)
	case dashboard.SeverityDanger:
		return color.New(color.FgRed)
	default:
		return color.New(color.Reset)
	}
}
