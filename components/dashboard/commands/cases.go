package commands

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/saludarte/go-master-dashboard/components/dashboard"
)

// ResolveCaseInput identifies the case to resolve.
type ResolveCaseInput struct {
	Target
	CaseID string `json:"case_id"`
}

// ResolveCaseCommand marks an unresolved case as resolved.
type ResolveCaseCommand struct {
	resolver  Resolver
	telemetry Telemetry
}

// NewResolveCaseCommand builds the command.
func NewResolveCaseCommand(resolver Resolver, telemetry Telemetry) *ResolveCaseCommand {
	return &ResolveCaseCommand{resolver: resolver, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[ResolveCaseInput] = (*ResolveCaseCommand)(nil)

// Execute resolves the case.
func (c *ResolveCaseCommand) Execute(ctx context.Context, msg ResolveCaseInput) error {
	_, err := c.Run(ctx, msg)
	return err
}

// Run resolves the case and returns the action outcome.
func (c *ResolveCaseCommand) Run(ctx context.Context, msg ResolveCaseInput) (dashboard.ActionResult, error) {
	ctl, err := c.resolver.resolve(ctx, msg.Target)
	if err != nil {
		return dashboard.ActionResult{Status: dashboard.ActionFailed}, err
	}
	ctx = msg.withActivity(ctx)
	res, err := ctl.ResolveCase(ctx, msg.CaseID)
	recordResult(ctx, c.telemetry, "master.case.resolve", res, err, map[string]any{"case_id": msg.CaseID})
	return res, err
}

// AddNotesInput carries the notes typed into the prompt. Provided is false
// when the prompt was dismissed.
type AddNotesInput struct {
	Target
	CaseID   string `json:"case_id"`
	Notes    string `json:"notes"`
	Provided bool   `json:"provided"`
}

// AddNotesCommand attaches notes to a case.
type AddNotesCommand struct {
	resolver  Resolver
	telemetry Telemetry
}

// NewAddNotesCommand builds the command.
func NewAddNotesCommand(resolver Resolver, telemetry Telemetry) *AddNotesCommand {
	return &AddNotesCommand{resolver: resolver, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[AddNotesInput] = (*AddNotesCommand)(nil)

// Execute adds the notes.
func (c *AddNotesCommand) Execute(ctx context.Context, msg AddNotesInput) error {
	_, err := c.Run(ctx, msg)
	return err
}

// Run adds the notes; blank or dismissed notes cancel the action.
func (c *AddNotesCommand) Run(ctx context.Context, msg AddNotesInput) (dashboard.ActionResult, error) {
	ctl, err := c.resolver.resolve(ctx, msg.Target)
	if err != nil {
		return dashboard.ActionResult{Status: dashboard.ActionFailed}, err
	}
	answers := dashboard.Answers{Text: msg.Notes, Provided: msg.Provided}
	ctx = dashboard.ContextWithPrompter(msg.withActivity(ctx), answers)
	res, err := ctl.AddNotes(ctx, msg.CaseID)
	recordResult(ctx, c.telemetry, "master.case.notes", res, err, map[string]any{"case_id": msg.CaseID})
	return res, err
}
