package dashboard

import "context"

// Prompter asks the operator before destructive or annotating actions.
type Prompter interface {
	Confirm(ctx context.Context, question string) bool
	Prompt(ctx context.Context, question string) (string, bool)
}

// Answers is a Prompter with pre-collected answers, used by transports where
// the browser asked the question before submitting the request.
type Answers struct {
	Confirmed bool
	Text      string
	Provided  bool
}

// Confirm returns the recorded confirmation.
func (a Answers) Confirm(context.Context, string) bool { return a.Confirmed }

// Prompt returns the recorded answer.
func (a Answers) Prompt(context.Context, string) (string, bool) { return a.Text, a.Provided }

type denyPrompter struct{}

func (denyPrompter) Confirm(context.Context, string) bool           { return false }
func (denyPrompter) Prompt(context.Context, string) (string, bool) { return "", false }

type prompterKey struct{}

// ContextWithPrompter scopes a Prompter to one request.
func ContextWithPrompter(ctx context.Context, p Prompter) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, prompterKey{}, p)
}

func prompterFrom(ctx context.Context, fallback Prompter) Prompter {
	if ctx != nil {
		if p, ok := ctx.Value(prompterKey{}).(Prompter); ok && p != nil {
			return p
		}
	}
	if fallback != nil {
		return fallback
	}
	return denyPrompter{}
}
