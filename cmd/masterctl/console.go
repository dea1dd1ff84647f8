package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"

	"github.com/saludarte/go-master-dashboard/components/dashboard"
	dashboardpkg "github.com/saludarte/go-master-dashboard/pkg/dashboard"
)

const cliSession = "masterctl"

// console runs one CLI session: a controller whose alerts are printed after
// every action.
type console struct {
	ctl *dashboard.Controller
	out *printer
}

func (g *Globals) console() (*console, error) {
	if g.NoColor {
		color.NoColor = true
	}
	prompter := &stdinPrompter{in: bufio.NewReader(os.Stdin), out: os.Stdout}
	rt, err := g.runtime(dashboardpkg.Options{Prompter: prompter})
	if err != nil {
		return nil, err
	}
	ctl, err := rt.NewController(cliSession, rt.Config.Locale)
	if err != nil {
		return nil, err
	}
	return &console{ctl: ctl, out: newPrinter(os.Stdout)}, nil
}

func (c *console) close() {
	c.ctl.Close()
}

// finish prints the banners raised by the last action and returns err.
func (c *console) finish(res dashboard.ActionResult, err error) error {
	c.out.Alerts(c.ctl.Alerts().Active())
	if err == nil && res.Status == dashboard.ActionCancelled {
		c.out.Note("Acción cancelada")
	}
	return err
}

// spin shows a spinner on stderr while fn runs.
func spin(suffix string, fn func() error) error {
	s := spinner.New(spinner.CharSets[11], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	s.Suffix = " " + suffix
	s.Start()
	err := fn()
	s.Stop()
	return err
}

// stdinPrompter asks the operator on the terminal.
type stdinPrompter struct {
	in  *bufio.Reader
	out io.Writer
}

var _ dashboard.Prompter = (*stdinPrompter)(nil)

func (p *stdinPrompter) Confirm(_ context.Context, question string) bool {
	fmt.Fprintf(p.out, "%s [s/N]: ", question)
	line, _ := p.in.ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "s", "si", "sí", "y", "yes":
		return true
	}
	return false
}

func (p *stdinPrompter) Prompt(_ context.Context, question string) (string, bool) {
	fmt.Fprintf(p.out, "%s ", question)
	line, err := p.in.ReadString('\n')
	if err != nil && line == "" {
		return "", false
	}
	return strings.TrimRight(line, "\r\n"), true
}
