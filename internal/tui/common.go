// Package tui implements the terminal interview client using Bubble Tea.
package tui

import (
	"context"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/PXLTCH/startup-ai/internal/interview"
)

// Client is the subset of the interview engine the terminal drives.
type Client interface {
	Current(ctx context.Context, id string) (*interview.Result, error)
	Submit(ctx context.Context, id, raw string) (*interview.Result, error)
	Confirm(ctx context.Context, id string, edited *string) (*interview.Result, error)
	SelectName(ctx context.Context, id string, choice interview.Choice) (*interview.Result, error)
	RegenerateNames(ctx context.Context, id string) (*interview.Result, error)
	ChooseLogoStyle(ctx context.Context, id, style string) (*interview.Result, error)
	RegenerateLogos(ctx context.Context, id string, keepLayout *bool) (*interview.Result, error)
	SelectLogo(ctx context.Context, id string, choice interview.Choice) (*interview.Result, error)
	Skip(ctx context.Context, id string) (*interview.Result, error)
}

// IsTTY returns true if stdout is connected to a terminal.
func IsTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// Run drives session id interactively. If stdout is not a TTY it falls
// back to a line-oriented dialogue on in and out.
func Run(ctx context.Context, c Client, id string, in io.Reader, out io.Writer) error {
	if IsTTY() {
		p := tea.NewProgram(NewModel(ctx, c, id), tea.WithAltScreen(), tea.WithContext(ctx))
		_, err := p.Run()
		return err
	}
	return RunFallback(ctx, c, id, in, out)
}
