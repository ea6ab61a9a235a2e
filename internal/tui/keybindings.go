package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"

	"github.com/PXLTCH/startup-ai/internal/interview"
)

// KeyMap defines all key bindings for the TUI.
type KeyMap struct {
	// Navigation
	Up    key.Binding
	Down  key.Binding
	Enter key.Binding

	// Actions
	Skip       key.Binding
	Regenerate key.Binding
	KeepLayout key.Binding
	Quit       key.Binding
}

// DefaultKeyMap provides the default key bindings for the TUI.
var DefaultKeyMap = KeyMap{
	Up: key.NewBinding(
		key.WithKeys("up"),
		key.WithHelp("↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down"),
		key.WithHelp("↓", "down"),
	),
	Enter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "submit"),
	),
	Skip: key.NewBinding(
		key.WithKeys("ctrl+s"),
		key.WithHelp("ctrl+s", "skip question"),
	),
	Regenerate: key.NewBinding(
		key.WithKeys("ctrl+r"),
		key.WithHelp("ctrl+r", "regenerate"),
	),
	KeepLayout: key.NewBinding(
		key.WithKeys("ctrl+l"),
		key.WithHelp("ctrl+l", "regenerate, keep layout"),
	),
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c", "esc"),
		key.WithHelp("esc", "quit"),
	),
}

// help renders the bindings that apply in state.
func (k KeyMap) help(state interview.State) string {
	var bindings []key.Binding
	switch state {
	case interview.StateAsking, interview.StateAwaitingConfirm:
		bindings = []key.Binding{k.Enter, k.Skip, k.Quit}
	case interview.StateAwaitingNameChoice:
		bindings = []key.Binding{k.Up, k.Down, k.Enter, k.Regenerate, k.Quit}
	case interview.StateAwaitingLogoStyle:
		bindings = []key.Binding{k.Up, k.Down, k.Enter, k.Quit}
	case interview.StateAwaitingLogoSelection:
		bindings = []key.Binding{k.Up, k.Down, k.Enter, k.Regenerate, k.KeepLayout, k.Quit}
	default:
		bindings = []key.Binding{k.Quit}
	}
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return strings.Join(parts, " • ")
}
