package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/PXLTCH/startup-ai/internal/interview"
)

const (
	// maxWidth is the maximum width for the interview box.
	maxWidth = 90

	// callTimeout bounds one engine call, which may wait on the model
	// backend or on logo rendering.
	callTimeout = 2 * time.Minute
)

// Model is the Bubble Tea model for one interview session.
type Model struct {
	ctx    context.Context
	client Client
	id     string
	keys   KeyMap

	res      *interview.Result
	input    textinput.Model
	spin     spinner.Model
	busy     bool
	err      error
	selected int
	width    int
	height   int
}

// NewModel creates a Model driving session id through c.
func NewModel(ctx context.Context, c Client, id string) Model {
	ti := textinput.New()
	ti.Placeholder = "Type your answer here..."
	ti.CharLimit = 2000
	ti.Width = maxWidth - 12
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(primaryColor))

	return Model{
		ctx:    ctx,
		client: c,
		id:     id,
		keys:   DefaultKeyMap,
		input:  ti,
		spin:   sp,
		busy:   true,
	}
}

// Init loads the current question.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spin.Tick, m.call(func(ctx context.Context) (*interview.Result, error) {
		return m.client.Current(ctx, m.id)
	}))
}

// call wraps one engine call as a command.
func (m Model) call(fn func(ctx context.Context) (*interview.Result, error)) tea.Cmd {
	parent := m.ctx
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(parent, callTimeout)
		defer cancel()
		res, err := fn(ctx)
		if err != nil {
			return errMsg{err: err}
		}
		return resultMsg{res: res}
	}
}

// Update handles messages for the interview.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case resultMsg:
		m.apply(msg.res)
		return m, nil

	case errMsg:
		m.busy = false
		m.err = msg.err
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			return m, tea.Quit
		}
		if m.busy || m.res == nil {
			return m, nil
		}
		return m.handleKey(msg)
	}

	if m.acceptsText() {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

// apply replaces the displayed view with res.
func (m *Model) apply(res *interview.Result) {
	m.res = res
	m.busy = false
	m.err = nil
	m.selected = 0
	switch res.State {
	case interview.StateAwaitingConfirm:
		m.input.SetValue(res.Draft)
		m.input.CursorEnd()
	default:
		m.input.SetValue("")
	}
}

func (m Model) acceptsText() bool {
	if m.res == nil {
		return false
	}
	return m.res.State == interview.StateAsking || m.res.State == interview.StateAwaitingConfirm
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	id := m.id
	switch m.res.State {
	case interview.StateAsking:
		switch {
		case key.Matches(msg, m.keys.Skip):
			return m.dispatch(func(ctx context.Context) (*interview.Result, error) {
				return m.client.Skip(ctx, id)
			})
		case key.Matches(msg, m.keys.Enter):
			text := strings.TrimSpace(m.input.Value())
			if text == "" {
				return m, nil
			}
			return m.dispatch(func(ctx context.Context) (*interview.Result, error) {
				return m.client.Submit(ctx, id, text)
			})
		}

	case interview.StateAwaitingConfirm:
		switch {
		case key.Matches(msg, m.keys.Skip):
			return m.dispatch(func(ctx context.Context) (*interview.Result, error) {
				return m.client.Skip(ctx, id)
			})
		case key.Matches(msg, m.keys.Enter):
			text := strings.TrimSpace(m.input.Value())
			var edited *string
			if text != m.res.Draft {
				edited = &text
			}
			return m.dispatch(func(ctx context.Context) (*interview.Result, error) {
				return m.client.Confirm(ctx, id, edited)
			})
		}

	case interview.StateAwaitingNameChoice:
		if key.Matches(msg, m.keys.Regenerate) {
			return m.dispatch(func(ctx context.Context) (*interview.Result, error) {
				return m.client.RegenerateNames(ctx, id)
			})
		}
		if key.Matches(msg, m.keys.Enter) && len(m.res.Names) > 0 {
			choice := interview.IndexChoice(m.selected)
			return m.dispatch(func(ctx context.Context) (*interview.Result, error) {
				return m.client.SelectName(ctx, id, choice)
			})
		}
		m.move(msg, len(m.res.Names))
		return m, nil

	case interview.StateAwaitingLogoStyle:
		if key.Matches(msg, m.keys.Enter) && m.selected < len(m.res.Styles) {
			style := string(m.res.Styles[m.selected])
			return m.dispatch(func(ctx context.Context) (*interview.Result, error) {
				return m.client.ChooseLogoStyle(ctx, id, style)
			})
		}
		m.move(msg, len(m.res.Styles))
		return m, nil

	case interview.StateAwaitingLogoSelection:
		switch {
		case key.Matches(msg, m.keys.Regenerate):
			return m.dispatch(func(ctx context.Context) (*interview.Result, error) {
				return m.client.RegenerateLogos(ctx, id, nil)
			})
		case key.Matches(msg, m.keys.KeepLayout):
			keep := true
			return m.dispatch(func(ctx context.Context) (*interview.Result, error) {
				return m.client.RegenerateLogos(ctx, id, &keep)
			})
		case key.Matches(msg, m.keys.Enter) && len(m.res.Logos) > 0:
			choice := interview.IndexChoice(m.selected)
			return m.dispatch(func(ctx context.Context) (*interview.Result, error) {
				return m.client.SelectLogo(ctx, id, choice)
			})
		}
		m.move(msg, len(m.res.Logos))
		return m, nil

	case interview.StateDone:
		if key.Matches(msg, m.keys.Enter) {
			return m, tea.Quit
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) dispatch(fn func(ctx context.Context) (*interview.Result, error)) (tea.Model, tea.Cmd) {
	m.busy = true
	m.err = nil
	return m, m.call(fn)
}

func (m *Model) move(msg tea.KeyMsg, n int) {
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.selected > 0 {
			m.selected--
		}
	case key.Matches(msg, m.keys.Down):
		if m.selected < n-1 {
			m.selected++
		}
	}
}

// View renders the interview.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("Startup interview"))
	b.WriteString("\n\n")

	if m.res == nil {
		if m.err != nil {
			b.WriteString(ErrorStyle.Render("Error: " + m.err.Error()))
		} else {
			b.WriteString(m.spin.View() + " Loading session...")
		}
		return m.box(b.String())
	}

	b.WriteString(progressBar(m.res.Index, m.res.Total, 30))
	b.WriteString(DimStyle.Render(fmt.Sprintf("  %d/%d", min(m.res.Index, m.res.Total), m.res.Total)))
	b.WriteString("\n\n")

	if m.res.Message != "" {
		b.WriteString(SuccessStyle.Render(m.res.Message))
		b.WriteString("\n\n")
	}

	switch m.res.State {
	case interview.StateAsking:
		m.renderQuestion(&b)
		b.WriteString(m.input.View())
	case interview.StateAwaitingConfirm:
		m.renderQuestion(&b)
		b.WriteString(DimStyle.Render("Edit the refined answer or press Enter to confirm."))
		b.WriteString("\n")
		b.WriteString(m.input.View())
	case interview.StateAwaitingNameChoice:
		b.WriteString("Pick a company name:\n\n")
		m.renderOptions(&b, m.res.Names)
	case interview.StateAwaitingLogoStyle:
		b.WriteString("Pick a logo style:\n\n")
		styles := make([]string, len(m.res.Styles))
		for i, s := range m.res.Styles {
			styles[i] = string(s)
		}
		m.renderOptions(&b, styles)
	case interview.StateAwaitingLogoSelection:
		fmt.Fprintf(&b, "%s logos, generation %d", m.res.Style, m.res.Generation)
		if m.res.KeepLayout {
			b.WriteString(DimStyle.Render(" (layout kept)"))
		}
		b.WriteString("\n\n")
		m.renderOptions(&b, m.res.Logos)
	case interview.StateDone:
		b.WriteString(SuccessStyle.Render("Interview complete. Press Enter to exit."))
	}

	b.WriteString("\n\n")
	switch {
	case m.busy:
		b.WriteString(m.spin.View() + " Working...")
	case m.err != nil && interview.IsRetryable(m.err):
		b.WriteString(WarningStyle.Render(m.err.Error() + " (try again)"))
	case m.err != nil:
		b.WriteString(ErrorStyle.Render(m.err.Error()))
	default:
		b.WriteString(DimStyle.Render(m.keys.help(m.res.State)))
	}

	return m.box(b.String())
}

func (m Model) renderQuestion(b *strings.Builder) {
	if m.res.Question == nil {
		return
	}
	b.WriteString(lipgloss.NewStyle().Bold(true).Render(m.res.Question.Text))
	b.WriteString("\n")
	if m.res.Question.Hint != "" {
		b.WriteString(DimStyle.Render(m.res.Question.Hint))
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

func (m Model) renderOptions(b *strings.Builder, options []string) {
	for i, opt := range options {
		if i == m.selected {
			b.WriteString(SelectedStyle.Render(fmt.Sprintf("❯ %d. %s", i+1, opt)))
		} else {
			fmt.Fprintf(b, "  %d. %s", i+1, opt)
		}
		b.WriteString("\n")
	}
}

func (m Model) box(content string) string {
	width := maxWidth
	if m.width > 0 && m.width-4 < width {
		width = m.width - 4
	}
	return BoxStyle.Width(width).Render(content)
}

// progressBar renders done of total positions as a fixed-width bar.
func progressBar(done, total, width int) string {
	if total <= 0 {
		return ""
	}
	filled := min(done, total) * width / total
	return ProgressFullStyle.Render(strings.Repeat("█", filled)) +
		ProgressEmptyStyle.Render(strings.Repeat("░", width-filled))
}
