// sessions.go implements the "orchestra sessions" and "orchestra answers"
// commands.
package cli

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/PXLTCH/startup-ai/internal/export"
)

var (
	headingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#7C3AED")).Bold(true)
	doneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List recent interview sessions",
	RunE:  runSessions,
}

var answersCmd = &cobra.Command{
	Use:   "answers <session>",
	Short: "Print the answers of a session",
	Long: `Print the latest answer to every question of a session as a
Markdown document, or as JSON with --json.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnswers,
}

var (
	limitFlag int
	jsonFlag  bool
)

func init() {
	sessionsCmd.Flags().IntVar(&limitFlag, "limit", 20, "Maximum number of sessions to list")
	answersCmd.Flags().BoolVar(&jsonFlag, "json", false, "Print the transcript as JSON")
}

func runSessions(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx, rootDir, false)
	if err != nil {
		return err
	}
	defer a.Close()

	summaries, err := a.store.ListSessions(ctx, limitFlag)
	if err != nil {
		return fmt.Errorf("listing sessions: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(summaries) == 0 {
		fmt.Fprintln(out, "No sessions yet. Start one with: orchestra interview")
		return nil
	}

	total := a.catalog.Len()
	fmt.Fprintln(out, headingStyle.Render("Sessions"))
	for _, s := range summaries {
		status := string(s.Status)
		if s.State == "done" {
			status = doneStyle.Render(status)
		}
		fmt.Fprintf(out, "  %s  %-8s  %-24s  %2d/%d confirmed  %s\n",
			s.ID, status, s.State, s.Confirmed, total,
			dimStyle.Render(s.UpdatedAt.Local().Format(time.DateTime)))
	}
	return nil
}

func runAnswers(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx, rootDir, false)
	if err != nil {
		return err
	}
	defer a.Close()

	snap, err := a.engine.Snapshot(ctx, args[0])
	if err != nil {
		return err
	}
	t := export.BuildTranscript(a.catalog, snap, time.Now())

	out := cmd.OutOrStdout()
	if jsonFlag {
		return export.WriteJSON(out, t)
	}
	fmt.Fprint(out, export.FormatMarkdown(t))
	return nil
}
