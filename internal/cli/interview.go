// interview.go implements the "orchestra interview" command.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/PXLTCH/startup-ai/internal/tui"
)

var interviewCmd = &cobra.Command{
	Use:   "interview",
	Short: "Answer the interview in the terminal",
	Long: `Start a new interview session, or resume one with --session.
Uses a full-screen interface on a terminal and a plain line dialogue
otherwise.`,
	RunE: runInterview,
}

var sessionFlag string

func init() {
	interviewCmd.Flags().StringVar(&sessionFlag, "session", "", "Resume an existing session")
}

func runInterview(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx, rootDir, true)
	if err != nil {
		return err
	}
	defer a.Close()

	id := sessionFlag
	if id == "" {
		res, err := a.engine.Create(ctx)
		if err != nil {
			return fmt.Errorf("creating session: %w", err)
		}
		id = res.SessionID
		fmt.Fprintf(cmd.OutOrStdout(), "Session %s\n", id)
	}

	return tui.Run(ctx, a.engine, id, cmd.InOrStdin(), cmd.OutOrStdout())
}
