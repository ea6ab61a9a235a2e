// catalog.go implements the "orchestra catalog" command.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/PXLTCH/startup-ai/internal/catalog"
	"github.com/PXLTCH/startup-ai/internal/config"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Print the interview questions in order",
	RunE:  runCatalog,
}

func runCatalog(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(rootDir)
	if err != nil {
		return err
	}
	cat, err := catalog.LoadFile(config.Resolve(rootDir, cfg.Catalog.Path))
	if err != nil {
		return fmt.Errorf("loading catalog: %w", err)
	}

	out := cmd.OutOrStdout()
	for _, sec := range cat.Sections() {
		fmt.Fprintln(out, headingStyle.Render(sec.Title))
		for _, q := range sec.Questions {
			fmt.Fprintf(out, "  %2d. %s %s\n", q.Ordinal+1, q.Text, dimStyle.Render("("+q.ID+")"))
		}
		fmt.Fprintln(out)
	}
	fmt.Fprintf(out, "%d questions, catalog version %d\n", cat.Len(), cat.Version())
	return nil
}
