// init.go implements the "orchestra init" command.
package cli

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/PXLTCH/startup-ai/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize orchestra in the current project",
	Long: `Create the .orchestra/ directory with a default config.yaml and
add the runtime files (database, event log, generated assets) to
.gitignore.`,
	RunE: runInit,
}

var (
	forceFlag    bool
	providerFlag string
)

func init() {
	initCmd.Flags().BoolVar(&forceFlag, "force", false, "Overwrite an existing config without asking")
	initCmd.Flags().StringVar(&providerFlag, "provider", "", "Refiner provider: claude, openai or static")
}

func runInit(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	cfgPath := filepath.Join(config.Dir(rootDir), "config.yaml")

	if _, statErr := os.Stat(cfgPath); statErr == nil && !forceFlag {
		fmt.Fprintln(out, "Warning: .orchestra/config.yaml already exists.")
		fmt.Fprint(out, "Overwrite? [y/N]: ")
		reader := bufio.NewReader(cmd.InOrStdin())
		answer, _ := reader.ReadString('\n')
		answer = strings.TrimSpace(strings.ToLower(answer))
		if answer != "y" && answer != "yes" {
			fmt.Fprintln(out, "Aborted.")
			return nil
		}
	}

	cfg := config.DefaultConfig()
	if providerFlag != "" {
		cfg.Refiner.Provider = providerFlag
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := config.WriteConfig(rootDir, cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	if err := ensureGitignore(rootDir); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: failed to set up .gitignore: %v\n", err)
	}

	fmt.Fprintln(out, "Orchestra initialized")
	fmt.Fprintf(out, "  Refiner:  %s (%s)\n", cfg.Refiner.Provider, cfg.Refiner.Model)
	fmt.Fprintf(out, "  Storage:  %s via %s\n", cfg.Storage.Path, cfg.Storage.Driver)
	fmt.Fprintf(out, "  Assets:   %s\n", cfg.Assets.Dir)
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Configuration written to .orchestra/config.yaml")
	fmt.Fprintln(out, "Start the API with: orchestra serve")
	return nil
}

// ensureGitignore creates or appends to .gitignore with the runtime entries.
// It reads the existing file and only adds entries that aren't already present.
func ensureGitignore(dir string) error {
	gitignorePath := filepath.Join(dir, ".gitignore")

	// Orchestra runtime (config.yaml IS committed)
	requiredEntries := []string{
		".orchestra/*.db",
		".orchestra/*.db-*",
		".orchestra/log.jsonl",
		".orchestra/generated/",
	}

	existing := ""
	if data, err := os.ReadFile(gitignorePath); err == nil {
		existing = string(data)
	}

	var missing []string
	for _, entry := range requiredEntries {
		if !strings.Contains(existing, entry) {
			missing = append(missing, entry)
		}
	}

	if len(missing) == 0 {
		return nil
	}

	var toAppend strings.Builder
	if existing != "" && !strings.HasSuffix(existing, "\n") {
		toAppend.WriteString("\n")
	}
	if existing != "" {
		toAppend.WriteString("\n# Added by orchestra init\n")
	}
	for _, entry := range missing {
		toAppend.WriteString(entry + "\n")
	}

	f, err := os.OpenFile(gitignorePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("opening .gitignore: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(toAppend.String()); err != nil {
		return fmt.Errorf("writing .gitignore: %w", err)
	}

	return nil
}
