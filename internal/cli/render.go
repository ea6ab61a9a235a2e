// render.go implements the "orchestra render" command.
package cli

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/PXLTCH/startup-ai/internal/config"
	"github.com/PXLTCH/startup-ai/internal/logo"
)

var renderCmd = &cobra.Command{
	Use:   "render <company name>",
	Short: "Generate a logo set without a session",
	Long: `Render one set of logo variants for a company name into the
asset directory. The same name, style, generation and palette always
produce the same layout.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRender,
}

var (
	styleFlag      string
	generationFlag int
	paletteFlag    []string
	fontFlag       string
)

func init() {
	renderCmd.Flags().StringVar(&styleFlag, "style", string(logo.Wordmark), "Logo style")
	renderCmd.Flags().IntVar(&generationFlag, "generation", 1, "Generation number")
	renderCmd.Flags().StringSliceVar(&paletteFlag, "palette", nil, "Three hex colors to lock the palette")
	renderCmd.Flags().StringVar(&fontFlag, "font", "", "Font family to lock")
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(rootDir)
	if err != nil {
		return err
	}
	lib, err := logo.NewLibrary(config.Resolve(rootDir, cfg.Assets.Dir))
	if err != nil {
		return err
	}

	if generationFlag < 1 {
		return fmt.Errorf("generation must be at least 1, got %d", generationFlag)
	}
	prefs := logo.Prefs{Font: fontFlag, FontLocked: fontFlag != ""}
	if len(paletteFlag) > 0 {
		if len(paletteFlag) != 3 {
			return fmt.Errorf("palette needs exactly 3 colors, got %d", len(paletteFlag))
		}
		prefs.Palette = paletteFlag
		prefs.PaletteLocked = true
	}

	name := strings.Join(args, " ")
	style := logo.ParseStyle(styleFlag)
	paths, err := lib.Generate(name, style, generationFlag, prefs, time.Now())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s logos for %q, generation %d:\n", style, name, generationFlag)
	for _, p := range paths {
		fmt.Fprintf(out, "  %s\n", filepath.Join(lib.Root(), filepath.FromSlash(p)))
	}
	return nil
}
