// export.go implements the "orchestra export" command.
package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/PXLTCH/startup-ai/internal/export"
	"github.com/PXLTCH/startup-ai/internal/logo"
)

var exportCmd = &cobra.Command{
	Use:   "export <session>",
	Short: "Write answer transcripts, logo archives or the founder pack",
	Long: `Export a session in one of these formats:

  json   answers with the confirmed profile, as JSON
  md     answers as a Markdown document
  logos  zip of the current logo set, or of favorites with --source favorites
  pack   founder pack zip with profile, pitch outline, summary and logos

json and md are written to --out (default: the current directory).
Archives are written under the asset directory.`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

var (
	formatFlag string
	sourceFlag string
	outFlag    string
)

func init() {
	exportCmd.Flags().StringVar(&formatFlag, "format", "md", "Export format: json, md, logos or pack")
	exportCmd.Flags().StringVar(&sourceFlag, "source", export.SourceCurrent, "Logo source for --format logos: current or favorites")
	exportCmd.Flags().StringVar(&outFlag, "out", ".", "Directory for json and md exports")
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	// Only the founder pack asks the model for an outline.
	a, err := openApp(ctx, rootDir, false)
	if err != nil {
		return err
	}
	defer a.Close()

	id := args[0]
	snap, err := a.engine.Snapshot(ctx, id)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	switch formatFlag {
	case "json", "md":
		t := export.BuildTranscript(a.catalog, snap, time.Now())
		name := fmt.Sprintf("answers_%s_%d.%s", logo.CompanySlug(t.Profile.Name), t.GeneratedAt.UnixMilli(), formatFlag)
		path := filepath.Join(outFlag, name)
		if err := writeTranscript(path, t, formatFlag); err != nil {
			return err
		}
		fmt.Fprintf(out, "Wrote %s\n", path)

	case "logos":
		var favorites []string
		if sourceFlag == export.SourceFavorites {
			favs, err := a.engine.Favorites(ctx, id)
			if err != nil {
				return err
			}
			for _, f := range favs {
				favorites = append(favorites, f.Path)
			}
		}
		rel, err := a.exporter.Logos(ctx, snap, sourceFlag, favorites)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Wrote %s\n", filepath.Join(a.assets.Root(), filepath.FromSlash(rel)))

	case "pack":
		pack, err := a.exporter.FounderPack(ctx, a.catalog, snap)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Wrote %s\n", filepath.Join(a.assets.Root(), filepath.FromSlash(pack.Path)))
		fmt.Fprintf(out, "  %d slides (%s outline), %d logos\n", len(pack.Slides), pack.OutlineSource, pack.Logos)

	default:
		return fmt.Errorf("unknown export format %q (want json, md, logos or pack)", formatFlag)
	}
	return nil
}

func writeTranscript(path string, t *export.Transcript, format string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating export directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating export file: %w", err)
	}
	defer f.Close()

	if format == "json" {
		err = export.WriteJSON(f, t)
	} else {
		_, err = f.WriteString(export.FormatMarkdown(t))
	}
	if err != nil {
		return fmt.Errorf("writing export: %w", err)
	}
	return f.Close()
}
