package export

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/PXLTCH/startup-ai/internal/interview"
	"github.com/PXLTCH/startup-ai/internal/log"
	"github.com/PXLTCH/startup-ai/internal/refiner"
)

// Logo archive sources.
const (
	SourceCurrent   = "current"
	SourceFavorites = "favorites"
)

// ErrNothingToExport is returned when an archive would be empty.
var ErrNothingToExport = errors.New("no files to export")

// exportsDir holds every archive, under the asset root.
const exportsDir = "exports"

// Assets resolves root-relative asset paths.
type Assets interface {
	Root() string
	Resolve(rel string) (string, error)
}

// Exporter writes archives under the asset root and returns their
// root-relative paths.
type Exporter struct {
	assets    Assets
	completer refiner.Completer
	logger    *log.Logger
	now       func() time.Time
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithLogger records written archives to logger.
func WithLogger(logger *log.Logger) Option {
	return func(x *Exporter) { x.logger = logger }
}

// WithClock replaces time.Now for archive names and timestamps.
func WithClock(now func() time.Time) Option {
	return func(x *Exporter) { x.now = now }
}

// New returns an Exporter. completer writes the founder-pack outline; a nil
// completer always uses the built-in outline.
func New(assets Assets, completer refiner.Completer, opts ...Option) *Exporter {
	x := &Exporter{assets: assets, completer: completer, now: time.Now}
	for _, opt := range opts {
		opt(x)
	}
	return x
}

// entry is one file in an archive. Exactly one of Src and Data is set.
type entry struct {
	Name string
	Src  string
	Data []byte
}

// Logos zips the current variant set or the favorites of a session.
func (x *Exporter) Logos(ctx context.Context, snap *interview.Snapshot, source string, favorites []string) (string, error) {
	var candidates []string
	switch source {
	case SourceCurrent, "":
		candidates = snap.Session.LogoVariants
	case SourceFavorites:
		candidates = favorites
	default:
		return "", fmt.Errorf("unknown export source %q", source)
	}

	entries := x.assetEntries(candidates, "")
	if len(entries) == 0 {
		return "", ErrNothingToExport
	}

	rel := path.Join(exportsDir, fmt.Sprintf("logos_%d.zip", x.now().UnixMilli()))
	if err := x.writeArchive(ctx, rel, entries); err != nil {
		return "", err
	}
	x.log(snap.Session.ID, rel, len(entries))
	return rel, nil
}

// assetEntries keeps the paths that still resolve to files, named by base
// name under prefix. Duplicates are dropped.
func (x *Exporter) assetEntries(paths []string, prefix string) []entry {
	seen := make(map[string]bool)
	var out []entry
	for _, p := range paths {
		full, err := x.assets.Resolve(p)
		if err != nil {
			continue
		}
		name := path.Join(prefix, path.Base(p))
		if seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, entry{Name: name, Src: full})
	}
	return out
}

// writeArchive writes entries to rel via a temp file and rename.
func (x *Exporter) writeArchive(ctx context.Context, rel string, entries []entry) error {
	dest := filepath.Join(x.assets.Root(), filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("create export directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), ".export-*.zip")
	if err != nil {
		return fmt.Errorf("create archive: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := writeZip(ctx, tmp, entries); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close archive: %w", err)
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return fmt.Errorf("move archive into place: %w", err)
	}
	return nil
}

// writeZip streams entries into a zip archive on w.
func writeZip(ctx context.Context, w io.Writer, entries []entry) error {
	zw := zip.NewWriter(w)
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		fw, err := zw.Create(e.Name)
		if err != nil {
			return fmt.Errorf("add %s: %w", e.Name, err)
		}
		if e.Src == "" {
			if _, err := fw.Write(e.Data); err != nil {
				return fmt.Errorf("write %s: %w", e.Name, err)
			}
			continue
		}
		if err := copyFile(fw, e.Src); err != nil {
			return fmt.Errorf("write %s: %w", e.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("finish archive: %w", err)
	}
	return nil
}

func copyFile(w io.Writer, src string) error {
	f, err := os.Open(src)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(w, f)
	return err
}

func (x *Exporter) log(sessionID, rel string, count int) {
	_ = x.logger.Append(log.LogEvent{Event: log.EventExportWritten, SessionID: sessionID, Path: rel, Count: count})
}
