// Package testutil provides test helper utilities for orchestra tests.
package testutil

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/PXLTCH/startup-ai/internal/logo"
	"github.com/PXLTCH/startup-ai/internal/session"
)

// FixedTime is the instant returned by Clock. Its millisecond component is
// non-zero so tests notice truncation.
var FixedTime = time.UnixMilli(1767225600123)

// Clock returns a clock frozen at FixedTime.
func Clock() func() time.Time {
	return func() time.Time { return FixedTime }
}

// TempTree creates a temporary directory with the given files and returns its path.
// Files is a map of relative path -> content. Directories are created as needed.
// The directory is automatically cleaned up when the test finishes.
func TempTree(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()

	for relPath, content := range files {
		absPath := filepath.Join(dir, filepath.FromSlash(relPath))
		if err := os.MkdirAll(filepath.Dir(absPath), 0755); err != nil {
			t.Fatalf("creating directory for %s: %v", relPath, err)
		}
		if err := os.WriteFile(absPath, []byte(content), 0644); err != nil {
			t.Fatalf("writing %s: %v", relPath, err)
		}
	}

	return dir
}

// OpenStore opens a migrated pure-Go SQLite store in a temporary directory
// and closes it when the test finishes.
func OpenStore(t *testing.T) *session.Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	store, err := session.Open(context.Background(), session.DriverPureGo, path)
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

// NewLibrary creates an asset library rooted in a temporary directory.
func NewLibrary(t *testing.T) *logo.Library {
	t.Helper()
	lib, err := logo.NewLibrary(filepath.Join(t.TempDir(), "generated"))
	if err != nil {
		t.Fatalf("creating asset library: %v", err)
	}
	return lib
}

// SampleAnswers returns confirmed values for a small founder profile keyed
// by question id.
func SampleAnswers() map[string]string {
	return map[string]string{
		"vision.name":      "Acme Health",
		"vision.mission":   "We help rural clinics share patient records safely.",
		"problem.core":     "Clinics re-enter the same records by hand.",
		"market.customer":  "Independent rural clinics with under 20 staff.",
		"product.overview": "A shared record inbox that works offline.",
		"product.mvp":      "Fax-to-inbox import and a search page.",
		"revenue.model":    "Per-clinic monthly subscription.",
	}
}
