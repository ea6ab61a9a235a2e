package cleanup

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// createAsset writes a file at rel under root with the given modification time.
func createAsset(t *testing.T, root, rel string, modTime time.Time) string {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("creating directory for %s: %v", rel, err)
	}
	if err := os.WriteFile(path, []byte("<svg/>"), 0644); err != nil {
		t.Fatalf("writing %s: %v", rel, err)
	}
	if err := os.Chtimes(path, modTime, modTime); err != nil {
		t.Fatalf("setting mtime on %s: %v", rel, err)
	}
	return rel
}

func exists(t *testing.T, root, rel string) bool {
	t.Helper()
	_, err := os.Stat(filepath.Join(root, filepath.FromSlash(rel)))
	return err == nil
}

func TestPruneByAge_RemovesOldAssets(t *testing.T) {
	root := t.TempDir()

	now := time.Now()
	oldLogo := createAsset(t, root, "logos_acme/logo_wordmark_g1_1_0.svg", now.AddDate(0, 0, -60))
	newLogo := createAsset(t, root, "logos_acme/logo_wordmark_g2_2_0.svg", now.AddDate(0, 0, -5))
	oldOnly := createAsset(t, root, "logos_old_co/logo_emblem_g1_1_0.svg", now.AddDate(0, 0, -90))
	oldZip := createAsset(t, root, "exports/logos_1.zip", now.AddDate(0, 0, -45))

	pruned, err := PruneByAge(root, 30, false)
	if err != nil {
		t.Fatalf("PruneByAge failed: %v", err)
	}

	want := []string{oldZip, oldLogo, oldOnly}
	if strings.Join(pruned, ",") != strings.Join(want, ",") {
		t.Errorf("expected pruned=%v, got %v", want, pruned)
	}

	if exists(t, root, oldLogo) || exists(t, root, oldZip) {
		t.Error("expected old files to be deleted")
	}
	if !exists(t, root, newLogo) {
		t.Errorf("expected %s to still exist", newLogo)
	}
	// Emptied logo directories go away; the exports directory stays.
	if exists(t, root, "logos_old_co") {
		t.Error("expected empty logo directory to be removed")
	}
	if !exists(t, root, "exports") {
		t.Error("expected exports directory to remain")
	}
}

func TestPruneByAge_DryRun(t *testing.T) {
	root := t.TempDir()

	old := createAsset(t, root, "logos_acme/logo_monogram_g1_1_0.svg", time.Now().AddDate(0, 0, -60))

	pruned, err := PruneByAge(root, 30, true)
	if err != nil {
		t.Fatalf("PruneByAge dry-run failed: %v", err)
	}

	if len(pruned) != 1 || pruned[0] != old {
		t.Errorf("expected pruned=[%s], got %v", old, pruned)
	}
	if !exists(t, root, old) {
		t.Errorf("expected %s to still exist in dry-run", old)
	}
}

func TestPruneByAge_SkipsUnrelatedFiles(t *testing.T) {
	root := t.TempDir()

	old := time.Now().AddDate(0, 0, -60)
	createAsset(t, root, "orchestra.db", old)
	createAsset(t, root, "notes/readme.txt", old)

	pruned, err := PruneByAge(root, 1, false)
	if err != nil {
		t.Fatalf("PruneByAge failed: %v", err)
	}

	if len(pruned) != 0 {
		t.Errorf("expected nothing pruned, got %v", pruned)
	}
	if !exists(t, root, "orchestra.db") || !exists(t, root, "notes/readme.txt") {
		t.Error("unrelated files were removed")
	}
}

func TestPruneByAge_NegativeAge(t *testing.T) {
	if _, err := PruneByAge(t.TempDir(), -1, false); err == nil {
		t.Error("expected error for negative age")
	}
}

func TestPruneByAge_NonexistentDir(t *testing.T) {
	pruned, err := PruneByAge("/nonexistent/path", 30, false)
	if err != nil {
		t.Fatalf("expected nil error for nonexistent dir, got: %v", err)
	}
	if len(pruned) != 0 {
		t.Errorf("expected empty pruned list, got %v", pruned)
	}
}

func TestPruneKeepRecent_KeepsCorrectCount(t *testing.T) {
	root := t.TempDir()

	now := time.Now()
	d1 := createAsset(t, root, "exports/logos_4.zip", now.AddDate(0, 0, -4))
	d2 := createAsset(t, root, "exports/founder-pack_acme_20260101_0900.zip", now.AddDate(0, 0, -3))
	createAsset(t, root, "exports/logos_2.zip", now.AddDate(0, 0, -2))
	createAsset(t, root, "exports/logos_1.zip", now.AddDate(0, 0, -1))

	pruned, err := PruneKeepRecent(root, 2, false)
	if err != nil {
		t.Fatalf("PruneKeepRecent failed: %v", err)
	}

	if len(pruned) != 2 {
		t.Fatalf("expected 2 pruned, got %d: %v", len(pruned), pruned)
	}

	// The two oldest should be removed.
	if pruned[0] != d1 || pruned[1] != d2 {
		t.Errorf("expected pruned=[%s, %s], got %v", d1, d2, pruned)
	}

	entries, _ := os.ReadDir(filepath.Join(root, "exports"))
	if len(entries) != 2 {
		t.Errorf("expected 2 remaining archives, got %d", len(entries))
	}
}

func TestPruneKeepRecent_LeavesLogos(t *testing.T) {
	root := t.TempDir()

	old := time.Now().AddDate(0, 0, -10)
	logo := createAsset(t, root, "logos_acme/logo_emblem_g1_1_0.svg", old)
	createAsset(t, root, "exports/logos_1.zip", old)

	pruned, err := PruneKeepRecent(root, 0, false)
	if err != nil {
		t.Fatalf("PruneKeepRecent failed: %v", err)
	}
	if len(pruned) != 1 || pruned[0] != "exports/logos_1.zip" {
		t.Errorf("expected only the archive pruned, got %v", pruned)
	}
	if !exists(t, root, logo) {
		t.Errorf("expected %s to remain", logo)
	}
}

func TestPruneKeepRecent_KeepMoreThanExist(t *testing.T) {
	root := t.TempDir()

	createAsset(t, root, "exports/logos_1.zip", time.Now().AddDate(0, 0, -1))

	pruned, err := PruneKeepRecent(root, 5, false)
	if err != nil {
		t.Fatalf("PruneKeepRecent failed: %v", err)
	}

	if len(pruned) != 0 {
		t.Errorf("expected no pruned archives, got %v", pruned)
	}
}

func TestPruneKeepRecent_DryRun(t *testing.T) {
	root := t.TempDir()

	now := time.Now()
	d1 := createAsset(t, root, "exports/logos_3.zip", now.AddDate(0, 0, -3))
	createAsset(t, root, "exports/logos_1.zip", now.AddDate(0, 0, -1))

	pruned, err := PruneKeepRecent(root, 1, true)
	if err != nil {
		t.Fatalf("PruneKeepRecent dry-run failed: %v", err)
	}

	if len(pruned) != 1 || pruned[0] != d1 {
		t.Errorf("expected pruned=[%s], got %v", d1, pruned)
	}

	entries, _ := os.ReadDir(filepath.Join(root, "exports"))
	if len(entries) != 2 {
		t.Errorf("expected 2 archives to remain in dry-run, got %d", len(entries))
	}
}

func TestPruneKeepRecent_NonexistentDir(t *testing.T) {
	pruned, err := PruneKeepRecent("/nonexistent/path", 5, false)
	if err != nil {
		t.Fatalf("expected nil error for nonexistent dir, got: %v", err)
	}
	if len(pruned) != 0 {
		t.Errorf("expected empty pruned list, got %v", pruned)
	}
}
