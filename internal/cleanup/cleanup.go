// Package cleanup implements retention pruning of generated assets.
package cleanup

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const (
	// logoDirPrefix marks per-company logo directories under the asset root.
	logoDirPrefix = "logos_"
	// exportsDir holds export archives under the asset root.
	exportsDir = "exports"
)

// PruneByAge removes generated logos and export archives under root whose
// modification time is older than maxAgeDays. Logo directories left empty
// are removed too. If dryRun is true, nothing is deleted; the function only
// returns the files that would be removed. Returned paths are root-relative
// with forward slashes.
func PruneByAge(root string, maxAgeDays int, dryRun bool) ([]string, error) {
	if maxAgeDays < 0 {
		return nil, fmt.Errorf("max age must not be negative, got %d", maxAgeDays)
	}

	dirs, err := assetDirs(root)
	if err != nil {
		return nil, err
	}

	cutoff := time.Now().AddDate(0, 0, -maxAgeDays)
	var pruned []string

	for _, dir := range dirs {
		files, err := listFiles(filepath.Join(root, dir))
		if err != nil {
			return pruned, err
		}

		kept := len(files)
		for _, f := range files {
			if !f.modTime.Before(cutoff) {
				continue
			}
			if !dryRun {
				if rmErr := os.Remove(filepath.Join(root, dir, f.name)); rmErr != nil {
					return pruned, fmt.Errorf("removing %s/%s: %w", dir, f.name, rmErr)
				}
			}
			kept--
			pruned = append(pruned, path.Join(dir, f.name))
		}

		if kept == 0 && !dryRun && strings.HasPrefix(dir, logoDirPrefix) {
			if rmErr := os.Remove(filepath.Join(root, dir)); rmErr != nil && !os.IsNotExist(rmErr) {
				return pruned, fmt.Errorf("removing %s: %w", dir, rmErr)
			}
		}
	}

	return pruned, nil
}

// PruneKeepRecent removes all export archives except the most recent keep.
// If dryRun is true, no files are deleted. Returns the root-relative paths
// of pruned archives.
func PruneKeepRecent(root string, keep int, dryRun bool) ([]string, error) {
	if keep < 0 {
		return nil, fmt.Errorf("keep must not be negative, got %d", keep)
	}

	files, err := listFiles(filepath.Join(root, exportsDir))
	if err != nil {
		return nil, err
	}

	// Oldest first; ties break on name so the order is stable.
	sort.Slice(files, func(i, j int) bool {
		if files[i].modTime.Equal(files[j].modTime) {
			return files[i].name < files[j].name
		}
		return files[i].modTime.Before(files[j].modTime)
	})

	if len(files) <= keep {
		return nil, nil
	}

	var pruned []string
	for _, f := range files[:len(files)-keep] {
		if !dryRun {
			if rmErr := os.Remove(filepath.Join(root, exportsDir, f.name)); rmErr != nil {
				return pruned, fmt.Errorf("removing %s/%s: %w", exportsDir, f.name, rmErr)
			}
		}
		pruned = append(pruned, path.Join(exportsDir, f.name))
	}

	return pruned, nil
}

type fileInfo struct {
	name    string
	modTime time.Time
}

// assetDirs lists the prunable directories directly under root, sorted.
func assetDirs(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading asset root: %w", err)
	}

	var dirs []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if entry.Name() == exportsDir || strings.HasPrefix(entry.Name(), logoDirPrefix) {
			dirs = append(dirs, entry.Name())
		}
	}
	sort.Strings(dirs)
	return dirs, nil
}

// listFiles returns the regular files directly inside dir. A missing
// directory has no files.
func listFiles(dir string) ([]fileInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", filepath.Base(dir), err)
	}

	files := make([]fileInfo, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("stat %s: %w", entry.Name(), err)
		}
		files = append(files, fileInfo{name: entry.Name(), modTime: info.ModTime()})
	}
	return files, nil
}
