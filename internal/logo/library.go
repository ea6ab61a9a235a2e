package logo

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

var (
	// ErrOutsideRoot is returned for paths that escape the asset root.
	ErrOutsideRoot = errors.New("path escapes asset root")
	// ErrAssetNotFound is returned for paths that do not name a file.
	ErrAssetNotFound = errors.New("asset not found")
)

// Library persists rendered variants under a root directory and resolves
// root-relative references back to files.
type Library struct {
	root string
}

// NewLibrary creates root if needed.
func NewLibrary(root string) (*Library, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve asset root: %w", err)
	}
	if err := os.MkdirAll(abs, 0755); err != nil {
		return nil, fmt.Errorf("create asset root: %w", err)
	}
	return &Library{root: abs}, nil
}

// Root returns the absolute asset root.
func (l *Library) Root() string {
	return l.root
}

// Generate renders and writes one set of variants, returning their
// root-relative paths in variant order.
func (l *Library) Generate(name string, style Style, generation int, prefs Prefs, now time.Time) ([]string, error) {
	variants := Render(name, style, generation, prefs, now.UnixMilli())
	return l.write(name, generation, now, variants)
}

// Preview renders one set and keeps only the first variant.
func (l *Library) Preview(name string, style Style, generation int, prefs Prefs, now time.Time) (string, error) {
	variants := Render(name, style, generation, prefs, now.UnixMilli())
	paths, err := l.write(name, generation, now, variants[:1])
	if err != nil {
		return "", err
	}
	return paths[0], nil
}

func (l *Library) write(name string, generation int, now time.Time, variants []Variant) ([]string, error) {
	if len(variants) == 0 {
		return nil, fmt.Errorf("render produced no variants")
	}

	dir := "logos_" + CompanySlug(name)
	if err := os.MkdirAll(filepath.Join(l.root, dir), 0755); err != nil {
		return nil, fmt.Errorf("create logo directory: %w", err)
	}

	paths := make([]string, 0, len(variants))
	for _, v := range variants {
		rel := path.Join(dir, fmt.Sprintf("logo_%s_g%d_%d_%d.svg", v.Style.Slug(), generation, now.UnixMilli(), v.Index))
		if err := os.WriteFile(filepath.Join(l.root, filepath.FromSlash(rel)), v.SVG, 0644); err != nil {
			return nil, fmt.Errorf("write logo: %w", err)
		}
		paths = append(paths, rel)
	}
	return paths, nil
}

// Resolve maps a root-relative path to an absolute file path. Paths that
// leave the root, lexically or through a symlink, are rejected; missing
// files and directories are not found.
func (l *Library) Resolve(rel string) (string, error) {
	if rel == "" || filepath.IsAbs(rel) || strings.HasPrefix(rel, "/") {
		return "", fmt.Errorf("%w: %q", ErrOutsideRoot, rel)
	}

	full := filepath.Join(l.root, filepath.FromSlash(rel))
	if !within(l.root, full) {
		return "", fmt.Errorf("%w: %q", ErrOutsideRoot, rel)
	}

	target, err := filepath.EvalSymlinks(full)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: %q", ErrAssetNotFound, rel)
		}
		return "", fmt.Errorf("resolve asset: %w", err)
	}
	realRoot, err := filepath.EvalSymlinks(l.root)
	if err != nil {
		return "", fmt.Errorf("resolve asset root: %w", err)
	}
	if !within(realRoot, target) {
		return "", fmt.Errorf("%w: %q", ErrOutsideRoot, rel)
	}

	info, err := os.Stat(target)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: %q", ErrAssetNotFound, rel)
		}
		return "", fmt.Errorf("stat asset: %w", err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("%w: %q", ErrAssetNotFound, rel)
	}
	return target, nil
}

// within reports whether p lies strictly below root.
func within(root, p string) bool {
	inside, err := filepath.Rel(root, p)
	if err != nil || inside == "." || inside == ".." || strings.HasPrefix(inside, ".."+string(filepath.Separator)) {
		return false
	}
	return true
}

// CompanySlug is the lowercase, underscore-separated form of a company name.
func CompanySlug(name string) string {
	if s := slug(name); s != "" {
		return s
	}
	return "startup"
}
