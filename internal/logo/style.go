package logo

import (
	"regexp"
	"strings"
)

// Style names a layout template.
type Style string

const (
	Wordmark     Style = "Wordmark"
	Monogram     Style = "Monogram"
	IconWordmark Style = "Icon+Wordmark"
	Emblem       Style = "Emblem"
	SymbolOnly   Style = "Symbol-only"
)

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Styles returns every style in presentation order.
func Styles() []Style {
	return []Style{Wordmark, Monogram, IconWordmark, Emblem, SymbolOnly}
}

// ParseStyle matches s case-insensitively against style names and their
// slugs. Anything unrecognized is Wordmark.
func ParseStyle(s string) Style {
	key := slug(s)
	for _, st := range Styles() {
		if key == st.Slug() {
			return st
		}
	}
	return Wordmark
}

// Slug is the file-name form of the style, e.g. "icon_wordmark".
func (s Style) Slug() string {
	return slug(string(s))
}

// Prefs are the caller's visual-identity preferences for one generation.
type Prefs struct {
	Palette       []string
	Font          string
	PaletteLocked bool
	FontLocked    bool
	KeepLayout    bool
	LayoutSeed    uint32
}

func (p Prefs) lockedPalette() []string {
	if p.PaletteLocked && len(p.Palette) == 3 {
		return p.Palette
	}
	return nil
}

func (p Prefs) lockedFont() string {
	if p.FontLocked {
		return p.Font
	}
	return ""
}

func slug(s string) string {
	return strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), "_"), "_")
}
