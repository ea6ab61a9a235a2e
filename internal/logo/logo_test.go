package logo

import (
	"bytes"
	"errors"
	"os"
	"path"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const testClock = int64(1767225600123)

func TestRenderDeterministic(t *testing.T) {
	for _, style := range Styles() {
		t.Run(string(style), func(t *testing.T) {
			a := Render("Acme Health", style, 3, Prefs{}, testClock)
			b := Render("Acme Health", style, 3, Prefs{}, testClock)
			if len(a) != VariantsPerRender || len(b) != VariantsPerRender {
				t.Fatalf("got %d and %d variants", len(a), len(b))
			}
			for i := range a {
				if !bytes.Equal(a[i].SVG, b[i].SVG) {
					t.Errorf("variant %d differs between identical renders", i+1)
				}
			}
		})
	}
}

func TestNextGenerationDiverges(t *testing.T) {
	if Seed(testClock, 3) == Seed(testClock, 4) {
		t.Fatal("seeds for g and g+1 are equal")
	}
	a := Render("Acme", Wordmark, 3, Prefs{}, testClock)
	b := Render("Acme", Wordmark, 4, Prefs{}, testClock)
	same := true
	for i := range a {
		if a[i].Layout != b[i].Layout {
			same = false
		}
	}
	if same {
		t.Error("generation g+1 reproduced the layout of generation g")
	}
}

func TestKeepLayoutFreezesGeometry(t *testing.T) {
	prefs := Prefs{KeepLayout: true, LayoutSeed: 424242}
	for _, style := range []Style{Wordmark, Monogram, IconWordmark, SymbolOnly} {
		t.Run(string(style), func(t *testing.T) {
			first := Render("Acme", style, 1, prefs, testClock)
			second := Render("Acme", style, 2, prefs, testClock+17)
			for i := range first {
				if first[i].Layout != second[i].Layout {
					t.Errorf("variant %d layout changed: %+v vs %+v", i+1, first[i].Layout, second[i].Layout)
				}
			}
		})
	}
}

func TestKeepLayoutVariesColors(t *testing.T) {
	prefs := Prefs{KeepLayout: true, LayoutSeed: 99}
	differs := false
	for g := 1; g <= 6; g++ {
		a := Render("Acme", Wordmark, g, prefs, testClock)
		b := Render("Acme", Wordmark, g+1, prefs, testClock)
		for i := range a {
			if strings.Join(a[i].Palette, ",") != strings.Join(b[i].Palette, ",") || a[i].Font != b[i].Font {
				differs = true
			}
		}
	}
	if !differs {
		t.Error("unlocked palette and font never varied across generations")
	}
}

func TestLocksOverrideSampling(t *testing.T) {
	locked := []string{"#111111", "#222222", "#333333"}
	prefs := Prefs{Palette: locked, Font: "Space Grotesk", PaletteLocked: true, FontLocked: true}
	for g := 0; g < 5; g++ {
		for _, v := range Render("Acme", Wordmark, g, prefs, testClock) {
			if strings.Join(v.Palette, ",") != strings.Join(locked, ",") {
				t.Errorf("palette = %v, want locked %v", v.Palette, locked)
			}
			if v.Font != "Space Grotesk" {
				t.Errorf("font = %q, want locked font", v.Font)
			}
			if !bytes.Contains(v.SVG, []byte(`stop-color="#222222"`)) {
				t.Error("locked palette missing from SVG")
			}
		}
	}

	// Stored values without the lock flags are ignored.
	unlocked := Prefs{Palette: locked, Font: "Space Grotesk"}
	for _, v := range Render("Acme", Wordmark, 0, unlocked, testClock) {
		if v.Font == "Space Grotesk" {
			t.Error("font applied without lock")
		}
	}
}

func TestRenderEscapesAndDefaults(t *testing.T) {
	v := Render(`<Tom & "Jerry">`, Emblem, 0, Prefs{}, testClock)[0]
	svg := string(v.SVG)
	if strings.Contains(svg, "<Tom") {
		t.Error("name was not escaped")
	}
	if !strings.Contains(svg, "&lt;Tom &amp;") {
		t.Errorf("escaped name missing: %s", svg)
	}

	empty := Render("   ", Monogram, 0, Prefs{}, testClock)[0]
	if !bytes.Contains(empty.SVG, []byte(">Startup<")) {
		t.Error("empty name did not default to Startup")
	}
	if !bytes.Contains(empty.SVG, []byte(`width="960" height="540"`)) {
		t.Error("unexpected canvas size")
	}
}

func TestUnknownStyleIsWordmark(t *testing.T) {
	v := Render("Acme", Style("Graffiti"), 0, Prefs{}, testClock)[0]
	if v.Style != Wordmark {
		t.Errorf("Style = %q, want Wordmark", v.Style)
	}
}

func TestParseStyle(t *testing.T) {
	tests := map[string]Style{
		"wordmark":      Wordmark,
		"MONOGRAM":      Monogram,
		"Icon+Wordmark": IconWordmark,
		"icon_wordmark": IconWordmark,
		"symbol-only":   SymbolOnly,
		"emblem":        Emblem,
		"":              Wordmark,
		"unknown":       Wordmark,
	}
	for in, want := range tests {
		if got := ParseStyle(in); got != want {
			t.Errorf("ParseStyle(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestInitials(t *testing.T) {
	tests := map[string]string{
		"acme":                "A",
		"north star labs inc": "NSL",
		"  spaced   out  ":    "SO",
		"élan vital":          "ÉV",
	}
	for in, want := range tests {
		if got := initials(in); got != want {
			t.Errorf("initials(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestZeroSeedStreamAdvances(t *testing.T) {
	r := NewRand(0)
	if r.Uint32() == 0 {
		t.Error("zero-seeded stream is stuck at zero")
	}
}

func TestLibraryGenerateAndResolve(t *testing.T) {
	lib, err := NewLibrary(t.TempDir())
	if err != nil {
		t.Fatalf("NewLibrary: %v", err)
	}
	now := time.UnixMilli(testClock)

	paths, err := lib.Generate("Acme Health", IconWordmark, 2, Prefs{}, now)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(paths) != VariantsPerRender {
		t.Fatalf("got %d paths", len(paths))
	}
	want := "logos_acme_health/logo_icon_wordmark_g2_1767225600123_1.svg"
	if paths[0] != want {
		t.Errorf("paths[0] = %q, want %q", paths[0], want)
	}

	full, err := lib.Resolve(paths[0])
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	data, err := os.ReadFile(full)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	expected := Render("Acme Health", IconWordmark, 2, Prefs{}, testClock)[0].SVG
	if !bytes.Equal(data, expected) {
		t.Error("stored SVG differs from a fresh render")
	}
}

func TestLibraryPreview(t *testing.T) {
	lib, err := NewLibrary(t.TempDir())
	if err != nil {
		t.Fatalf("NewLibrary: %v", err)
	}
	p, err := lib.Preview("", SymbolOnly, 1, Prefs{}, time.UnixMilli(testClock))
	if err != nil {
		t.Fatalf("Preview: %v", err)
	}
	if !strings.HasPrefix(p, "logos_startup/logo_symbol_only_g1_") {
		t.Errorf("preview path = %q", p)
	}
	entries, _ := os.ReadDir(filepath.Join(lib.Root(), "logos_startup"))
	if len(entries) != 1 {
		t.Errorf("preview wrote %d files, want 1", len(entries))
	}
}

func TestResolveContainment(t *testing.T) {
	root := t.TempDir()
	lib, err := NewLibrary(filepath.Join(root, "assets"))
	if err != nil {
		t.Fatalf("NewLibrary: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "secret.txt"), []byte("x"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.MkdirAll(filepath.Join(lib.Root(), "logos_acme"), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	links := map[string]string{
		"logos_acme/escape.svg":   filepath.Join(root, "secret.txt"),
		"logos_acme/dangling.svg": filepath.Join(root, "gone.svg"),
		"logos_out":               root,
	}
	for name, target := range links {
		if err := os.Symlink(target, filepath.Join(lib.Root(), filepath.FromSlash(name))); err != nil {
			t.Skipf("symlinks unavailable: %v", err)
		}
	}

	tests := []struct {
		path string
		want error
	}{
		{"logos_acme/escape.svg", ErrOutsideRoot},
		{"logos_out/secret.txt", ErrOutsideRoot},
		{"logos_acme/dangling.svg", ErrAssetNotFound},
		{"../secret.txt", ErrOutsideRoot},
		{"logos_acme/../../secret.txt", ErrOutsideRoot},
		{"/etc/passwd", ErrOutsideRoot},
		{"", ErrOutsideRoot},
		{"..", ErrOutsideRoot},
		{"logos_acme/missing.svg", ErrAssetNotFound},
		{"logos_acme", ErrAssetNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if _, err := lib.Resolve(tt.path); !errors.Is(err, tt.want) {
				t.Errorf("Resolve(%q) error = %v, want %v", tt.path, err, tt.want)
			}
		})
	}
}

func TestResolveFollowsLinksInsideRoot(t *testing.T) {
	lib, err := NewLibrary(t.TempDir())
	if err != nil {
		t.Fatalf("NewLibrary: %v", err)
	}
	paths, err := lib.Generate("Acme", Wordmark, 1, Prefs{}, time.UnixMilli(testClock))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	link := filepath.Join(lib.Root(), "logos_acme", "latest.svg")
	if err := os.Symlink(filepath.Join(lib.Root(), filepath.FromSlash(paths[0])), link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	full, err := lib.Resolve("logos_acme/latest.svg")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if filepath.Base(full) != path.Base(paths[0]) {
		t.Errorf("Resolve = %q, want the link target", full)
	}
}
