// Package logo renders reproducible SVG logo variants and stores them under
// an asset root.
package logo

import (
	"encoding/xml"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// VariantsPerRender is the number of variants each render produces.
const VariantsPerRender = 3

const (
	canvasW    = 960
	canvasH    = 540
	background = "#0b0620"
)

var palettes = [][]string{
	{"#6b4df0", "#a855f7", "#22d3ee"},
	{"#f43f5e", "#a855f7", "#6366f1"},
	{"#10b981", "#14b8a6", "#0ea5e9"},
	{"#f59e0b", "#ef4444", "#8b5cf6"},
	{"#06b6d4", "#3b82f6", "#8b5cf6"},
}

type font struct {
	Family string
	Weight int
}

var fonts = []font{
	{"Inter", 800},
	{"Montserrat", 700},
	{"Poppins", 700},
	{"Nunito", 800},
	{"SF Pro Display", 700},
	{"Raleway", 800},
}

// Layout holds the parameters drawn from the layout stream. Fields a style
// does not use stay zero.
type Layout struct {
	LetterSpacing float64
	Skew          int
	CaseMode      int
	Radius        int
	Corner        int
	Weight        int
	Shape         int
	Gap           int
}

// Variant is one rendered logo.
type Variant struct {
	Index   int // 1-based
	Style   Style
	Palette []string
	Font    string
	Layout  Layout
	SVG     []byte
}

// Render produces VariantsPerRender variants of name in style. The output is
// a pure function of its arguments.
func Render(name string, style Style, generation int, prefs Prefs, clockMillis int64) []Variant {
	base := strings.TrimSpace(name)
	if base == "" {
		base = "Startup"
	}
	style = ParseStyle(string(style))

	r := &renderer{
		name:       base,
		initials:   initials(base),
		generation: generation,
		palette:    prefs.lockedPalette(),
		font:       prefs.lockedFont(),
	}
	r.layout, r.color = Streams(Seed(clockMillis, generation), prefs)

	out := make([]Variant, 0, VariantsPerRender)
	for i := 1; i <= VariantsPerRender; i++ {
		out = append(out, r.variant(style, i))
	}
	return out
}

type renderer struct {
	name       string
	initials   string
	generation int
	palette    []string
	font       string
	layout     *Rand
	color      *Rand
}

func (r *renderer) pickPalette() []string {
	if r.palette != nil {
		return r.palette
	}
	return palettes[r.color.IntN(len(palettes))]
}

func (r *renderer) pickFont() font {
	if r.font != "" {
		return font{Family: r.font, Weight: 800}
	}
	return fonts[r.color.IntN(len(fonts))]
}

func (r *renderer) variant(style Style, idx int) Variant {
	pal := r.pickPalette()
	f := r.pickFont()

	v := Variant{Index: idx, Style: style, Palette: pal, Font: f.Family}
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`+"\n", canvasW, canvasH, canvasW, canvasH)
	fmt.Fprintf(&b, `  <rect width="100%%" height="100%%" fill="%s"/>`+"\n", background)

	switch style {
	case Monogram:
		r.monogram(&b, &v, pal, f)
	case IconWordmark:
		r.iconWordmark(&b, &v, pal, f)
	case Emblem:
		r.emblem(&b, pal, f)
	case SymbolOnly:
		r.symbolOnly(&b, &v, pal)
	default:
		r.wordmark(&b, &v, pal, f, idx)
	}

	b.WriteString("</svg>\n")
	v.SVG = []byte(b.String())
	return v
}

func (r *renderer) wordmark(b *strings.Builder, v *Variant, pal []string, f font, idx int) {
	gradID := fmt.Sprintf("g%d_%d_%d", r.generation, idx, r.color.IntN(1000000))
	v.Layout.LetterSpacing = math.Round(lerp(-0.5, 2.0, r.layout.Float64())*10) / 10
	v.Layout.Skew = int(math.Round(lerp(-6, 6, r.layout.Float64())))
	v.Layout.CaseMode = r.layout.IntN(3)

	fmt.Fprintf(b, `  <defs><linearGradient id="%s" x1="0%%" y1="0%%" x2="100%%" y2="0%%">`, gradID)
	fmt.Fprintf(b, `<stop offset="0%%" stop-color="%s"/><stop offset="50%%" stop-color="%s"/><stop offset="100%%" stop-color="%s"/>`, pal[0], pal[1], pal[2])
	b.WriteString("</linearGradient></defs>\n")
	fmt.Fprintf(b, `  <g transform="translate(80,280) skewX(%d)">`+"\n", v.Layout.Skew)
	fmt.Fprintf(b, `    <text x="0" y="0" fill="url(#%s)" font-family="%s" font-weight="%d" font-size="88" letter-spacing="%s">%s</text>`+"\n",
		gradID, escape(f.Family), f.Weight, formatFloat(v.Layout.LetterSpacing), escape(varyCase(r.name, v.Layout.CaseMode)))
	b.WriteString("  </g>\n")
}

func (r *renderer) monogram(b *strings.Builder, v *Variant, pal []string, f font) {
	bg := pal[r.color.IntN(len(pal))]
	fg := pal[(r.color.IntN(len(pal))+1)%len(pal)]
	v.Layout.Radius = int(lerp(100, 160, r.layout.Float64()))
	v.Layout.Corner = int(lerp(20, 40, r.layout.Float64()))
	v.Layout.Weight = int(lerp(700, 900, r.layout.Float64()))

	R, c := v.Layout.Radius, v.Layout.Corner
	fmt.Fprintf(b, `  <rect x="120" y="%d" rx="%d" ry="%d" width="%d" height="%d" fill="%s"/>`+"\n", canvasH/2-R, c, c, R*2, R*2, bg)
	fmt.Fprintf(b, `  <text x="%d" y="%d" text-anchor="middle" font-family="%s" font-weight="%d" font-size="120" fill="%s">%s</text>`+"\n",
		120+R, canvasH/2+28, escape(f.Family), v.Layout.Weight, fg, escape(r.initials))
	fmt.Fprintf(b, `  <text x="400" y="%d" font-family="%s" font-weight="%d" font-size="66" fill="#ffffff">%s</text>`+"\n",
		canvasH/2+25, escape(f.Family), f.Weight, escape(r.name))
}

func (r *renderer) iconWordmark(b *strings.Builder, v *Variant, pal []string, f font) {
	v.Layout.Shape = r.layout.IntN(3)
	const x, y, s = 120.0, 270.0, 90.0

	switch v.Layout.Shape {
	case 0:
		fmt.Fprintf(b, `  <circle cx="%s" cy="%s" r="%s" fill="%s"/>`+"\n", formatFloat(x), formatFloat(y), formatFloat(s), pal[0])
	case 1:
		pts := make([]string, 0, 6)
		for i := 0; i < 6; i++ {
			a := math.Pi / 3 * float64(i)
			pts = append(pts, formatPoint(x+s*math.Cos(a), y+s*math.Sin(a)))
		}
		fmt.Fprintf(b, `  <polygon points="%s" fill="%s"/>`+"\n", strings.Join(pts, " "), pal[0])
	default:
		pts := []string{formatPoint(x, y-s), formatPoint(x-s, y+s), formatPoint(x+s, y+s)}
		fmt.Fprintf(b, `  <polygon points="%s" fill="%s"/>`+"\n", strings.Join(pts, " "), pal[0])
	}
	fmt.Fprintf(b, `  <text x="120" y="280" text-anchor="middle" font-family="%s" font-weight="900" font-size="64" fill="%s">%s</text>`+"\n",
		escape(f.Family), pal[1], escape(r.initials))
	fmt.Fprintf(b, `  <text x="270" y="300" font-family="%s" font-weight="%d" font-size="72" fill="#ffffff">%s</text>`+"\n",
		escape(f.Family), f.Weight, escape(r.name))
}

func (r *renderer) emblem(b *strings.Builder, pal []string, f font) {
	col := pal[r.color.IntN(len(pal))]
	const x, y, w, h, rad = 100, 160, 760, 220, 24

	fmt.Fprintf(b, `  <rect x="%d" y="%d" width="%d" height="%d" rx="%d" ry="%d" fill="none" stroke="%s" stroke-width="4"/>`+"\n", x, y, w, h, rad, rad, col)
	fmt.Fprintf(b, `  <text x="%d" y="%d" font-family="%s" font-weight="%d" font-size="82" fill="#ffffff">%s</text>`+"\n",
		x+24, y+120, escape(f.Family), f.Weight, escape(r.name))
	fmt.Fprintf(b, `  <text x="%d" y="%d" text-anchor="end" font-family="%s" font-weight="800" font-size="42" fill="%s">%s</text>`+"\n",
		x+w-24, y+120, escape(f.Family), col, escape(r.initials))
}

func (r *renderer) symbolOnly(b *strings.Builder, v *Variant, pal []string) {
	col1 := pal[r.color.IntN(len(pal))]
	col2 := pal[(r.color.IntN(len(pal))+1)%len(pal)]
	v.Layout.Radius = int(lerp(110, 160, r.layout.Float64()))
	v.Layout.Gap = int(lerp(10, 26, r.layout.Float64()))

	letter := "S"
	if r.initials != "" {
		first, _ := utf8.DecodeRuneInString(r.initials)
		letter = string(first)
	}
	const cx, cy = 480, 270
	fmt.Fprintf(b, `  <circle cx="%d" cy="%d" r="%d" fill="%s"/>`+"\n", cx, cy, v.Layout.Radius, col1)
	fmt.Fprintf(b, `  <circle cx="%d" cy="%d" r="%d" fill="%s"/>`+"\n", cx, cy, v.Layout.Radius-v.Layout.Gap, col2)
	fmt.Fprintf(b, `  <text x="%d" y="%d" text-anchor="middle" font-family="Inter" font-weight="900" font-size="96" fill="%s">%s</text>`+"\n",
		cx, cy+24, background, escape(letter))
}

// initials takes the first letter of up to three words, uppercased.
func initials(name string) string {
	var out []rune
	for _, w := range strings.Fields(name) {
		if len(out) == 3 {
			break
		}
		first, _ := utf8.DecodeRuneInString(w)
		out = append(out, unicode.ToUpper(first))
	}
	return string(out)
}

// varyCase applies case mode 0 (as typed), 1 (upper) or 2 (title case).
func varyCase(s string, mode int) string {
	switch mode {
	case 1:
		return strings.ToUpper(s)
	case 2:
		words := strings.Fields(s)
		for i, w := range words {
			first, size := utf8.DecodeRuneInString(w)
			words[i] = string(unicode.ToUpper(first)) + strings.ToLower(w[size:])
		}
		return strings.Join(words, " ")
	default:
		return s
	}
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func formatPoint(x, y float64) string {
	return strconv.FormatFloat(x, 'f', 2, 64) + "," + strconv.FormatFloat(y, 'f', 2, 64)
}

func escape(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}
