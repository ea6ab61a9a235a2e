package export

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/PXLTCH/startup-ai/internal/catalog"
	"github.com/PXLTCH/startup-ai/internal/interview"
	"github.com/PXLTCH/startup-ai/internal/logo"
	"github.com/PXLTCH/startup-ai/internal/refiner"
)

// Outline sources.
const (
	OutlineCompletion = "completion"
	OutlineFallback   = "fallback"
)

// maxSlides caps a completion-generated outline.
const maxSlides = 12

// Slide is one pitch-deck outline entry.
type Slide struct {
	Title   string   `json:"title"`
	Bullets []string `json:"bullets"`
}

// Pack describes a written founder pack.
type Pack struct {
	Path          string  `json:"path"`
	Profile       Profile `json:"profile"`
	Slides        []Slide `json:"slides"`
	OutlineSource string  `json:"outlineSource"`
	Logos         int     `json:"logos"`
}

// FounderPack bundles the outline, the answers summary, the profile and
// the company's logos into one archive. Only confirmed answers feed the
// profile and the outline.
func (x *Exporter) FounderPack(ctx context.Context, cat *catalog.Catalog, snap *interview.Snapshot) (*Pack, error) {
	now := x.now()
	transcript := BuildConfirmedTranscript(cat, snap, now)
	profile := transcript.Profile

	slides, source := x.outline(ctx, profile)

	profileJSON, err := json.MarshalIndent(profile, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode profile: %w", err)
	}
	outlineJSON, err := json.MarshalIndent(slides, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode outline: %w", err)
	}

	entries := []entry{
		{Name: "profile.json", Data: profileJSON},
		{Name: "outline.json", Data: outlineJSON},
		{Name: "outline.md", Data: []byte(FormatOutline(profile.Name, slides))},
		{Name: "summary.md", Data: []byte(FormatProfile(profile) + "---\n\n" + FormatMarkdown(transcript))},
	}

	logos, err := x.companyLogos(snap.Confirmed[catalog.NameQuestionID])
	if err != nil {
		return nil, err
	}
	logoEntries := x.assetEntries(logos, "logos")
	entries = append(entries, logoEntries...)

	name := fmt.Sprintf("founder-pack_%s_%s.zip", logo.CompanySlug(snap.Confirmed[catalog.NameQuestionID]), now.Format("20060102_1504"))
	rel := path.Join(exportsDir, name)
	if err := x.writeArchive(ctx, rel, entries); err != nil {
		return nil, err
	}
	x.log(snap.Session.ID, rel, len(entries))

	return &Pack{Path: rel, Profile: profile, Slides: slides, OutlineSource: source, Logos: len(logoEntries)}, nil
}

// outline asks the completer for slides and falls back to a fixed outline
// built from the profile when the call fails or returns nothing usable.
func (x *Exporter) outline(ctx context.Context, p Profile) ([]Slide, string) {
	if x.completer != nil {
		data, err := json.Marshal(p)
		if err == nil {
			out, err := x.completer.Complete(ctx, refiner.Request{
				System:      refiner.PackSystemPrompt,
				Prompt:      refiner.BuildOutlinePrompt(string(data)),
				Temperature: 0.2,
			})
			if err == nil {
				if slides := parseSlides(out); len(slides) > 0 {
					return slides, OutlineCompletion
				}
			}
		}
	}
	return fallbackOutline(p), OutlineFallback
}

func parseSlides(out string) []Slide {
	var raw []Slide
	if err := json.Unmarshal([]byte(refiner.CleanJSON(out)), &raw); err != nil {
		return nil
	}
	var slides []Slide
	for _, s := range raw {
		s.Title = strings.TrimSpace(s.Title)
		if s.Title == "" {
			continue
		}
		bullets := []string{}
		for _, b := range s.Bullets {
			if b = strings.TrimSpace(b); b != "" {
				bullets = append(bullets, b)
			}
		}
		s.Bullets = bullets
		slides = append(slides, s)
		if len(slides) == maxSlides {
			break
		}
	}
	return slides
}

// fallbackOutline always has Vision and Problem slides, plus one slide per
// other profile field with content.
func fallbackOutline(p Profile) []Slide {
	slides := []Slide{
		{Title: "Vision", Bullets: nonEmpty(p.Mission)},
		{Title: "Problem", Bullets: nonEmpty(p.Problem)},
	}
	for _, f := range []struct{ title, value string }{
		{"Customers", p.Customers},
		{"Product", p.Product},
		{"MVP", p.MVP},
		{"Business Model", p.Revenue},
	} {
		if strings.TrimSpace(f.value) != "" {
			slides = append(slides, Slide{Title: f.title, Bullets: []string{f.value}})
		}
	}
	return slides
}

func nonEmpty(s string) []string {
	if strings.TrimSpace(s) == "" {
		return []string{}
	}
	return []string{s}
}

// FormatOutline renders slides as a Markdown outline.
func FormatOutline(company string, slides []Slide) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s: Pitch Outline\n\n", company)
	for i, s := range slides {
		fmt.Fprintf(&b, "## %d. %s\n\n", i+1, s.Title)
		for _, bullet := range s.Bullets {
			fmt.Fprintf(&b, "- %s\n", bullet)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// companyLogos lists the root-relative SVGs rendered for company.
func (x *Exporter) companyLogos(company string) ([]string, error) {
	dir := "logos_" + logo.CompanySlug(company)
	entries, err := os.ReadDir(filepath.Join(x.assets.Root(), dir))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list logos: %w", err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".svg") {
			continue
		}
		out = append(out, path.Join(dir, e.Name()))
	}
	return out, nil
}
