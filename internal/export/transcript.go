// Package export renders session transcripts and bundles generated assets
// into downloadable archives.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/PXLTCH/startup-ai/internal/catalog"
	"github.com/PXLTCH/startup-ai/internal/interview"
)

// Item is the latest ledger record for one catalog question.
type Item struct {
	Index     int    `json:"index"`
	ID        string `json:"id"`
	SectionID string `json:"sectionId"`
	Section   string `json:"section"`
	Question  string `json:"question"`
	Raw       string `json:"raw"`
	Refined   string `json:"refined"`
	Value     string `json:"value"`
	Confirmed bool   `json:"confirmed"`
}

// Profile is the company profile assembled from confirmed answers only.
type Profile struct {
	Name      string `json:"name"`
	Mission   string `json:"mission"`
	Brand     string `json:"brand"`
	Problem   string `json:"problem"`
	Customers string `json:"customers"`
	Product   string `json:"product"`
	MVP       string `json:"mvp"`
	Revenue   string `json:"revenue"`
}

// Transcript is the audit view of a session.
type Transcript struct {
	SessionID   string    `json:"sessionId"`
	Total       int       `json:"total"`
	Confirmed   int       `json:"confirmed"`
	GeneratedAt time.Time `json:"generatedAt"`
	Profile     Profile   `json:"profile"`
	Items       []Item    `json:"items"`
}

const defaultCompanyName = "Your Company"

// BuildProfile maps confirmed values onto the profile fields.
func BuildProfile(confirmed map[string]string) Profile {
	name := confirmed[catalog.NameQuestionID]
	if strings.TrimSpace(name) == "" {
		name = defaultCompanyName
	}
	return Profile{
		Name:      name,
		Mission:   confirmed[catalog.MissionQuestionID],
		Brand:     confirmed[catalog.BrandQuestionID],
		Problem:   confirmed["problem.core"],
		Customers: confirmed["market.customer"],
		Product:   confirmed["product.overview"],
		MVP:       confirmed["product.mvp"],
		Revenue:   confirmed["revenue.model"],
	}
}

// BuildTranscript lists every catalog question with its latest record.
func BuildTranscript(cat *catalog.Catalog, snap *interview.Snapshot, now time.Time) *Transcript {
	latest := make(map[string]int, len(snap.History))
	for i, a := range snap.History {
		latest[a.QuestionID] = i
	}
	return buildTranscript(cat, snap, now, latest, false)
}

// BuildConfirmedTranscript lists only questions with a confirmed record,
// each with its latest confirmed record. Drafts never appear, even when
// they are newer than the confirmed value.
func BuildConfirmedTranscript(cat *catalog.Catalog, snap *interview.Snapshot, now time.Time) *Transcript {
	latest := make(map[string]int, len(snap.History))
	for i, a := range snap.History {
		if a.Confirmed {
			latest[a.QuestionID] = i
		}
	}
	return buildTranscript(cat, snap, now, latest, true)
}

func buildTranscript(cat *catalog.Catalog, snap *interview.Snapshot, now time.Time, latest map[string]int, answeredOnly bool) *Transcript {
	t := &Transcript{
		SessionID:   snap.Session.ID,
		Total:       cat.Len(),
		GeneratedAt: now.UTC(),
		Profile:     BuildProfile(snap.Confirmed),
	}
	titles := make(map[string]string)
	for _, sec := range cat.Sections() {
		titles[sec.ID] = sec.Title
	}
	for _, q := range cat.Questions() {
		item := Item{Index: q.Ordinal + 1, ID: q.ID, SectionID: q.SectionID, Section: titles[q.SectionID], Question: q.Text}
		i, ok := latest[q.ID]
		if !ok && answeredOnly {
			continue
		}
		if ok {
			a := snap.History[i]
			item.Raw = a.Raw
			item.Refined = a.Refined
			item.Value = a.Effective()
			item.Confirmed = a.Confirmed
		}
		if item.Confirmed {
			t.Confirmed++
		}
		t.Items = append(t.Items, item)
	}
	return t
}

// WriteJSON writes t as indented JSON.
func WriteJSON(w io.Writer, t *Transcript) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(t); err != nil {
		return fmt.Errorf("encode transcript: %w", err)
	}
	return nil
}

// FormatMarkdown renders t as a Markdown summary document.
func FormatMarkdown(t *Transcript) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s: Answers Summary\n\n", t.Profile.Name)
	fmt.Fprintf(&b, "_Generated %s. %d of %d answers confirmed._\n\n", t.GeneratedAt.Format("2006-01-02 15:04"), t.Confirmed, t.Total)

	section := ""
	for _, item := range t.Items {
		if item.SectionID != section {
			section = item.SectionID
			fmt.Fprintf(&b, "## %s\n\n", sectionTitle(item))
		}
		fmt.Fprintf(&b, "**Q%d. %s**\n\n", item.Index, item.Question)
		switch {
		case item.Value == "":
			b.WriteString("_No answer._\n\n")
		case !item.Confirmed:
			fmt.Fprintf(&b, "%s\n\n_(draft)_\n\n", item.Value)
		default:
			fmt.Fprintf(&b, "%s\n\n", item.Value)
		}
	}

	return b.String()
}

// FormatProfile renders the profile fields that have content.
func FormatProfile(p Profile) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", p.Name)
	for _, f := range []struct{ title, value string }{
		{"Mission", p.Mission},
		{"Problem", p.Problem},
		{"Customers", p.Customers},
		{"Product", p.Product},
		{"MVP", p.MVP},
		{"Revenue", p.Revenue},
		{"Brand", p.Brand},
	} {
		if strings.TrimSpace(f.value) == "" {
			continue
		}
		fmt.Fprintf(&b, "## %s\n\n%s\n\n", f.title, f.value)
	}
	return b.String()
}

func sectionTitle(item Item) string {
	if item.Section != "" {
		return item.Section
	}
	if item.SectionID == "" {
		return "Other"
	}
	return strings.ToUpper(item.SectionID[:1]) + item.SectionID[1:]
}
