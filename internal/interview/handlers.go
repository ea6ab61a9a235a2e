package interview

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/PXLTCH/startup-ai/internal/catalog"
	"github.com/PXLTCH/startup-ai/internal/log"
	"github.com/PXLTCH/startup-ai/internal/logo"
	"github.com/PXLTCH/startup-ai/internal/session"
)

const (
	nameDeferredMessage  = "No problem. We'll generate name ideas after your mission."
	brandDeferredMessage = "Let's create a logo. Pick a style to start."
	maxFontLen           = 64
)

var hexColor = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// question returns the catalog question under the cursor.
func (e *Engine) question(s *step) (catalog.Question, error) {
	q, ok := e.catalog.At(s.next.Cursor)
	if !ok {
		return catalog.Question{}, invalid("no question at position %d", s.next.Cursor)
	}
	return q, nil
}

func (s *step) advance() {
	s.next.Cursor++
	s.next.State = string(StateAsking)
	s.next.Draft = ""
}

func (e *Engine) submit(ctx context.Context, s *step, ev Event) error {
	q, err := e.question(s)
	if err != nil {
		return err
	}
	raw := ev.Text
	text := strings.TrimSpace(raw)
	s.question = q.ID

	switch {
	case q.ID == catalog.NameQuestionID && IsNameDeferral(text):
		s.next.PendingName = true
		s.appendAnswer(q.ID, raw, "", false)
		s.advance()
		s.message = nameDeferredMessage
		s.logEvent = log.EventAnswerDeferred
		return nil

	case q.ID == catalog.BrandQuestionID && IsBrandDeferral(text):
		s.next.PendingLogo = true
		s.appendAnswer(q.ID, raw, "", false)
		s.next.State = string(StateAwaitingLogoStyle)
		s.next.Draft = ""
		s.message = brandDeferredMessage
		s.logEvent = log.EventAnswerDeferred
		return nil
	}

	refined, err := e.refiner.Refine(ctx, q.Text, text)
	if err != nil {
		return unavailable("refine answer", err)
	}
	s.appendAnswer(q.ID, raw, "", false)
	s.next.State = string(StateAwaitingConfirm)
	s.next.Draft = refined
	s.logEvent = log.EventAnswerSubmitted
	return nil
}

func (e *Engine) confirm(ctx context.Context, s *step, ev Event) error {
	q, err := e.question(s)
	if err != nil {
		return err
	}
	s.question = q.ID

	prior, err := e.store.CurrentAnswer(ctx, s.cur.ID, q.ID)
	if err != nil {
		return fmt.Errorf("load current answer: %w", err)
	}
	raw := ""
	if prior != nil {
		raw = prior.Raw
	}

	refined := s.cur.Draft
	if ev.Edited != nil {
		refined = *ev.Edited
	}
	if strings.TrimSpace(refined) == "" {
		refined = strings.TrimSpace(raw)
	}
	s.appendAnswer(q.ID, raw, refined, true)
	s.next.Draft = ""
	s.logEvent = log.EventAnswerConfirmed

	switch q.ID {
	case catalog.NameQuestionID:
		s.next.PendingName = false
		s.next.NameSuggestions = nil

	case catalog.MissionQuestionID:
		if s.next.PendingName {
			confirmed, err := e.store.ConfirmedValues(ctx, s.cur.ID)
			if err != nil {
				return fmt.Errorf("load confirmed answers: %w", err)
			}
			if confirmed[catalog.NameQuestionID] == "" {
				return e.suggestNames(ctx, s, refined)
			}
		}

	case catalog.BrandQuestionID:
		if s.next.PendingLogo {
			s.next.State = string(StateAwaitingLogoStyle)
			s.message = brandDeferredMessage
			return nil
		}
	}

	s.advance()
	return nil
}

// suggestNames fills the suggestion cache and parks the session on the
// name choice. The cursor stays on the mission question.
func (e *Engine) suggestNames(ctx context.Context, s *step, mission string) error {
	names, err := e.names.Generate(ctx, mission, s.next.NameHistory)
	if err != nil {
		return unavailable("generate names", err)
	}
	s.next.NameSuggestions = names
	s.next.NameHistory = mergeHistory(s.next.NameHistory, names...)
	s.next.State = string(StateAwaitingNameChoice)
	s.logEvent = log.EventNamesSuggested
	return nil
}

func (e *Engine) selectName(ctx context.Context, s *step, ev Event) error {
	name, err := pick(s.cur.NameSuggestions, ev.Choice, strings.EqualFold)
	if err != nil {
		return err
	}
	s.question = catalog.NameQuestionID
	s.appendAnswer(catalog.NameQuestionID, name, name, true)
	s.next.NameHistory = mergeHistory(s.next.NameHistory, name)
	s.next.PendingName = false
	s.next.NameSuggestions = nil
	s.next.State = string(StateAsking)
	s.lastValue = name
	s.logEvent = log.EventNameSelected

	if q, ok := e.catalog.At(s.next.Cursor); ok && q.ID == catalog.MissionQuestionID {
		s.next.Cursor++
	}
	return nil
}

func (e *Engine) regenerateNames(ctx context.Context, s *step, _ Event) error {
	confirmed, err := e.store.ConfirmedValues(ctx, s.cur.ID)
	if err != nil {
		return fmt.Errorf("load confirmed answers: %w", err)
	}
	mission := confirmed[catalog.MissionQuestionID]
	if strings.TrimSpace(mission) == "" {
		return invalid("mission has not been confirmed")
	}
	return e.suggestNames(ctx, s, mission)
}

func (e *Engine) chooseLogoStyle(ctx context.Context, s *step, ev Event) error {
	style := logo.ParseStyle(ev.Text)
	s.next.LogoStyle = string(style)
	return e.renderLogos(ctx, s)
}

func (e *Engine) regenerateLogos(ctx context.Context, s *step, ev Event) error {
	keep := s.next.Prefs.KeepLayout
	if ev.KeepLayout != nil {
		keep = *ev.KeepLayout
	}
	if keep {
		if s.next.Prefs.LayoutSeed == 0 {
			seed := uint32(e.now().UnixMilli())
			if seed == 0 {
				seed = 1
			}
			s.next.Prefs.LayoutSeed = seed
		}
		s.next.Prefs.KeepLayout = true
	} else {
		s.next.Prefs.KeepLayout = false
		s.next.Prefs.LayoutSeed = 0
	}
	return e.renderLogos(ctx, s)
}

// renderLogos bumps the generation counter and replaces the variant cache.
func (e *Engine) renderLogos(ctx context.Context, s *step) error {
	name, err := e.companyName(ctx, s.cur.ID)
	if err != nil {
		return err
	}
	s.next.LogoGeneration++
	paths, err := e.assets.Generate(name, logo.Style(s.next.LogoStyle), s.next.LogoGeneration, logoPrefs(s.next.Prefs), e.now())
	if err != nil {
		return unavailable("generate logos", err)
	}
	if len(paths) == 0 {
		return unavailable("generate logos", fmt.Errorf("no variants produced"))
	}
	s.next.LogoVariants = paths
	s.next.State = string(StateAwaitingLogoSelection)
	s.question = catalog.BrandQuestionID
	s.logEvent = log.EventLogosGenerated
	return nil
}

func (e *Engine) previewLogos(ctx context.Context, s *step, _ Event) error {
	name, err := e.companyName(ctx, s.cur.ID)
	if err != nil {
		return err
	}
	s.next.LogoGeneration++
	prefs := logoPrefs(s.next.Prefs)
	prefs.KeepLayout = false
	now := e.now()
	for _, style := range logo.Styles() {
		p, err := e.assets.Preview(name, style, s.next.LogoGeneration, prefs, now)
		if err != nil {
			return unavailable("render preview", err)
		}
		s.previews = append(s.previews, Preview{Style: style, Path: p})
	}
	s.logEvent = log.EventLogosGenerated
	return nil
}

func (e *Engine) selectLogo(ctx context.Context, s *step, ev Event) error {
	if !ev.Choice.IsIndex && strings.TrimSpace(ev.Choice.Text) == "" {
		return invalid("logo choice is required")
	}
	path, err := pick(s.cur.LogoVariants, ev.Choice, func(variant, text string) bool {
		return variant == text || strings.HasSuffix(variant, "/"+text)
	})
	if err != nil {
		return err
	}

	prior, err := e.store.CurrentAnswer(ctx, s.cur.ID, catalog.BrandQuestionID)
	if err != nil {
		return fmt.Errorf("load current answer: %w", err)
	}
	note := "Selected logo: " + path
	raw, value := note, note
	if prior != nil {
		raw = prior.Raw
		if text := strings.TrimSpace(prior.Effective()); text != "" {
			value = text + "\n" + note
		}
	}

	s.question = catalog.BrandQuestionID
	s.appendAnswer(catalog.BrandQuestionID, raw, value, true)
	s.next.PendingLogo = false
	s.next.LogoVariants = nil
	s.next.State = string(StateAsking)
	s.lastValue = value
	s.logEvent = log.EventLogoSelected

	if q, ok := e.catalog.At(s.next.Cursor); ok && q.ID == catalog.BrandQuestionID {
		s.next.Cursor++
	}
	return nil
}

func (e *Engine) skip(_ context.Context, s *step, _ Event) error {
	if q, ok := e.catalog.At(s.next.Cursor); ok {
		s.question = q.ID
	}
	s.advance()
	s.logEvent = log.EventQuestionSkipped
	return nil
}

func (e *Engine) jump(ctx context.Context, s *step, ev Event) error {
	q, ok := e.catalog.ByID(strings.TrimSpace(ev.Text))
	if !ok {
		return invalid("unknown question %q", ev.Text)
	}
	prior, err := e.store.CurrentAnswer(ctx, s.cur.ID, q.ID)
	if err != nil {
		return fmt.Errorf("load current answer: %w", err)
	}
	if prior != nil {
		s.lastValue = prior.Effective()
	}

	s.next.Cursor = q.Ordinal
	s.next.State = string(StateAsking)
	s.next.Status = session.StatusActive
	s.next.Draft = ""
	s.next.NameSuggestions = nil
	s.next.LogoVariants = nil
	s.question = q.ID
	s.logEvent = log.EventQuestionJumped
	return nil
}

func (e *Engine) savePrefs(_ context.Context, s *step, ev Event) error {
	p := ev.Prefs
	palette := make([]string, 0, len(p.Palette))
	for _, c := range p.Palette {
		c = strings.TrimSpace(c)
		if !hexColor.MatchString(c) {
			return invalid("palette color %q is not a hex color", c)
		}
		palette = append(palette, c)
	}
	if len(palette) != 0 && len(palette) != 3 {
		return invalid("palette needs exactly 3 colors, got %d", len(palette))
	}
	font := strings.TrimSpace(p.Font)
	if len(font) > maxFontLen {
		return invalid("font name longer than %d characters", maxFontLen)
	}
	if p.PaletteLocked && len(palette) == 0 {
		return invalid("cannot lock an empty palette")
	}
	if p.FontLocked && font == "" {
		return invalid("cannot lock an empty font")
	}

	if len(palette) == 0 {
		palette = nil
	}
	s.next.Prefs.Palette = palette
	s.next.Prefs.Font = font
	s.next.Prefs.PaletteLocked = p.PaletteLocked
	s.next.Prefs.FontLocked = p.FontLocked
	s.logEvent = log.EventPrefsSaved
	return nil
}

// companyName is the confirmed name used on logos. Empty renders as the default.
func (e *Engine) companyName(ctx context.Context, id string) (string, error) {
	confirmed, err := e.store.ConfirmedValues(ctx, id)
	if err != nil {
		return "", fmt.Errorf("load confirmed answers: %w", err)
	}
	return confirmed[catalog.NameQuestionID], nil
}

// pick resolves a choice against a cached list by ordinal or by match.
func pick(items []string, c Choice, match func(item, text string) bool) (string, error) {
	if len(items) == 0 {
		return "", invalid("nothing to choose from")
	}
	if c.IsIndex {
		if c.Index < 0 || c.Index >= len(items) {
			return "", invalid("choice %d out of range 0..%d", c.Index, len(items)-1)
		}
		return items[c.Index], nil
	}
	text := strings.TrimSpace(c.Text)
	for _, item := range items {
		if match(item, text) {
			return item, nil
		}
	}
	return "", invalid("%q is not one of the offered choices", text)
}

func mergeHistory(history []string, names ...string) []string {
	seen := make(map[string]bool, len(history))
	for _, h := range history {
		seen[strings.ToLower(h)] = true
	}
	out := append([]string(nil), history...)
	for _, n := range names {
		if k := strings.ToLower(n); !seen[k] {
			seen[k] = true
			out = append(out, n)
		}
	}
	return out
}

func logoPrefs(p session.VisualPrefs) logo.Prefs {
	return logo.Prefs{
		Palette:       p.Palette,
		Font:          p.Font,
		PaletteLocked: p.PaletteLocked,
		FontLocked:    p.FontLocked,
		KeepLayout:    p.KeepLayout,
		LayoutSeed:    p.LayoutSeed,
	}
}
