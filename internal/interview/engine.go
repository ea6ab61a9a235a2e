// Package interview drives a session through the question catalog and the
// name and logo sub-flows. Every event is computed against a snapshot of
// the session and committed atomically with its ledger appends.
package interview

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/PXLTCH/startup-ai/internal/catalog"
	"github.com/PXLTCH/startup-ai/internal/log"
	"github.com/PXLTCH/startup-ai/internal/logo"
	"github.com/PXLTCH/startup-ai/internal/session"
)

// Store is the persistence the engine needs.
type Store interface {
	CreateSession(ctx context.Context, state string) (*session.Session, error)
	GetSession(ctx context.Context, id string) (*session.Session, error)
	Commit(ctx context.Context, next *session.Session, appends []session.NewAnswer) error
	CurrentAnswer(ctx context.Context, sessionID, questionID string) (*session.Answer, error)
	ConfirmedValues(ctx context.Context, sessionID string) (map[string]string, error)
	History(ctx context.Context, sessionID string) ([]session.Answer, error)
	ToggleFavorite(ctx context.Context, sessionID, path, style string) (bool, error)
	ListFavorites(ctx context.Context, sessionID string) ([]session.Favorite, error)
}

// Refiner rewrites a free-text answer.
type Refiner interface {
	Refine(ctx context.Context, question, answer string) (string, error)
}

// NameGenerator proposes company names.
type NameGenerator interface {
	Generate(ctx context.Context, mission string, avoid []string) ([]string, error)
}

// Assets renders and stores logo variants.
type Assets interface {
	Generate(name string, style logo.Style, generation int, prefs logo.Prefs, now time.Time) ([]string, error)
	Preview(name string, style logo.Style, generation int, prefs logo.Prefs, now time.Time) (string, error)
	Resolve(rel string) (string, error)
}

type handler func(ctx context.Context, s *step, ev Event) error

// step carries one transition: the loaded snapshot, the next snapshot being
// built, and the ledger records to append with it.
type step struct {
	cur       *session.Session
	next      *session.Session
	appends   []session.NewAnswer
	logEvent  string
	question  string
	message   string
	lastValue string
	previews  []Preview
}

func (s *step) appendAnswer(questionID, raw, refined string, confirmed bool) {
	s.appends = append(s.appends, session.NewAnswer{QuestionID: questionID, Raw: raw, Refined: refined, Confirmed: confirmed})
}

// Engine applies events to sessions.
type Engine struct {
	catalog *catalog.Catalog
	store   Store
	refiner Refiner
	names   NameGenerator
	assets  Assets
	logger  *log.Logger
	now     func() time.Time
	table   map[State]map[EventKind]handler
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger records transitions to logger.
func WithLogger(logger *log.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithClock replaces time.Now, which seeds logo generation.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// New returns an Engine over the given catalog and collaborators.
func New(cat *catalog.Catalog, store Store, refiner Refiner, names NameGenerator, assets Assets, opts ...Option) *Engine {
	e := &Engine{
		catalog: cat,
		store:   store,
		refiner: refiner,
		names:   names,
		assets:  assets,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.table = e.transitions()
	return e
}

// transitions is the full state machine: one handler per accepted
// (state, event) pair. Anything absent is an illegal transition.
func (e *Engine) transitions() map[State]map[EventKind]handler {
	t := map[State]map[EventKind]handler{
		StateAsking: {
			EventSubmit: e.submit,
			EventSkip:   e.skip,
		},
		StateAwaitingConfirm: {
			EventSubmit:  e.submit,
			EventConfirm: e.confirm,
			EventSkip:    e.skip,
		},
		StateAwaitingNameChoice: {
			EventSelectName:      e.selectName,
			EventRegenerateNames: e.regenerateNames,
		},
		StateAwaitingLogoStyle: {
			EventChooseLogoStyle: e.chooseLogoStyle,
			EventPreviewLogos:    e.previewLogos,
		},
		StateAwaitingLogoSelection: {
			EventRegenerateLogos: e.regenerateLogos,
			EventSelectLogo:      e.selectLogo,
		},
		StateDone: {},
	}
	for _, handlers := range t {
		handlers[EventJump] = e.jump
		handlers[EventSavePrefs] = e.savePrefs
	}
	return t
}

// Catalog returns the question catalog the engine walks.
func (e *Engine) Catalog() *catalog.Catalog {
	return e.catalog
}

// Create starts a new session at the first question.
func (e *Engine) Create(ctx context.Context) (*Result, error) {
	sess, err := e.store.CreateSession(ctx, string(StateAsking))
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	e.log(log.LogEvent{Event: log.EventSessionCreated, SessionID: sess.ID, State: sess.State})
	return e.view(sess, nil), nil
}

// Current returns the session view without changing anything.
func (e *Engine) Current(ctx context.Context, id string) (*Result, error) {
	sess, err := e.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return e.view(sess, nil), nil
}

// Dispatch applies ev to session id.
func (e *Engine) Dispatch(ctx context.Context, id string, ev Event) (*Result, error) {
	cur, err := e.load(ctx, id)
	if err != nil {
		return nil, err
	}

	state := stateOf(cur)
	h, ok := e.table[state][ev.Kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s not accepted in state %s", ErrIllegalTransition, ev.Kind, state)
	}

	s := &step{cur: cur, next: cur.Clone()}
	start := time.Now()
	if err := h(ctx, s, ev); err != nil {
		if errors.Is(err, ErrUnavailable) {
			e.log(log.LogEvent{Event: log.EventDownstreamFailed, SessionID: id, State: string(state), Error: err.Error(),
				DurationMs: time.Since(start).Milliseconds(), Data: map[string]interface{}{"event": string(ev.Kind)}})
		}
		return nil, err
	}
	e.settle(s.next)

	if err := e.store.Commit(ctx, s.next, s.appends); err != nil {
		switch {
		case errors.Is(err, session.ErrConflict):
			return nil, fmt.Errorf("%w: %v", ErrConflict, err)
		case errors.Is(err, session.ErrNotFound):
			return nil, fmt.Errorf("session %s: %w", id, ErrNotFound)
		default:
			return nil, fmt.Errorf("commit session: %w", err)
		}
	}

	if s.logEvent != "" {
		e.log(log.LogEvent{
			Event:      s.logEvent,
			SessionID:  id,
			QuestionID: s.question,
			State:      s.next.State,
			Cursor:     s.next.Cursor,
			Style:      s.next.LogoStyle,
			Generation: s.next.LogoGeneration,
			DurationMs: time.Since(start).Milliseconds(),
		})
	}
	if s.next.Status == session.StatusComplete && cur.Status != session.StatusComplete {
		e.log(log.LogEvent{Event: log.EventInterviewDone, SessionID: id})
	}

	return e.view(s.next, s), nil
}

// Submit answers the current question.
func (e *Engine) Submit(ctx context.Context, id, raw string) (*Result, error) {
	return e.Dispatch(ctx, id, Event{Kind: EventSubmit, Text: raw})
}

// Confirm accepts the draft, or edited when non-nil.
func (e *Engine) Confirm(ctx context.Context, id string, edited *string) (*Result, error) {
	return e.Dispatch(ctx, id, Event{Kind: EventConfirm, Edited: edited})
}

// SelectName picks one of the suggested names.
func (e *Engine) SelectName(ctx context.Context, id string, choice Choice) (*Result, error) {
	return e.Dispatch(ctx, id, Event{Kind: EventSelectName, Choice: choice})
}

// RegenerateNames replaces the suggestions with a fresh set.
func (e *Engine) RegenerateNames(ctx context.Context, id string) (*Result, error) {
	return e.Dispatch(ctx, id, Event{Kind: EventRegenerateNames})
}

// ChooseLogoStyle generates the first variant set in style.
func (e *Engine) ChooseLogoStyle(ctx context.Context, id, style string) (*Result, error) {
	return e.Dispatch(ctx, id, Event{Kind: EventChooseLogoStyle, Text: style})
}

// Previews renders one preview per style.
func (e *Engine) Previews(ctx context.Context, id string) (*Result, error) {
	return e.Dispatch(ctx, id, Event{Kind: EventPreviewLogos})
}

// RegenerateLogos renders a new variant set in the current style.
func (e *Engine) RegenerateLogos(ctx context.Context, id string, keepLayout *bool) (*Result, error) {
	return e.Dispatch(ctx, id, Event{Kind: EventRegenerateLogos, KeepLayout: keepLayout})
}

// SelectLogo records one of the current variants as the brand answer.
func (e *Engine) SelectLogo(ctx context.Context, id string, choice Choice) (*Result, error) {
	return e.Dispatch(ctx, id, Event{Kind: EventSelectLogo, Choice: choice})
}

// Skip advances past the current question without recording an answer.
func (e *Engine) Skip(ctx context.Context, id string) (*Result, error) {
	return e.Dispatch(ctx, id, Event{Kind: EventSkip})
}

// JumpTo moves the cursor to questionID for editing.
func (e *Engine) JumpTo(ctx context.Context, id, questionID string) (*Result, error) {
	return e.Dispatch(ctx, id, Event{Kind: EventJump, Text: questionID})
}

// SavePrefs stores the visual-identity preferences.
func (e *Engine) SavePrefs(ctx context.Context, id string, prefs Prefs) (*Result, error) {
	return e.Dispatch(ctx, id, Event{Kind: EventSavePrefs, Prefs: prefs})
}

// Snapshot is a read-only copy of a session and its ledger.
type Snapshot struct {
	Session   *session.Session
	History   []session.Answer
	Confirmed map[string]string
}

// Snapshot loads session id with its full ledger.
func (e *Engine) Snapshot(ctx context.Context, id string) (*Snapshot, error) {
	sess, err := e.load(ctx, id)
	if err != nil {
		return nil, err
	}
	history, err := e.store.History(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	confirmed, err := e.store.ConfirmedValues(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load confirmed answers: %w", err)
	}
	return &Snapshot{Session: sess, History: history, Confirmed: confirmed}, nil
}

// ToggleFavorite saves or removes an asset as a favorite of session id.
func (e *Engine) ToggleFavorite(ctx context.Context, id, path, style string) (bool, error) {
	if _, err := e.load(ctx, id); err != nil {
		return false, err
	}
	if path == "" {
		return false, invalid("path is required")
	}
	if _, err := e.assets.Resolve(path); err != nil {
		if errors.Is(err, logo.ErrOutsideRoot) {
			return false, invalid("%v", err)
		}
		return false, fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	on, err := e.store.ToggleFavorite(ctx, id, path, style)
	if err != nil {
		return false, fmt.Errorf("toggle favorite: %w", err)
	}
	return on, nil
}

// Favorites lists the favorites of session id.
func (e *Engine) Favorites(ctx context.Context, id string) ([]session.Favorite, error) {
	if _, err := e.load(ctx, id); err != nil {
		return nil, err
	}
	favs, err := e.store.ListFavorites(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	return favs, nil
}

func (e *Engine) load(ctx context.Context, id string) (*session.Session, error) {
	if id == "" {
		return nil, invalid("session id is required")
	}
	sess, err := e.store.GetSession(ctx, id)
	if errors.Is(err, session.ErrNotFound) {
		return nil, fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	return sess, nil
}

// settle derives the terminal state from the cursor.
func (e *Engine) settle(next *session.Session) {
	total := e.catalog.Len()
	switch {
	case next.State == string(StateAsking) && next.Cursor >= total:
		next.Cursor = total
		next.State = string(StateDone)
		next.Status = session.StatusComplete
	case next.State == string(StateDone) && next.Cursor < total:
		next.State = string(StateAsking)
		next.Status = session.StatusActive
	case next.State != string(StateDone):
		next.Status = session.StatusActive
	}
}

func stateOf(sess *session.Session) State {
	if sess.State == "" {
		return StateAsking
	}
	return State(sess.State)
}

func (e *Engine) view(sess *session.Session, s *step) *Result {
	res := &Result{
		SessionID: sess.ID,
		State:     stateOf(sess),
		Index:     sess.Cursor,
		Total:     e.catalog.Len(),
	}
	res.Done = res.State == StateDone

	if q, ok := e.catalog.At(sess.Cursor); ok && !res.Done {
		res.Question = &Question{ID: q.ID, SectionID: q.SectionID, Text: q.Text, Hint: q.Hint}
	}

	switch res.State {
	case StateAwaitingConfirm:
		res.Draft = sess.Draft
	case StateAwaitingNameChoice:
		res.Names = sess.NameSuggestions
	case StateAwaitingLogoStyle:
		res.Styles = logo.Styles()
	case StateAwaitingLogoSelection:
		res.Logos = sess.LogoVariants
		res.Style = logo.Style(sess.LogoStyle)
		res.Generation = sess.LogoGeneration
		res.KeepLayout = sess.Prefs.KeepLayout
	}

	if s != nil {
		res.Message = s.message
		res.LastValue = s.lastValue
		res.Previews = s.previews
	}
	return res
}

func (e *Engine) log(ev log.LogEvent) {
	_ = e.logger.Append(ev)
}
