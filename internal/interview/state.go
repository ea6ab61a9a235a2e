package interview

import "github.com/PXLTCH/startup-ai/internal/logo"

// State tags where a session is in the interview.
type State string

const (
	StateAsking                State = "asking"
	StateAwaitingConfirm       State = "awaiting_confirm"
	StateAwaitingNameChoice    State = "awaiting_name_choice"
	StateAwaitingLogoStyle     State = "awaiting_logo_style"
	StateAwaitingLogoSelection State = "awaiting_logo_selection"
	StateDone                  State = "done"
)

// EventKind names a client event.
type EventKind string

const (
	EventSubmit          EventKind = "submit"
	EventConfirm         EventKind = "confirm"
	EventSelectName      EventKind = "select_name"
	EventRegenerateNames EventKind = "regenerate_names"
	EventChooseLogoStyle EventKind = "choose_logo_style"
	EventPreviewLogos    EventKind = "preview_logos"
	EventRegenerateLogos EventKind = "regenerate_logos"
	EventSelectLogo      EventKind = "select_logo"
	EventSkip            EventKind = "skip"
	EventJump            EventKind = "jump"
	EventSavePrefs       EventKind = "save_prefs"
)

// Event is one client request. Only the fields its Kind uses are read.
type Event struct {
	Kind       EventKind
	Text       string  // submit: raw answer; jump: question id; choose_logo_style: style
	Edited     *string // confirm: replacement text, nil keeps the draft
	Choice     Choice  // select_name, select_logo
	KeepLayout *bool   // regenerate_logos: nil keeps the stored setting
	Prefs      Prefs   // save_prefs
}

// Choice selects from a cached list by 0-based ordinal or by text.
type Choice struct {
	Index   int
	Text    string
	IsIndex bool
}

// IndexChoice selects the i-th cached item.
func IndexChoice(i int) Choice { return Choice{Index: i, IsIndex: true} }

// TextChoice selects a cached item by its value.
func TextChoice(s string) Choice { return Choice{Text: s} }

// Prefs is the visual-identity preference update accepted by SavePrefs.
type Prefs struct {
	Palette       []string `json:"palette"`
	Font          string   `json:"font"`
	PaletteLocked bool     `json:"lockPalette"`
	FontLocked    bool     `json:"lockFont"`
}

// Question is the prompt shown for the current cursor position.
type Question struct {
	ID        string `json:"questionId"`
	SectionID string `json:"sectionId"`
	Text      string `json:"text"`
	Hint      string `json:"hint,omitempty"`
}

// Preview is one per-style preview asset.
type Preview struct {
	Style logo.Style `json:"style"`
	Path  string     `json:"path"`
}

// Result is the session view returned after every operation.
type Result struct {
	SessionID  string       `json:"sessionId"`
	State      State        `json:"state"`
	Done       bool         `json:"done"`
	Index      int          `json:"index"`
	Total      int          `json:"total"`
	Question   *Question    `json:"question,omitempty"`
	Message    string       `json:"message,omitempty"`
	Draft      string       `json:"draft,omitempty"`
	Names      []string     `json:"suggestions,omitempty"`
	Styles     []logo.Style `json:"styles,omitempty"`
	Logos      []string     `json:"logos,omitempty"`
	Style      logo.Style   `json:"style,omitempty"`
	Generation int          `json:"generation,omitempty"`
	KeepLayout bool         `json:"keepLayout,omitempty"`
	Previews   []Preview    `json:"previews,omitempty"`
	LastValue  string       `json:"lastValue,omitempty"`
}
