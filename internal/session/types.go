// Package session provides SQLite-backed persistence for interview sessions,
// the append-only answer ledger and saved favorites.
package session

import (
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when a session does not exist.
	ErrNotFound = errors.New("session not found")
	// ErrConflict is returned by Commit when the session changed since it was read.
	ErrConflict = errors.New("session was modified concurrently")
)

// Status is the coarse lifecycle of a session.
type Status string

const (
	StatusActive   Status = "active"
	StatusComplete Status = "complete"
)

// VisualPrefs are the visual-identity preferences applied to logo generation.
type VisualPrefs struct {
	Palette       []string `json:"palette,omitempty"` // exactly 3 hex colors when set
	Font          string   `json:"font,omitempty"`
	PaletteLocked bool     `json:"paletteLocked"`
	FontLocked    bool     `json:"fontLocked"`
	KeepLayout    bool     `json:"keepLayout"`
	LayoutSeed    uint32   `json:"layoutSeed"`
}

// Session is the aggregate for one interview. State and Draft hold the
// interview state tag and the pending refined draft; Version guards
// read-modify-write cycles.
type Session struct {
	ID              string
	Status          Status
	Cursor          int
	State           string
	Draft           string
	PendingName     bool
	PendingLogo     bool
	NameSuggestions []string
	NameHistory     []string
	LogoVariants    []string
	LogoStyle       string
	LogoGeneration  int
	Prefs           VisualPrefs
	Version         int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Clone returns a deep copy so transitions can build the next snapshot
// without aliasing the slices of the current one.
func (s *Session) Clone() *Session {
	c := *s
	c.NameSuggestions = append([]string(nil), s.NameSuggestions...)
	c.NameHistory = append([]string(nil), s.NameHistory...)
	c.LogoVariants = append([]string(nil), s.LogoVariants...)
	c.Prefs.Palette = append([]string(nil), s.Prefs.Palette...)
	return &c
}

// Answer is one immutable ledger record. Seq orders records within the store.
type Answer struct {
	ID         string
	Seq        int64
	SessionID  string
	QuestionID string
	Raw        string
	Refined    string
	Confirmed  bool
	CreatedAt  time.Time
}

// Effective returns the refined value, falling back to the raw value.
func (a Answer) Effective() string {
	if a.Refined != "" {
		return a.Refined
	}
	return a.Raw
}

// NewAnswer is the input for appending a ledger record.
type NewAnswer struct {
	QuestionID string
	Raw        string
	Refined    string
	Confirmed  bool
}

// Favorite is a saved reference to a generated asset.
type Favorite struct {
	SessionID string    `json:"sessionId"`
	Path      string    `json:"path"`
	Style     string    `json:"style"`
	CreatedAt time.Time `json:"createdAt"`
}

// Summary provides a high-level view of a session for listing.
type Summary struct {
	ID        string
	Status    Status
	Cursor    int
	State     string
	Confirmed int
	UpdatedAt time.Time
}
