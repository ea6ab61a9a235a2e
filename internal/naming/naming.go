// Package naming proposes short brandable company names from a mission
// statement.
package naming

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"regexp"
	"strings"

	"github.com/PXLTCH/startup-ai/internal/refiner"
)

const (
	// Count is the number of names every successful call returns.
	Count = 5
	// MaxLen is the maximum length of a name.
	MaxLen = 12
	// minFallbackLen is the shortest locally composed name accepted.
	minFallbackLen = 4
	// randomAttempts bounds the random root+suffix draws before enumerating.
	randomAttempts = 50
)

// ErrInsufficient is returned when fewer than Count names survive filtering.
var ErrInsufficient = errors.New("could not produce enough distinct names")

var (
	fallbackRoots    = []string{"nova", "flow", "clinic", "med", "vita", "swift", "pilot", "orbit", "forge", "pulse", "nest", "link"}
	fallbackSuffixes = []string{"ly", "io", "ify", "hub", "lab", "grid", "core", "sync", "byte", "gen", "nest", "way", "zen", "rise"}
	fillers          = []string{"Novaly", "Fluxio", "Clinix", "Vitaria", "Swiftly", "Pulsar", "Forgera", "Linksy", "Nestio", "Corely"}

	leadingJunk = regexp.MustCompile(`^[\s\p{P}\p{S}\d]+`)
	camelBreak  = regexp.MustCompile(`([a-z])([A-Z])`)
	nonAlnum    = regexp.MustCompile(`[^A-Za-z0-9]`)
	keyword     = regexp.MustCompile(`[a-z]{3,}`)
)

// Generator asks a completer for names and tops the result up locally.
type Generator struct {
	completer refiner.Completer
	rng       *rand.Rand
}

// NewGenerator returns a Generator. rng drives the diversity token and the
// local fallback; pass a seeded source for reproducible output.
func NewGenerator(c refiner.Completer, rng *rand.Rand) *Generator {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Generator{completer: c, rng: rng}
}

// Generate returns exactly Count distinct names, none of which appear
// (case-insensitively) in avoid. A completer failure is returned as is.
func (g *Generator) Generate(ctx context.Context, mission string, avoid []string) ([]string, error) {
	text, err := g.completer.Complete(ctx, refiner.Request{
		System:      refiner.PackSystemPrompt,
		Prompt:      refiner.BuildNamesPrompt(g.diversityKey(), mission, avoid),
		Input:       mission,
		Temperature: 0.9,
	})
	if err != nil {
		return nil, fmt.Errorf("name completion: %w", err)
	}

	seen := make(map[string]bool, len(avoid))
	for _, a := range avoid {
		seen[strings.ToLower(a)] = true
	}

	var names []string
	add := func(n string) bool {
		k := strings.ToLower(n)
		if n == "" || len(n) > MaxLen || seen[k] {
			return false
		}
		seen[k] = true
		names = append(names, n)
		return true
	}

	for _, c := range parseCandidates(text) {
		if len(names) == Count {
			break
		}
		add(Sanitize(c))
	}

	if len(names) < Count {
		g.topUp(mission, add, func() bool { return len(names) >= Count })
	}

	if len(names) < Count {
		return nil, fmt.Errorf("%w: got %d of %d", ErrInsufficient, len(names), Count)
	}
	return names, nil
}

// topUp composes root+suffix names, first at random and then exhaustively,
// and finally falls back to the fixed fillers.
func (g *Generator) topUp(mission string, add func(string) bool, full func() bool) {
	roots := keywordRoots(mission)
	if len(roots) == 0 {
		roots = fallbackRoots
	}

	for i := 0; i < randomAttempts && !full(); i++ {
		r := roots[g.rng.IntN(len(roots))]
		s := fallbackSuffixes[g.rng.IntN(len(fallbackSuffixes))]
		if n := compose(r, s); len(n) >= minFallbackLen {
			add(n)
		}
	}

	for _, r := range roots {
		for _, s := range fallbackSuffixes {
			if full() {
				return
			}
			if n := compose(r, s); len(n) >= minFallbackLen {
				add(n)
			}
		}
	}

	for _, f := range fillers {
		if full() {
			return
		}
		add(truncate(f))
	}
}

func (g *Generator) diversityKey() string {
	const alphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
	b := make([]byte, 6)
	for i := range b {
		b[i] = alphabet[g.rng.IntN(len(alphabet))]
	}
	return string(b)
}

// parseCandidates reads a JSON array if there is one, else one candidate per line.
func parseCandidates(text string) []string {
	var raw []any
	if err := json.Unmarshal([]byte(refiner.CleanJSON(text)), &raw); err == nil {
		out := make([]string, 0, len(raw))
		for _, v := range raw {
			out = append(out, fmt.Sprint(v))
		}
		return out
	}

	var out []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

// Sanitize turns a raw candidate into a name. Leading punctuation, symbols
// and numbering are stripped along with quotes. Only the first word (split
// at camel-case boundaries) is kept, non-alphanumerics are removed, and the
// result is truncated and capitalized. Anything not starting with a letter
// sanitizes to "".
func Sanitize(s string) string {
	s = strings.TrimSpace(s)
	s = leadingJunk.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, `"`, "")
	s = camelBreak.ReplaceAllString(s, "$1 $2")

	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	name := nonAlnum.ReplaceAllString(fields[0], "")
	if name == "" || !isLetter(name[0]) {
		return ""
	}
	return capitalize(truncate(name))
}

func isLetter(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

func keywordRoots(mission string) []string {
	var roots []string
	seen := make(map[string]bool)
	for _, kw := range keyword.FindAllString(strings.ToLower(mission), -1) {
		if seen[kw] {
			continue
		}
		seen[kw] = true
		roots = append(roots, kw)
		if len(roots) == 5 {
			break
		}
	}
	return roots
}

func compose(root, suffix string) string {
	return capitalize(truncate(nonAlnum.ReplaceAllString(root+suffix, "")))
}

func truncate(s string) string {
	if len(s) > MaxLen {
		return s[:MaxLen]
	}
	return s
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
