package naming

import (
	"context"
	"errors"
	"math/rand/v2"
	"regexp"
	"strings"
	"testing"

	"github.com/PXLTCH/startup-ai/internal/refiner"
)

type fakeCompleter struct {
	text string
	err  error
	last refiner.Request
}

func (f *fakeCompleter) Complete(_ context.Context, req refiner.Request) (string, error) {
	f.last = req
	return f.text, f.err
}

var validName = regexp.MustCompile(`^[A-Z][A-Za-z0-9]{0,11}$`)

func checkNames(t *testing.T, names, avoid []string) {
	t.Helper()
	if len(names) != Count {
		t.Fatalf("got %d names, want %d: %v", len(names), Count, names)
	}
	avoided := make(map[string]bool)
	for _, a := range avoid {
		avoided[strings.ToLower(a)] = true
	}
	seen := make(map[string]bool)
	for _, n := range names {
		if !validName.MatchString(n) {
			t.Errorf("name %q is not a capitalized alphanumeric of at most %d chars", n, MaxLen)
		}
		k := strings.ToLower(n)
		if seen[k] {
			t.Errorf("duplicate name %q", n)
		}
		if avoided[k] {
			t.Errorf("name %q is in the avoid set", n)
		}
		seen[k] = true
	}
}

func newTestGenerator(c refiner.Completer, seed uint64) *Generator {
	return NewGenerator(c, rand.New(rand.NewPCG(seed, seed+1)))
}

func TestGenerateFromJSON(t *testing.T) {
	c := &fakeCompleter{text: "```json\n[\"1. Clinova\", \"\\\"MedFlow\\\"\", \"Vitalink Health\", \"Carepath\", \"Pulsewise\"]\n```"}
	names, err := newTestGenerator(c, 1).Generate(context.Background(), "care for clinics", nil)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	checkNames(t, names, nil)

	want := []string{"Clinova", "Med", "Vitalink", "Carepath", "Pulsewise"}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("names[%d] = %q, want %q", i, names[i], want[i])
		}
	}
	if !strings.Contains(c.last.Prompt, "DiversityKey=") {
		t.Error("prompt is missing the diversity token")
	}
}

func TestGenerateFromLines(t *testing.T) {
	c := &fakeCompleter{text: "Here are some ideas:\n- Alpha\n- Beta\n* Gamma\n"}
	names, err := newTestGenerator(c, 2).Generate(context.Background(), "", nil)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	checkNames(t, names, nil)
	if names[0] != "Here" || names[1] != "Alpha" {
		t.Errorf("names = %v", names)
	}
}

func TestGenerateTopsUpAvoidedNames(t *testing.T) {
	avoid := []string{"Novaly", "fluxio", "CLINIX", "Orbitly", "Nestio"}
	c := &fakeCompleter{text: `["Novaly", "Fluxio", "Clinix", "Orbitly", "Nestio"]`}
	names, err := newTestGenerator(c, 3).Generate(context.Background(), "", avoid)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	checkNames(t, names, avoid)
}

func TestGenerateUsesMissionKeywords(t *testing.T) {
	c := &fakeCompleter{text: "[]"}
	names, err := newTestGenerator(c, 4).Generate(context.Background(), "Dental scheduling for dental clinics", nil)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	checkNames(t, names, nil)
	for _, n := range names {
		l := strings.ToLower(n)
		if !strings.HasPrefix(l, "dental") && !strings.HasPrefix(l, "scheduling") &&
			!strings.HasPrefix(l, "for") && !strings.HasPrefix(l, "clinics") {
			t.Errorf("name %q not built from a mission keyword", n)
		}
	}
}

func TestGeneratePropertiesAcrossSeeds(t *testing.T) {
	outputs := []string{
		`["A", "B"]`,
		"",
		"not json at all",
		`["SuperLongCompanyNameThatOverflows", "x-y-z", "  42 ", "Nova Link"]`,
		`{"names": ["Acme"]}`,
	}
	avoid := []string{"Novaly", "Flowly"}
	for seed := uint64(0); seed < 40; seed++ {
		c := &fakeCompleter{text: outputs[seed%uint64(len(outputs))]}
		names, err := newTestGenerator(c, seed).Generate(context.Background(), "", avoid)
		if err != nil {
			t.Fatalf("seed %d: Generate: %v", seed, err)
		}
		checkNames(t, names, avoid)
	}
}

func TestGenerateCompleterError(t *testing.T) {
	boom := errors.New("unreachable")
	c := &fakeCompleter{err: boom}
	if _, err := newTestGenerator(c, 5).Generate(context.Background(), "m", nil); !errors.Is(err, boom) {
		t.Errorf("Generate error = %v, want wrapped %v", err, boom)
	}
}

func TestGenerateExhausted(t *testing.T) {
	var avoid []string
	for _, r := range fallbackRoots {
		for _, s := range fallbackSuffixes {
			avoid = append(avoid, compose(r, s))
		}
	}
	avoid = append(avoid, fillers...)

	c := &fakeCompleter{text: "[]"}
	if _, err := newTestGenerator(c, 6).Generate(context.Background(), "", avoid); !errors.Is(err, ErrInsufficient) {
		t.Errorf("Generate error = %v, want ErrInsufficient", err)
	}
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1. Clinova", "Clinova"},
		{"- \"quoted\"", "Quoted"},
		{"NovaLink", "Nova"},
		{"two words", "Two"},
		{"ab-cd", "Abcd"},
		{"abcdefghijklmnopq", "Abcdefghijkl"},
		{"***", ""},
		{"", ""},
		{"1) Nova", "Nova"},
		{"• Nova", "Nova"},
		{"#1: Nova", "Nova"},
		{"(Clinova)", "Clinova"},
		{"→ Pulse", "Pulse"},
		{"42", ""},
		{"#1:", ""},
	}
	for _, tt := range tests {
		if got := Sanitize(tt.in); got != tt.want {
			t.Errorf("Sanitize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
