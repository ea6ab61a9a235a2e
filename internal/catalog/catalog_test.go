package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultCatalog(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatalf("Default() error: %v", err)
	}
	if c.Len() == 0 {
		t.Fatal("expected questions in default catalog")
	}

	for i, q := range c.Questions() {
		if q.Ordinal != i {
			t.Errorf("question %s: ordinal = %d, want %d", q.ID, q.Ordinal, i)
		}
		if q.SectionID == "" {
			t.Errorf("question %s has no section id", q.ID)
		}
	}

	name, ok := c.ByID(NameQuestionID)
	if !ok {
		t.Fatalf("missing %s", NameQuestionID)
	}
	mission, _ := c.ByID(MissionQuestionID)
	if name.Ordinal >= mission.Ordinal {
		t.Errorf("name ordinal %d should precede mission ordinal %d", name.Ordinal, mission.Ordinal)
	}
	if name.Hint == "" {
		t.Error("expected a hint on the name question")
	}
}

func TestAtBounds(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatalf("Default() error: %v", err)
	}
	if _, ok := c.At(-1); ok {
		t.Error("At(-1) should be out of range")
	}
	if _, ok := c.At(c.Len()); ok {
		t.Error("At(Len()) should be out of range")
	}
	if q, ok := c.At(0); !ok || q.ID != NameQuestionID {
		t.Errorf("At(0) = %q, %v; want %q", q.ID, ok, NameQuestionID)
	}
}

func TestLoadRejectsMalformed(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "not yaml",
			yaml:    "sections: [",
			wantErr: "parsing catalog",
		},
		{
			name:    "empty",
			yaml:    "version: 1\nsections: []\n",
			wantErr: "no questions",
		},
		{
			name: "duplicate id",
			yaml: `sections:
  - id: a
    questions:
      - {id: vision.name, text: one}
      - {id: vision.name, text: two}
`,
			wantErr: "duplicate question id",
		},
		{
			name: "missing brand",
			yaml: `sections:
  - id: vision
    questions:
      - {id: vision.name, text: Name?}
      - {id: vision.mission, text: Mission?}
`,
			wantErr: "vision.brand missing",
		},
		{
			name: "mission before name",
			yaml: `sections:
  - id: vision
    questions:
      - {id: vision.mission, text: Mission?}
      - {id: vision.name, text: Name?}
      - {id: vision.brand, text: Brand?}
`,
			wantErr: "must come before",
		},
		{
			name: "question without text",
			yaml: `sections:
  - id: vision
    questions:
      - {id: vision.name}
`,
			wantErr: "has no text",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load([]byte(tt.yaml))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "questions.yaml")
	content := `version: 2
sections:
  - id: vision
    title: Vision
    questions:
      - {id: vision.name, text: Name?}
      - {id: vision.mission, text: Mission?}
      - {id: vision.brand, text: Brand?}
  - id: extra
    questions:
      - {id: extra.one, text: One?}
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing catalog: %v", err)
	}

	c, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile error: %v", err)
	}
	if c.Version() != 2 {
		t.Errorf("Version() = %d, want 2", c.Version())
	}
	if c.Len() != 4 {
		t.Errorf("Len() = %d, want 4", c.Len())
	}
	q, ok := c.ByID("extra.one")
	if !ok || q.SectionID != "extra" || q.Ordinal != 3 {
		t.Errorf("extra.one = %+v, %v", q, ok)
	}
	if len(c.Sections()) != 2 {
		t.Errorf("Sections() len = %d, want 2", len(c.Sections()))
	}

	if _, err := LoadFile(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
