// Package catalog loads the immutable, ordered list of interview questions.
package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Well-known question ids that drive the name and logo sub-flows.
const (
	NameQuestionID    = "vision.name"
	MissionQuestionID = "vision.mission"
	BrandQuestionID   = "vision.brand"
)

//go:embed questions.yaml
var defaultQuestionsYAML []byte

// Question is one interview question. Ordinal is its position in the flattened catalog.
type Question struct {
	ID        string `yaml:"id" json:"id"`
	SectionID string `yaml:"-" json:"sectionId"`
	Text      string `yaml:"text" json:"text"`
	Hint      string `yaml:"hint,omitempty" json:"hint,omitempty"`
	Ordinal   int    `yaml:"-" json:"ordinal"`
}

// Section groups questions under a heading.
type Section struct {
	ID        string     `yaml:"id" json:"id"`
	Title     string     `yaml:"title" json:"title"`
	Questions []Question `yaml:"questions" json:"questions"`
}

type catalogFile struct {
	Version  int       `yaml:"version"`
	Sections []Section `yaml:"sections"`
}

// Catalog is read-only after Load and safe for concurrent use.
type Catalog struct {
	version   int
	sections  []Section
	questions []Question
	index     map[string]int
}

// Default returns the catalog embedded in the binary.
func Default() (*Catalog, error) {
	return Load(defaultQuestionsYAML)
}

// LoadFile reads a catalog from path. An empty path selects the embedded catalog.
func LoadFile(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}
	return Load(data)
}

// Load parses and validates catalog YAML.
func Load(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}

	c := &Catalog{
		version: file.Version,
		index:   make(map[string]int),
	}
	for _, sec := range file.Sections {
		if strings.TrimSpace(sec.ID) == "" {
			return nil, fmt.Errorf("catalog: section without id")
		}
		out := Section{ID: sec.ID, Title: sec.Title}
		for _, q := range sec.Questions {
			q.ID = strings.TrimSpace(q.ID)
			if q.ID == "" {
				return nil, fmt.Errorf("catalog: question without id in section %s", sec.ID)
			}
			if strings.TrimSpace(q.Text) == "" {
				return nil, fmt.Errorf("catalog: question %s has no text", q.ID)
			}
			if _, dup := c.index[q.ID]; dup {
				return nil, fmt.Errorf("catalog: duplicate question id %s", q.ID)
			}
			q.SectionID = sec.ID
			q.Ordinal = len(c.questions)
			c.index[q.ID] = q.Ordinal
			c.questions = append(c.questions, q)
			out.Questions = append(out.Questions, q)
		}
		c.sections = append(c.sections, out)
	}

	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// validate checks the invariants the sub-flows rely on: the special questions
// exist and the name question precedes the mission question that resolves it.
func (c *Catalog) validate() error {
	if len(c.questions) == 0 {
		return fmt.Errorf("catalog: no questions")
	}
	for _, id := range []string{NameQuestionID, MissionQuestionID, BrandQuestionID} {
		if _, ok := c.index[id]; !ok {
			return fmt.Errorf("catalog: required question %s missing", id)
		}
	}
	if c.index[NameQuestionID] > c.index[MissionQuestionID] {
		return fmt.Errorf("catalog: %s must come before %s", NameQuestionID, MissionQuestionID)
	}
	return nil
}

// Version returns the catalog file version.
func (c *Catalog) Version() int { return c.version }

// Len returns the total number of questions.
func (c *Catalog) Len() int { return len(c.questions) }

// At returns the question at ordinal i.
func (c *Catalog) At(i int) (Question, bool) {
	if i < 0 || i >= len(c.questions) {
		return Question{}, false
	}
	return c.questions[i], true
}

// ByID looks a question up by its stable id.
func (c *Catalog) ByID(id string) (Question, bool) {
	i, ok := c.index[id]
	if !ok {
		return Question{}, false
	}
	return c.questions[i], true
}

// Questions returns a copy of the flattened, ordered question list.
func (c *Catalog) Questions() []Question {
	out := make([]Question, len(c.questions))
	copy(out, c.questions)
	return out
}

// Sections returns a copy of the section list.
func (c *Catalog) Sections() []Section {
	out := make([]Section, len(c.sections))
	copy(out, c.sections)
	return out
}
