// Package mocktest holds the prepared mock test series offered next to
// generated practice tests.
package mocktest

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/parikshasarathi/sarathi/internal/model"
)

//go:embed tests.json
var defaultTests []byte

// Catalog is an immutable, ordered set of mock tests.
type Catalog struct {
	tests []model.Test
	byID  map[string]int
}

// Summary is a mock test without its questions.
type Summary struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	Subject         string `json:"subject"`
	ClassLevel      string `json:"classLevel"`
	DurationMinutes int    `json:"durationMinutes"`
	QuestionCount   int    `json:"questionCount"`
}

// Default returns the built-in series.
func Default() (*Catalog, error) {
	return Parse(defaultTests)
}

// Load reads a series from a JSON file holding an array of tests.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read mock tests: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a JSON array of tests. Test IDs must be unique.
func Parse(data []byte) (*Catalog, error) {
	var tests []model.Test
	if err := json.Unmarshal(data, &tests); err != nil {
		return nil, fmt.Errorf("decode mock tests: %w", err)
	}
	c := &Catalog{tests: tests, byID: make(map[string]int, len(tests))}
	for i, t := range tests {
		if err := model.ValidateTest(t); err != nil {
			return nil, fmt.Errorf("mock test %d (%s): %w", i, t.ID, err)
		}
		if _, dup := c.byID[t.ID]; dup {
			return nil, fmt.Errorf("mock test %d: id %s is repeated", i, t.ID)
		}
		c.byID[t.ID] = i
	}
	return c, nil
}

// Len returns the number of tests in the catalog.
func (c *Catalog) Len() int { return len(c.tests) }

// ForClass lists the tests offered to a class, in catalog order. Tests
// without a class are offered to every class; an empty class lists all.
func (c *Catalog) ForClass(class string) []Summary {
	out := []Summary{}
	for _, t := range c.tests {
		if class != "" && t.ClassLevel != "" && t.ClassLevel != class {
			continue
		}
		out = append(out, Summary{
			ID:              t.ID,
			Title:           t.Title,
			Subject:         t.Subject,
			ClassLevel:      t.ClassLevel,
			DurationMinutes: t.DurationMinutes,
			QuestionCount:   len(t.Questions),
		})
	}
	return out
}

// Get returns a copy of the test with the given ID, scoped to class when the
// test itself is offered to every class.
func (c *Catalog) Get(id, class string) (model.Test, bool) {
	i, ok := c.byID[id]
	if !ok {
		return model.Test{}, false
	}
	t := c.tests[i]
	t.Questions = append([]model.Question(nil), t.Questions...)
	if t.ClassLevel == "" {
		t.ClassLevel = class
	}
	return t, true
}
