package prompts

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"sync"
	"text/template"
	"unicode"
	"unicode/utf8"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// maxFieldRunes bounds user-supplied values interpolated into prompts.
const maxFieldRunes = 100

var (
	loadOnce     sync.Once
	loadErr      error
	systemPrompt string
	generateTmpl *template.Template
)

// GenerateData holds template data for question generation prompts.
type GenerateData struct {
	Subject    string
	ClassLevel string
	Count      int
	Difficulty string
	// Language subjects are asked in their own language instead of Hindi.
	Language bool
}

// Load parses the prompt templates from fsys, or from the embedded templates
// when fsys is nil. Only the first call has any effect.
func Load(fsys fs.FS) error {
	loadOnce.Do(func() {
		if fsys == nil {
			fsys = templateFS
		}

		sys, err := fs.ReadFile(fsys, "templates/system.tmpl")
		if err != nil {
			loadErr = fmt.Errorf("read system prompt: %w", err)
			return
		}
		systemPrompt = strings.TrimSpace(string(sys))

		gen, err := fs.ReadFile(fsys, "templates/generate.tmpl")
		if err != nil {
			loadErr = fmt.Errorf("read generate prompt: %w", err)
			return
		}
		generateTmpl, err = template.New("generate").Parse(string(gen))
		if err != nil {
			loadErr = fmt.Errorf("parse generate prompt: %w", err)
			return
		}
	})
	return loadErr
}

// System returns the system instruction for question generation.
func System() (string, error) {
	if systemPrompt == "" {
		if loadErr != nil {
			return "", fmt.Errorf("templates load failed: %w", loadErr)
		}
		return "", errors.New("templates not initialized: call Load first")
	}
	return systemPrompt, nil
}

// BuildGenerate renders the user prompt asking for data.Count questions.
func BuildGenerate(data GenerateData) (string, error) {
	if generateTmpl == nil {
		if loadErr != nil {
			return "", fmt.Errorf("templates load failed: %w", loadErr)
		}
		return "", errors.New("templates not initialized: call Load first")
	}

	data.Subject = sanitizeField(data.Subject)
	data.ClassLevel = sanitizeField(data.ClassLevel)
	data.Difficulty = sanitizeField(data.Difficulty)

	var buf bytes.Buffer
	if err := generateTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return strings.TrimSpace(buf.String()), nil
}

// sanitizeField flattens a value onto one line and caps its length so it
// cannot smuggle extra instructions into the prompt.
func sanitizeField(s string) string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, s)
	s = strings.Join(strings.Fields(s), " ")
	if utf8.RuneCountInString(s) > maxFieldRunes {
		s = string([]rune(s)[:maxFieldRunes])
	}
	return s
}
