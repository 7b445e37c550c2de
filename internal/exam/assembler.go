package exam

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/google/uuid"

	"github.com/parikshasarathi/sarathi/internal/model"
)

// GenerateRequest asks a Generator for fresh questions.
type GenerateRequest struct {
	Subject    string
	ClassLevel string
	Count      int
	Difficulty string
}

// Generator authors new questions. Implementations absorb their own failures:
// Generate never returns an empty slice and never more than req.Count items.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) []model.Question
}

// BankReader is the read side of the question bank the assembler needs.
// Match must compare class and subject exactly.
type BankReader interface {
	Match(ctx context.Context, classLevel, subject string) ([]model.BankQuestion, error)
}

// Request describes the test a student asked for.
type Request struct {
	Subject         string
	ClassLevel      string
	Count           int
	Difficulty      string
	DurationMinutes int
}

// Assembler builds tests from bank questions, topped up by a Generator.
type Assembler struct {
	bank      BankReader
	generator Generator

	// Shuffle randomizes the final question order.
	Shuffle bool
	// Title builds the display title. Defaults to DefaultTitle.
	Title func(classLevel, subject string) string

	shuffle       func(n int, swap func(i, j int))
	newID         func() string
	newQuestionID func() string
}

// NewAssembler creates an Assembler.
func NewAssembler(bank BankReader, generator Generator) *Assembler {
	return &Assembler{
		bank:          bank,
		generator:     generator,
		Title:         DefaultTitle,
		shuffle:       rand.Shuffle,
		newID:         func() string { return "test-" + uuid.NewString() },
		newQuestionID: func() string { return "gen-" + uuid.NewString() },
	}
}

// DefaultTitle is the Hindi practice-test title.
func DefaultTitle(classLevel, subject string) string {
	return fmt.Sprintf("कक्षा %s: %s - अभ्यास", classLevel, subject)
}

// Assemble builds a test of req.Count questions. Bank questions are preferred;
// a surplus is randomly sampled down and a shortfall is requested from the
// generator once. A generator that under-delivers yields a shorter test, which
// is not an error. The only error is ctx ending while the generator runs, in
// which case the generated questions are discarded.
func (a *Assembler) Assemble(ctx context.Context, req Request) (model.Test, error) {
	count := max(req.Count, 0)

	pool, err := a.bank.Match(ctx, req.ClassLevel, req.Subject)
	if err != nil {
		slog.Warn("question bank unavailable, using generator only",
			"class", req.ClassLevel, "subject", req.Subject, "error", err)
		pool = nil
	}

	questions := make([]model.Question, 0, count)
	for _, bq := range pool {
		questions = append(questions, bq.Question)
	}

	if len(questions) >= count {
		a.shuffle(len(questions), func(i, j int) {
			questions[i], questions[j] = questions[j], questions[i]
		})
		questions = questions[:count]
	} else {
		shortfall := count - len(questions)
		generated := a.generator.Generate(ctx, GenerateRequest{
			Subject:    req.Subject,
			ClassLevel: req.ClassLevel,
			Count:      shortfall,
			Difficulty: req.Difficulty,
		})
		if err := ctx.Err(); err != nil {
			return model.Test{}, fmt.Errorf("assemble test: %w", err)
		}
		if len(generated) > shortfall {
			generated = generated[:shortfall]
		}
		if len(generated) < shortfall {
			slog.Warn("generator under-delivered",
				"class", req.ClassLevel, "subject", req.Subject,
				"requested", shortfall, "got", len(generated))
		}
		questions = append(questions, generated...)
		a.uniqueIDs(questions)
	}

	if a.Shuffle {
		a.shuffle(len(questions), func(i, j int) {
			questions[i], questions[j] = questions[j], questions[i]
		})
	}

	title := a.Title
	if title == nil {
		title = DefaultTitle
	}

	slog.Debug("test assembled",
		"class", req.ClassLevel, "subject", req.Subject,
		"requested", count, "bank", min(len(pool), count), "total", len(questions))

	return model.Test{
		ID:              a.newID(),
		Title:           title(req.ClassLevel, req.Subject),
		Subject:         req.Subject,
		ClassLevel:      req.ClassLevel,
		DurationMinutes: req.DurationMinutes,
		Questions:       questions,
	}, nil
}

// uniqueIDs gives a fresh id to every question whose id is blank or already
// used earlier in qs. Bank questions come first, so they keep theirs.
func (a *Assembler) uniqueIDs(qs []model.Question) {
	seen := make(map[string]bool, len(qs))
	for i := range qs {
		if qs[i].ID == "" || seen[qs[i].ID] {
			old := qs[i].ID
			qs[i].ID = a.newQuestionID()
			slog.Debug("reassigned question id", "old", old, "new", qs[i].ID)
		}
		seen[qs[i].ID] = true
	}
}
