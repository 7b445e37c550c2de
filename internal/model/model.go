package model

import (
	"context"
	"time"
)

// OptionCount is the number of answer options every question carries.
const OptionCount = 4

// Question is a multiple-choice question as it appears in a test.
type Question struct {
	ID            string   `json:"id"`
	QuestionText  string   `json:"questionText" validate:"notblank"`
	Options       []string `json:"options" validate:"len=4,dive,notblank"`
	CorrectAnswer int      `json:"correctAnswer" validate:"min=0,max=3"`
	Explanation   string   `json:"explanation"`
}

// GeneratedQuestion is a question as the generator sends it. Every field of
// the answer key must be present, so CorrectAnswer is a pointer.
type GeneratedQuestion struct {
	ID            string   `json:"id"`
	QuestionText  string   `json:"questionText" validate:"notblank"`
	Options       []string `json:"options" validate:"len=4,dive,notblank"`
	CorrectAnswer *int     `json:"correctAnswer" validate:"required,min=0,max=3"`
	Explanation   string   `json:"explanation"`
}

// Question converts a validated GeneratedQuestion.
func (g GeneratedQuestion) Question() Question {
	q := Question{
		ID:           g.ID,
		QuestionText: g.QuestionText,
		Options:      g.Options,
		Explanation:  g.Explanation,
	}
	if g.CorrectAnswer != nil {
		q.CorrectAnswer = *g.CorrectAnswer
	}
	return q
}

// BankQuestion is an operator-curated question scoped by subject and class.
type BankQuestion struct {
	Question
	Subject    string `json:"subject" validate:"required,subject"`
	ClassLevel string `json:"classLevel" validate:"required,classlevel"`
}

// Test is an assembled, immutable set of questions plus session parameters.
// The validate tags apply to prepared mock tests; assembled tests are built
// from already validated questions.
type Test struct {
	ID              string     `json:"id" validate:"notblank"`
	Title           string     `json:"title" validate:"notblank"`
	Subject         string     `json:"subject" validate:"required,subject"`
	ClassLevel      string     `json:"classLevel" validate:"omitempty,classlevel"` // empty means every class
	DurationMinutes int        `json:"durationMinutes" validate:"min=1,max=180"`
	Questions       []Question `json:"questions" validate:"min=1,dive"`
}

// TestSetup is what a student picks before a test starts.
type TestSetup struct {
	Subject         string `json:"subject" validate:"required,subject"`
	ClassLevel      string `json:"classLevel" validate:"required,classlevel"`
	Count           int    `json:"count" validate:"min=1,max=50"`
	Difficulty      string `json:"difficulty" validate:"required,difficulty"`
	DurationMinutes int    `json:"durationMinutes" validate:"min=5,max=60"`
}

// WithDefaults fills zero fields with the catalog defaults.
func (t TestSetup) WithDefaults() TestSetup {
	if t.ClassLevel == "" {
		t.ClassLevel = DefaultClass
	}
	if t.Count == 0 {
		t.Count = DefaultQuestionCount
	}
	if t.Difficulty == "" {
		t.Difficulty = DifficultyBoard
	}
	if t.DurationMinutes == 0 {
		t.DurationMinutes = DefaultDurationMinutes
	}
	return t
}

// UserAnswer records the outcome for one question of a finished test.
// A nil SelectedOption means the question was left unanswered.
type UserAnswer struct {
	QuestionID     string `json:"questionId"`
	SelectedOption *int   `json:"selectedOption"`
	IsCorrect      bool   `json:"isCorrect"`
}

// TestResult is produced exactly once when a session finalizes.
type TestResult struct {
	TestID         string       `json:"testId"`
	Score          int          `json:"score"`
	TotalQuestions int          `json:"totalQuestions"`
	Answers        []UserAnswer `json:"answers"`
	Timestamp      int64        `json:"timestamp"` // Unix milliseconds
}

// FinishedAt returns the result timestamp as a time.Time.
func (r TestResult) FinishedAt() time.Time {
	return time.UnixMilli(r.Timestamp)
}

// ExamConfig holds runtime parameters set via CLI flags.
type ExamConfig struct {
	Shuffle         bool          // Shuffle the assembled question order
	BasePath        string        // URL prefix for sub-path deployments
	ResultRetention time.Duration // How long finished sessions stay readable
	AllowedOrigins  []string      // Websocket origins; empty allows all
}

type basePathCtxKey struct{}

// ContextWithBasePath stores the base path prefix in context.
func ContextWithBasePath(ctx context.Context, basePath string) context.Context {
	return context.WithValue(ctx, basePathCtxKey{}, basePath)
}

// BasePathFromContext retrieves the base path from context (empty string if not set).
func BasePathFromContext(ctx context.Context) string {
	bp, _ := ctx.Value(basePathCtxKey{}).(string)
	return bp
}
