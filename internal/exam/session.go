package exam

import (
	"errors"
	"time"

	"github.com/parikshasarathi/sarathi/internal/model"
)

// State is the lifecycle state of a Session.
type State string

const (
	StateRunning   State = "running"
	StateFinalized State = "finalized"
	StateCancelled State = "cancelled"
)

var (
	// ErrNotRunning is returned for mutations after the session ended.
	ErrNotRunning = errors.New("session is not running")
	// ErrIndexRange is returned by MoveTo for an index outside the test.
	ErrIndexRange = errors.New("question index out of range")
	// ErrOptionRange is returned by SelectAnswer for an option outside the question.
	ErrOptionRange = errors.New("option index out of range")
)

// Session is one attempt at a Test. It is not safe for concurrent use; Runner
// serializes access for the HTTP layer.
type Session struct {
	test      model.Test
	state     State
	current   int
	answers   []*int
	remaining int
	result    *model.TestResult
	now       func() time.Time
}

// Snapshot is a read-only view of a session.
type Snapshot struct {
	State            State             `json:"state"`
	Current          int               `json:"current"`
	Answers          []*int            `json:"answers"`
	RemainingSeconds int               `json:"remainingSeconds"`
	Result           *model.TestResult `json:"result,omitempty"`
}

// NewSession starts a running session with a full countdown and no answers.
func NewSession(test model.Test) *Session {
	return &Session{
		test:      test,
		state:     StateRunning,
		answers:   make([]*int, len(test.Questions)),
		remaining: test.DurationMinutes * 60,
		now:       time.Now,
	}
}

// Test returns the test being taken.
func (s *Session) Test() model.Test { return s.test }

// State returns the current lifecycle state.
func (s *Session) State() State { return s.state }

// Remaining returns the seconds left on the countdown.
func (s *Session) Remaining() int { return s.remaining }

// Current returns the focused question index.
func (s *Session) Current() int { return s.current }

// Result returns the graded result once the session is finalized.
func (s *Session) Result() (model.TestResult, bool) {
	if s.result == nil {
		return model.TestResult{}, false
	}
	return *s.result, true
}

// SelectAnswer records option for the focused question, replacing any earlier pick.
func (s *Session) SelectAnswer(option int) error {
	if s.state != StateRunning {
		return ErrNotRunning
	}
	if s.current >= len(s.test.Questions) {
		return ErrIndexRange
	}
	if option < 0 || option >= len(s.test.Questions[s.current].Options) {
		return ErrOptionRange
	}
	s.answers[s.current] = &option
	return nil
}

// MoveTo focuses the question at index. Recorded answers are untouched.
func (s *Session) MoveTo(index int) error {
	if s.state != StateRunning {
		return ErrNotRunning
	}
	if index < 0 || index >= len(s.test.Questions) {
		return ErrIndexRange
	}
	s.current = index
	return nil
}

// Tick accounts for one elapsed second. It reports whether this tick ran the
// countdown out and finalized the session. Ticks outside Running are ignored.
func (s *Session) Tick() bool {
	if s.state != StateRunning {
		return false
	}
	if s.remaining > 0 {
		s.remaining--
	}
	if s.remaining > 0 {
		return false
	}
	s.finalize()
	return true
}

// Finish ends the session early and grades it. The bool reports whether this
// call did the grading; later calls return the same result unchanged.
// A cancelled session has no result.
func (s *Session) Finish() (model.TestResult, bool) {
	switch s.state {
	case StateRunning:
		s.finalize()
		return *s.result, true
	case StateFinalized:
		return *s.result, false
	default:
		return model.TestResult{}, false
	}
}

// Cancel abandons a running session without producing a result.
func (s *Session) Cancel() {
	if s.state != StateRunning {
		return
	}
	s.state = StateCancelled
	s.answers = nil
}

// Snapshot copies the observable state.
func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		State:            s.state,
		Current:          s.current,
		RemainingSeconds: s.remaining,
	}
	if s.answers != nil {
		snap.Answers = make([]*int, len(s.answers))
		for i, a := range s.answers {
			if a != nil {
				v := *a
				snap.Answers[i] = &v
			}
		}
	}
	if s.result != nil {
		r := *s.result
		snap.Result = &r
	}
	return snap
}

func (s *Session) finalize() {
	s.state = StateFinalized
	r := Grade(s.test, s.answers)
	r.Timestamp = s.now().UnixMilli()
	s.result = &r
}

// Grade scores answers against test. answers[i] belongs to question i; a nil
// or missing entry is unanswered and never correct.
func Grade(test model.Test, answers []*int) model.TestResult {
	res := model.TestResult{
		TestID:         test.ID,
		TotalQuestions: len(test.Questions),
		Answers:        make([]model.UserAnswer, len(test.Questions)),
	}
	for i, q := range test.Questions {
		ua := model.UserAnswer{QuestionID: q.ID}
		if i < len(answers) && answers[i] != nil {
			v := *answers[i]
			ua.SelectedOption = &v
			ua.IsCorrect = v == q.CorrectAnswer
		}
		if ua.IsCorrect {
			res.Score++
		}
		res.Answers[i] = ua
	}
	return res
}
