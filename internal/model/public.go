package model

// PublicQuestion is a question as shown to the student while a test runs,
// without the correct answer or explanation.
type PublicQuestion struct {
	ID           string   `json:"id"`
	QuestionText string   `json:"questionText"`
	Options      []string `json:"options"`
}

// PublicTest is a Test stripped of answer keys.
type PublicTest struct {
	ID              string           `json:"id"`
	Title           string           `json:"title"`
	Subject         string           `json:"subject"`
	ClassLevel      string           `json:"classLevel"`
	DurationMinutes int              `json:"durationMinutes"`
	Questions       []PublicQuestion `json:"questions"`
}

// Public projects t for delivery to a test taker.
func (t Test) Public() PublicTest {
	qs := make([]PublicQuestion, len(t.Questions))
	for i, q := range t.Questions {
		qs[i] = PublicQuestion{
			ID:           q.ID,
			QuestionText: q.QuestionText,
			Options:      append([]string(nil), q.Options...),
		}
	}
	return PublicTest{
		ID:              t.ID,
		Title:           t.Title,
		Subject:         t.Subject,
		ClassLevel:      t.ClassLevel,
		DurationMinutes: t.DurationMinutes,
		Questions:       qs,
	}
}
