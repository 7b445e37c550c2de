package model

import (
	"errors"
	"testing"
)

func validBankQuestion() BankQuestion {
	return BankQuestion{
		Question: Question{
			QuestionText:  "2 + 2 = ?",
			Options:       []string{"3", "4", "5", "6"},
			CorrectAnswer: 1,
			Explanation:   "दो और दो चार होते हैं।",
		},
		Subject:    "गणित",
		ClassLevel: "10",
	}
}

func TestValidateBankQuestion(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(q *BankQuestion)
		wantField string
	}{
		{"valid", func(q *BankQuestion) {}, ""},
		{"empty text", func(q *BankQuestion) { q.QuestionText = "" }, "questionText"},
		{"blank text", func(q *BankQuestion) { q.QuestionText = "   " }, "questionText"},
		{"empty option", func(q *BankQuestion) { q.Options[2] = "" }, "options[2]"},
		{"blank option", func(q *BankQuestion) { q.Options[0] = " \t" }, "options[0]"},
		{"three options", func(q *BankQuestion) { q.Options = q.Options[:3] }, "options"},
		{"answer too high", func(q *BankQuestion) { q.CorrectAnswer = 4 }, "correctAnswer"},
		{"answer negative", func(q *BankQuestion) { q.CorrectAnswer = -1 }, "correctAnswer"},
		{"unknown subject", func(q *BankQuestion) { q.Subject = "Astrology" }, "subject"},
		{"unknown class", func(q *BankQuestion) { q.ClassLevel = "12" }, "classLevel"},
		{"missing class", func(q *BankQuestion) { q.ClassLevel = "" }, "classLevel"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := validBankQuestion()
			q.Options = append([]string(nil), q.Options...)
			tt.mutate(&q)

			err := ValidateBankQuestion(q)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected *ValidationError, got %v", err)
			}
			if _, ok := ve.Fields[tt.wantField]; !ok {
				t.Errorf("expected error on %q, got %v", tt.wantField, ve.Fields)
			}
		})
	}
}

func TestIsLanguageSubject(t *testing.T) {
	tests := []struct {
		subject string
		want    bool
	}{
		{"हिंदी", true},
		{"english", true},
		{"English Grammar", true},
		{"गणित", false},
		{"math", false},
		{"Sanskrit Vyakaran", true},
	}
	for _, tt := range tests {
		if got := IsLanguageSubject(tt.subject); got != tt.want {
			t.Errorf("IsLanguageSubject(%q) = %v, want %v", tt.subject, got, tt.want)
		}
	}
}

func TestTestPublicHidesAnswers(t *testing.T) {
	test := Test{
		ID:              "test-1",
		DurationMinutes: 5,
		Questions: []Question{
			{ID: "q1", QuestionText: "?", Options: []string{"a", "b", "c", "d"}, CorrectAnswer: 2, Explanation: "x"},
		},
	}
	pub := test.Public()
	if len(pub.Questions) != 1 {
		t.Fatalf("expected 1 question, got %d", len(pub.Questions))
	}
	pub.Questions[0].Options[0] = "changed"
	if test.Questions[0].Options[0] != "a" {
		t.Error("public projection must not alias the test's options")
	}
}

func TestValidateTestSetup(t *testing.T) {
	tests := []struct {
		name      string
		setup     TestSetup
		wantField string
	}{
		{"defaults", TestSetup{Subject: "विज्ञान"}.WithDefaults(), ""},
		{"missing subject", TestSetup{}.WithDefaults(), "subject"},
		{"too many questions", TestSetup{Subject: "गणित", Count: 51}.WithDefaults(), "count"},
		{"negative count", TestSetup{Subject: "गणित", Count: -1}.WithDefaults(), "count"},
		{"too short", TestSetup{Subject: "गणित", DurationMinutes: 2}.WithDefaults(), "durationMinutes"},
		{"too long", TestSetup{Subject: "गणित", DurationMinutes: 61}.WithDefaults(), "durationMinutes"},
		{"unknown difficulty", TestSetup{Subject: "गणित", Difficulty: "impossible"}.WithDefaults(), "difficulty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTestSetup(tt.setup)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected *ValidationError, got %v", err)
			}
			if _, ok := ve.Fields[tt.wantField]; !ok {
				t.Errorf("expected error on %q, got %v", tt.wantField, ve.Fields)
			}
		})
	}
}

func TestValidateGeneratedQuestion(t *testing.T) {
	zero, four := 0, 4
	base := func() GeneratedQuestion {
		return GeneratedQuestion{
			ID:            "q1",
			QuestionText:  "2 + 2 = ?",
			Options:       []string{"4", "3", "5", "6"},
			CorrectAnswer: &zero,
		}
	}
	tests := []struct {
		name      string
		mutate    func(q *GeneratedQuestion)
		wantField string
	}{
		{"zero answer is valid", func(q *GeneratedQuestion) {}, ""},
		{"missing answer", func(q *GeneratedQuestion) { q.CorrectAnswer = nil }, "correctAnswer"},
		{"answer too high", func(q *GeneratedQuestion) { q.CorrectAnswer = &four }, "correctAnswer"},
		{"blank option", func(q *GeneratedQuestion) { q.Options[1] = "" }, "options[1]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := base()
			tt.mutate(&q)
			err := ValidateGeneratedQuestion(q)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				if got := q.Question().CorrectAnswer; got != 0 {
					t.Errorf("CorrectAnswer = %d, want 0", got)
				}
				return
			}
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected *ValidationError, got %v", err)
			}
			if _, ok := ve.Fields[tt.wantField]; !ok {
				t.Errorf("expected error on %q, got %v", tt.wantField, ve.Fields)
			}
		})
	}
}

func TestValidateTest(t *testing.T) {
	base := func() Test {
		return Test{
			ID:              "mock-1",
			Title:           "गणित मॉक टेस्ट",
			Subject:         "गणित",
			DurationMinutes: 10,
			Questions: []Question{
				{ID: "a", QuestionText: "2 + 2 = ?", Options: []string{"3", "4", "5", "6"}, CorrectAnswer: 1},
				{ID: "b", QuestionText: "3 + 3 = ?", Options: []string{"6", "7", "8", "9"}},
			},
		}
	}
	tests := []struct {
		name      string
		mutate    func(tt *Test)
		wantField string
	}{
		{"all classes", func(tt *Test) {}, ""},
		{"one class", func(tt *Test) { tt.ClassLevel = "9" }, ""},
		{"unknown class", func(tt *Test) { tt.ClassLevel = "12" }, "classLevel"},
		{"blank title", func(tt *Test) { tt.Title = " " }, "title"},
		{"no duration", func(tt *Test) { tt.DurationMinutes = 0 }, "durationMinutes"},
		{"no questions", func(tt *Test) { tt.Questions = nil }, "questions"},
		{"bad question", func(tt *Test) { tt.Questions[1].CorrectAnswer = 7 }, "correctAnswer"},
		{"repeated id", func(tt *Test) { tt.Questions[1].ID = "a" }, "questions[1].id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			test := base()
			tt.mutate(&test)
			err := ValidateTest(test)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected *ValidationError, got %v", err)
			}
			if _, ok := ve.Fields[tt.wantField]; !ok {
				t.Errorf("expected error on %q, got %v", tt.wantField, ve.Fields)
			}
		})
	}
}
