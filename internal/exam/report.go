package exam

import (
	"math"

	"github.com/parikshasarathi/sarathi/internal/model"
)

// ReportItem is one question of a finished test, ready for display.
type ReportItem struct {
	Index        int    `json:"index"`
	QuestionID   string `json:"questionId"`
	QuestionText string `json:"questionText"`
	SelectedText string `json:"selectedText"`
	Answered     bool   `json:"answered"`
	CorrectText  string `json:"correctText"`
	Explanation  string `json:"explanation"`
	IsCorrect    bool   `json:"isCorrect"`
}

// Report is the display breakdown of a TestResult.
type Report struct {
	Title      string       `json:"title"`
	Percentage int          `json:"percentage"`
	Correct    int          `json:"correct"`
	Incorrect  int          `json:"incorrect"`
	Total      int          `json:"total"`
	Items      []ReportItem `json:"items"`
}

// Present pairs test.Questions[i] with result.Answers[i]. unanswered is shown
// in place of the selected text for skipped questions.
func Present(test model.Test, result model.TestResult, unanswered string) Report {
	rep := Report{
		Title:     test.Title,
		Correct:   result.Score,
		Total:     result.TotalQuestions,
		Incorrect: result.TotalQuestions - result.Score,
		Items:     make([]ReportItem, 0, len(test.Questions)),
	}
	if rep.Total > 0 {
		rep.Percentage = int(math.Round(float64(result.Score) / float64(rep.Total) * 100))
	}

	for i, q := range test.Questions {
		item := ReportItem{
			Index:        i,
			QuestionID:   q.ID,
			QuestionText: q.QuestionText,
			SelectedText: unanswered,
			CorrectText:  optionText(q, q.CorrectAnswer),
			Explanation:  q.Explanation,
		}
		if i < len(result.Answers) {
			a := result.Answers[i]
			item.IsCorrect = a.IsCorrect
			if a.SelectedOption != nil {
				item.Answered = true
				item.SelectedText = optionText(q, *a.SelectedOption)
			}
		}
		rep.Items = append(rep.Items, item)
	}
	return rep
}

func optionText(q model.Question, i int) string {
	if i < 0 || i >= len(q.Options) {
		return ""
	}
	return q.Options[i]
}
