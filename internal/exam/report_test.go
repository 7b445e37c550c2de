package exam

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parikshasarathi/sarathi/internal/model"
)

func TestPresent(t *testing.T) {
	test := makeTest(1, 1, 2, 0)
	test.Questions[0].Explanation = "because"
	res := Grade(test, []*int{intPtr(1), nil, intPtr(3)})

	rep := Present(test, res, "अनुत्तरित")

	assert.Equal(t, 33, rep.Percentage)
	assert.Equal(t, 1, rep.Correct)
	assert.Equal(t, 2, rep.Incorrect)
	assert.Equal(t, 3, rep.Total)
	require.Len(t, rep.Items, 3)

	assert.Equal(t, ReportItem{
		Index: 0, QuestionID: "a", QuestionText: "q",
		SelectedText: "o2", Answered: true, CorrectText: "o2",
		Explanation: "because", IsCorrect: true,
	}, rep.Items[0])
	assert.Equal(t, "अनुत्तरित", rep.Items[1].SelectedText)
	assert.False(t, rep.Items[1].Answered)
	assert.Equal(t, "o3", rep.Items[1].CorrectText)
	assert.Equal(t, "o4", rep.Items[2].SelectedText)
	assert.False(t, rep.Items[2].IsCorrect)
}

func TestPresentPercentage(t *testing.T) {
	tests := []struct {
		score, total, want int
	}{
		{0, 0, 0},
		{0, 5, 0},
		{5, 5, 100},
		{2, 3, 67},
		{1, 8, 13},
		{1, 2, 50},
	}
	for _, tt := range tests {
		rep := Present(model.Test{}, model.TestResult{Score: tt.score, TotalQuestions: tt.total}, "-")
		assert.Equal(t, tt.want, rep.Percentage, "%d/%d", tt.score, tt.total)
		assert.Equal(t, tt.total-tt.score, rep.Incorrect)
	}
}

func TestPresentDoesNotMutate(t *testing.T) {
	test := makeTest(1, 0)
	res := Grade(test, []*int{intPtr(0)})
	before := res.Answers[0]

	_ = Present(test, res, "-")
	assert.Equal(t, before, res.Answers[0])
	assert.Equal(t, []string{"o1", "o2", "o3", "o4"}, test.Questions[0].Options)
}
