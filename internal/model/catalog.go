package model

import "strings"

// Subject is one entry of the BSEB subject catalog.
type Subject struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Icon     string `json:"icon"`
	Language bool   `json:"language"` // language subjects get questions in that language
}

// Subjects lists the subjects offered for practice tests.
var Subjects = []Subject{
	{ID: "math", Name: "गणित", Icon: "📐"},
	{ID: "science", Name: "विज्ञान", Icon: "🔬"},
	{ID: "social-science", Name: "सामाजिक विज्ञान", Icon: "🌍"},
	{ID: "hindi", Name: "हिंदी", Icon: "📖", Language: true},
	{ID: "english", Name: "English", Icon: "🔤", Language: true},
	{ID: "sanskrit", Name: "संस्कृत", Icon: "🕉️", Language: true},
	{ID: "maithili", Name: "मैथिली", Icon: "✍️", Language: true},
}

// Classes lists the class levels covered by the board syllabus.
var Classes = []string{"6", "7", "8", "9", "10"}

// Difficulty labels passed through to the question generator.
const (
	DifficultyBasic       = "आसान (Basic)"
	DifficultyBoard       = "मध्यम (Board)"
	DifficultyCompetitive = "कठिन (Competitive)"
)

// Difficulties lists the difficulty labels offered in test setup.
var Difficulties = []string{DifficultyBasic, DifficultyBoard, DifficultyCompetitive}

// Test setup defaults and bounds.
const (
	DefaultClass           = "10"
	DefaultQuestionCount   = 10
	DefaultDurationMinutes = 15
	MinDurationMinutes     = 5
	MaxDurationMinutes     = 60
	MaxQuestionCount       = 50
)

// QuestionCountChoices are the counts offered in test setup.
var QuestionCountChoices = []int{5, 10, 20, 50}

var languageKeywords = []string{"hindi", "sanskrit", "maithili", "english"}

// LookupSubject finds a subject by name or ID.
func LookupSubject(nameOrID string) (Subject, bool) {
	for _, s := range Subjects {
		if s.Name == nameOrID || s.ID == nameOrID {
			return s, true
		}
	}
	return Subject{}, false
}

// IsLanguageSubject reports whether questions for the subject should be written
// in the subject's own language rather than in Hindi.
func IsLanguageSubject(subject string) bool {
	if s, ok := LookupSubject(subject); ok {
		return s.Language
	}
	lower := strings.ToLower(subject)
	for _, kw := range languageKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// IsKnownClass reports whether c is in the class catalog.
func IsKnownClass(c string) bool {
	for _, k := range Classes {
		if k == c {
			return true
		}
	}
	return false
}
