package views

import (
	"maps"
	"slices"

	"github.com/a-h/templ"

	"github.com/parikshasarathi/sarathi/internal/mocktest"
	"github.com/parikshasarathi/sarathi/internal/model"
)

// IndexData is what the home page shows for one class.
type IndexData struct {
	BankCounts map[string]int // bank questions per subject for Setup.ClassLevel
	MockTests  []mocktest.Summary
	Setup      model.TestSetup   // preselected form values
	Errors     map[string]string // form errors by field
}

// IndexPage offers the class picker, the practice test form and the mock
// test series of the selected class.
func IndexPage(data IndexData) templ.Component {
	return layout(component(func(m *markup) {
		m.raw(`<p class="muted">`)
		m.t("AppTagline")
		m.raw(`</p>`)
		m.render(classPicker(data.Setup.ClassLevel))
		m.render(setupForm(data))
		m.render(mockTests(data.MockTests, data.Setup.ClassLevel))
	}))
}

func classPicker(current string) templ.Component {
	return component(func(m *markup) {
		m.raw(`<nav class="classes">`)
		m.t("ClassLabel")
		m.raw(`: `)
		for _, c := range model.Classes {
			m.raw(`<a href="`, href(m.ctx, "/?class="+c), `"`)
			if c == current {
				m.raw(` class="current"`)
			}
			m.raw(`>`)
			m.text(c)
			m.raw(`</a>`)
		}
		m.raw(`</nav>`)
	})
}

func setupForm(data IndexData) templ.Component {
	setup := data.Setup
	return component(func(m *markup) {
		m.raw(`<h2>`)
		m.t("PracticeTitle")
		m.raw(`</h2><form id="setup" method="post" action="`, href(m.ctx, "/tests"), `">`)
		if len(data.Errors) > 0 {
			m.raw(`<div class="bad"><p>`)
			m.t("FormInvalid")
			m.raw(`</p><ul>`)
			for _, field := range slices.Sorted(maps.Keys(data.Errors)) {
				m.raw(`<li>`)
				m.text(data.Errors[field])
				m.raw(`</li>`)
			}
			m.raw(`</ul></div>`)
		}
		m.raw(`<input type="hidden" name="classLevel" value="`)
		m.text(setup.ClassLevel)
		m.raw(`"><h3>`)
		m.t("ChooseSubject")
		m.raw(`</h3><div class="grid">`)
		for _, s := range model.Subjects {
			m.render(subjectCard(s, data.BankCounts[s.Name], s.Name == setup.Subject))
		}
		m.raw(`</div><div class="card"><label>`)
		m.t("QuestionCountLabel")
		m.raw(` `)
		m.render(intSelect("count", model.QuestionCountChoices, setup.Count))
		m.raw(`</label> <label>`)
		m.t("DifficultyLabel")
		m.raw(` <select name="difficulty">`)
		for _, d := range model.Difficulties {
			m.render(option(d, d, d == setup.Difficulty))
		}
		m.raw(`</select></label> <label>`)
		m.t("DurationLabel")
		m.raw(` <input type="number" name="durationMinutes" min="`, itoa(model.MinDurationMinutes),
			`" max="`, itoa(model.MaxDurationMinutes), `" value="`, itoa(setup.DurationMinutes), `"></label> <button type="submit">`)
		m.t("StartTest")
		m.raw(`</button></div></form>`)
	})
}

func subjectCard(s model.Subject, bankCount int, checked bool) templ.Component {
	return component(func(m *markup) {
		m.raw(`<label class="card" data-subject="`)
		m.text(s.Name)
		m.raw(`"><input type="radio" name="subject" required value="`)
		m.text(s.Name)
		m.raw(`"`)
		if checked {
			m.raw(` checked`)
		}
		m.raw(`> `)
		m.text(s.Icon)
		m.raw(` <strong>`)
		m.text(s.Name)
		m.raw(`</strong><div class="muted">`)
		m.tp("QuestionsAvailable", bankCount)
		m.raw(`</div></label>`)
	})
}

func intSelect(name string, choices []int, selected int) templ.Component {
	return component(func(m *markup) {
		m.raw(`<select name="`, name, `">`)
		for _, n := range choices {
			m.render(option(itoa(n), itoa(n), n == selected))
		}
		m.raw(`</select>`)
	})
}

func option(value, label string, selected bool) templ.Component {
	return component(func(m *markup) {
		m.raw(`<option value="`)
		m.text(value)
		m.raw(`"`)
		if selected {
			m.raw(` selected`)
		}
		m.raw(`>`)
		m.text(label)
		m.raw(`</option>`)
	})
}

func mockTests(tests []mocktest.Summary, class string) templ.Component {
	return component(func(m *markup) {
		m.raw(`<h2>`)
		m.t("MockTestsTitle")
		m.raw(`</h2><p class="muted">`)
		m.t("MockTestsNote")
		m.raw(`</p>`)
		if len(tests) == 0 {
			m.raw(`<p class="muted">`)
			m.t("NoMockTests")
			m.raw(`</p>`)
			return
		}
		m.raw(`<div class="grid">`)
		for _, t := range tests {
			m.render(mockCard(t, class))
		}
		m.raw(`</div>`)
	})
}

func mockCard(t mocktest.Summary, class string) templ.Component {
	return component(func(m *markup) {
		m.raw(`<form class="card mock" method="post" action="`, href(m.ctx, "/mock-tests/"+t.ID+"/start"), `"><strong>`)
		m.text(t.Title)
		m.raw(`</strong><div class="muted">`)
		m.t("ClassLabel")
		m.raw(` `)
		if t.ClassLevel != "" {
			m.text(t.ClassLevel)
		} else {
			m.text(class)
		}
		m.raw(` · `)
		m.text(t.Subject)
		m.raw(` · `)
		m.tp("QuestionsN", t.QuestionCount)
		m.raw(` · `)
		m.tp("MinutesN", t.DurationMinutes)
		m.raw(`</div><input type="hidden" name="classLevel" value="`)
		m.text(class)
		m.raw(`"><button type="submit">`)
		m.t("StartMockTest")
		m.raw(`</button></form>`)
	})
}
