package views

import (
	"time"

	"github.com/a-h/templ"

	"github.com/parikshasarathi/sarathi/internal/exam"
	appI18n "github.com/parikshasarathi/sarathi/internal/i18n"
	"github.com/parikshasarathi/sarathi/internal/model"
)

// ResultPage shows the score and the per-question breakdown.
func ResultPage(report exam.Report, result model.TestResult) templ.Component {
	return layout(component(func(m *markup) {
		m.raw(`<h2>`)
		m.t("ResultTitle")
		m.raw(`: `)
		m.text(report.Title)
		m.raw(`</h2><div class="card"><p><strong>`)
		m.text(appI18n.Td(m.ctx, "ScoreLine", map[string]any{"Score": result.Score, "Total": result.TotalQuestions}))
		m.raw(`</strong></p><p>`)
		m.t("PercentageLabel")
		m.raw(`: `, itoa(report.Percentage), `%</p><p><span class="ok">`)
		m.t("CorrectLabel")
		m.raw(`: `, itoa(report.Correct), `</span> · <span class="bad">`)
		m.t("IncorrectLabel")
		m.raw(`: `, itoa(report.Incorrect), `</span></p><p class="muted">`)
		m.text(appI18n.Td(m.ctx, "FinishedAt", map[string]any{"Time": result.FinishedAt().Format(time.DateTime)}))
		m.raw(`</p></div>`)
		for _, item := range report.Items {
			m.render(reportItem(item))
		}
		m.raw(`<p><a href="`, href(m.ctx, "/"), `">`)
		m.t("BackHome")
		m.raw(`</a></p>`)
	}))
}

func reportItem(item exam.ReportItem) templ.Component {
	return component(func(m *markup) {
		m.raw(`<div class="card"><p><strong>`, itoa(item.Index+1), `. `)
		m.text(item.QuestionText)
		m.raw(`</strong></p><p class="`)
		if item.IsCorrect {
			m.raw(`ok`)
		} else {
			m.raw(`bad`)
		}
		m.raw(`">`)
		m.t("YourAnswer")
		m.raw(`: `)
		m.text(item.SelectedText)
		m.raw(`</p>`)
		if !item.IsCorrect {
			m.raw(`<p class="ok">`)
			m.t("CorrectAnswer")
			m.raw(`: `)
			m.text(item.CorrectText)
			m.raw(`</p>`)
		}
		if item.Explanation != "" {
			m.raw(`<p class="muted">`)
			m.t("ExplanationLabel")
			m.raw(`: `)
			m.text(item.Explanation)
			m.raw(`</p>`)
		}
		m.raw(`</div>`)
	})
}
