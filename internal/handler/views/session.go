package views

import (
	_ "embed"
	"fmt"

	"github.com/a-h/templ"

	"github.com/parikshasarathi/sarathi/internal/exam"
	appI18n "github.com/parikshasarathi/sarathi/internal/i18n"
	"github.com/parikshasarathi/sarathi/internal/model"
)

//go:embed session.js
var sessionScript string

// sessionData seeds the page script; later state arrives on the stream.
type sessionData struct {
	Test          model.PublicTest `json:"test"`
	Snapshot      exam.Snapshot    `json:"snapshot"`
	StreamPath    string           `json:"streamPath"`
	ResultPath    string           `json:"resultPath"`
	CancelPath    string           `json:"cancelPath"`
	HomePath      string           `json:"homePath"`
	ConfirmFinish string           `json:"confirmFinish"`
}

// SessionPage renders a running session. The page script follows the
// session over its websocket stream and sends the student's actions back.
func SessionPage(sessionID string, test model.PublicTest, snap exam.Snapshot) templ.Component {
	return layout(component(func(m *markup) {
		base := model.BasePathFromContext(m.ctx)
		data, err := templ.JSONString(sessionData{
			Test:          test,
			Snapshot:      snap,
			StreamPath:    base + "/api/sessions/" + sessionID + "/ws",
			ResultPath:    base + "/sessions/" + sessionID + "/result",
			CancelPath:    base + "/api/sessions/" + sessionID,
			HomePath:      base + "/",
			ConfirmFinish: appI18n.T(m.ctx, "ConfirmFinish"),
		})
		if err != nil {
			m.err = err
			return
		}

		m.raw(`<h2>`)
		m.text(test.Title)
		m.raw(`</h2><div class="card">`)
		m.t("TimeLeft")
		m.raw(`: <strong id="timer">`, clock(snap.RemainingSeconds), `</strong></div><div class="card"><p><strong>`)
		m.t("QuestionLabel")
		m.raw(` <span id="qno">`, itoa(snap.Current+1), ` / `, itoa(len(test.Questions)), `</span></strong></p><p id="qtext">`)
		if snap.Current < len(test.Questions) {
			q := test.Questions[snap.Current]
			m.text(q.QuestionText)
			m.raw(`</p><div id="options" class="options">`)
			for _, o := range q.Options {
				m.raw(`<button type="button">`)
				m.text(o)
				m.raw(`</button>`)
			}
		} else {
			m.raw(`</p><div id="options" class="options">`)
		}
		m.raw(`</div></div><p>`)
		for _, b := range []struct{ id, label string }{
			{"prev", "Previous"}, {"next", "Next"}, {"finish", "FinishTest"}, {"cancel", "CancelTest"},
		} {
			m.raw(`<button type="button" id="`, b.id, `">`)
			m.t(b.label)
			m.raw(`</button> `)
		}
		m.raw(`</p><div id="nav" class="card"></div><p id="status" class="bad"></p>`,
			`<script type="application/json" id="session-data">`, data, `</script>`,
			`<script>`, sessionScript, `</script>`)
	}))
}

// clock formats seconds as m:ss.
func clock(seconds int) string {
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
