// Package views renders the server-side HTML pages as templ components.
package views

import (
	"context"
	"io"
	"strconv"

	"github.com/a-h/templ"

	appI18n "github.com/parikshasarathi/sarathi/internal/i18n"
	"github.com/parikshasarathi/sarathi/internal/model"
)

// markup writes HTML, keeping the first write error. text escapes its
// argument; raw does not and is only given literal markup.
type markup struct {
	ctx context.Context
	w   io.Writer
	err error
}

func (m *markup) raw(parts ...string) {
	for _, p := range parts {
		if m.err != nil {
			return
		}
		_, m.err = io.WriteString(m.w, p)
	}
}

func (m *markup) text(s string) { m.raw(templ.EscapeString(s)) }

// t writes an escaped translation.
func (m *markup) t(id string) { m.text(appI18n.T(m.ctx, id)) }

func (m *markup) tp(id string, n int) { m.text(appI18n.Tp(m.ctx, id, n)) }

func (m *markup) render(c templ.Component) {
	if m.err == nil {
		m.err = c.Render(m.ctx, m.w)
	}
}

// component adapts a markup body to templ.Component.
func component(body func(m *markup)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		m := &markup{ctx: ctx, w: w}
		body(m)
		return m.err
	})
}

// href is an escaped URL under the configured base path.
func href(ctx context.Context, path string) string {
	return templ.EscapeString(string(templ.URL(model.BasePathFromContext(ctx) + path)))
}

const style = `body{font-family:system-ui,"Noto Sans Devanagari",sans-serif;max-width:48rem;margin:0 auto;padding:1rem;color:#1f2937}
.card{display:block;border:1px solid #e5e7eb;border-radius:.75rem;padding:1rem;margin:.5rem 0}
.ok{color:#047857}.bad{color:#b91c1c}.muted{color:#6b7280}
.grid{display:grid;grid-template-columns:repeat(auto-fill,minmax(12rem,1fr));gap:.5rem}
.classes a{margin-right:.5rem}.classes a.current{font-weight:bold}
.options button{display:block;width:100%;text-align:left;margin:.25rem 0;padding:.5rem}
.options button.chosen{background:#dbeafe;border-color:#2563eb}
#nav button{margin:.125rem;min-width:2.25rem}#nav button.answered{background:#d1fae5}#nav button.current{outline:2px solid #2563eb}`

// layout wraps a page body in the shared document shell.
func layout(body templ.Component) templ.Component {
	return component(func(m *markup) {
		m.raw(`<!DOCTYPE html><html lang="hi"><head><meta charset="utf-8">`,
			`<meta name="viewport" content="width=device-width, initial-scale=1"><title>`)
		m.t("AppTitle")
		m.raw(`</title><style>`, style, `</style></head><body><header><h1><a href="`, href(m.ctx, "/"), `">`)
		m.t("AppTitle")
		m.raw(`</a></h1></header><main>`)
		m.render(body)
		m.raw(`</main></body></html>`)
	})
}

func itoa(n int) string { return strconv.Itoa(n) }
