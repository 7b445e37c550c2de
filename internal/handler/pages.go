package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/parikshasarathi/sarathi/internal/exam"
	"github.com/parikshasarathi/sarathi/internal/handler/views"
	"github.com/parikshasarathi/sarathi/internal/model"
)

// setupFromForm reads the index page form. Blank numbers fall back to the
// defaults; numbers that do not parse are reported by field.
func setupFromForm(form url.Values) (model.TestSetup, map[string]string) {
	setup := model.TestSetup{
		Subject:    form.Get("subject"),
		ClassLevel: form.Get("classLevel"),
		Difficulty: form.Get("difficulty"),
	}
	fields := map[string]string{}
	for name, dst := range map[string]*int{
		"count":           &setup.Count,
		"durationMinutes": &setup.DurationMinutes,
	} {
		raw := form.Get(name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			fields[name] = name + " must be a number"
			continue
		}
		*dst = n
	}
	return setup.WithDefaults(), fields
}

// handleStartForm starts a practice test from the index page and sends the
// browser to the session page.
func (h *Handler) handleStartForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	setup, fields := setupFromForm(r.PostForm)
	if len(fields) == 0 {
		if err := model.ValidateTestSetup(setup); err != nil {
			var ve *model.ValidationError
			if !errors.As(err, &ve) {
				slog.Error("validate test setup", "error", err)
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}
			fields = ve.Fields
		}
	}
	if len(fields) > 0 {
		if !model.IsKnownClass(setup.ClassLevel) {
			setup.ClassLevel = model.DefaultClass
		}
		h.renderIndex(w, r, http.StatusUnprocessableEntity, setup, fields)
		return
	}

	runner, err := h.startSetup(r.Context(), setup)
	if err != nil {
		slog.Info("test setup abandoned", "subject", setup.Subject, "class", setup.ClassLevel, "error", err)
		return
	}
	redirectToSession(w, r, runner.ID())
}

func (h *Handler) handleStartMockForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	class := r.PostForm.Get("classLevel")
	if class != "" && !model.IsKnownClass(class) {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	test, ok := h.mocks.Get(chi.URLParam(r, "testID"), class)
	if !ok {
		http.NotFound(w, r)
		return
	}
	redirectToSession(w, r, h.sessions.Start(test).ID())
}

func redirectToSession(w http.ResponseWriter, r *http.Request, id string) {
	http.Redirect(w, r, model.BasePathFromContext(r.Context())+"/sessions/"+id, http.StatusSeeOther)
}

// handleSessionPage serves the page that drives a running session over the
// websocket stream. Ended sessions go to their result or back home.
func (h *Handler) handleSessionPage(w http.ResponseWriter, r *http.Request) {
	runner, err := h.sessions.Get(chi.URLParam(r, "sessionID"))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	base := model.BasePathFromContext(r.Context())
	snap := runner.Snapshot()
	if snap.State != exam.StateRunning {
		target := base + "/"
		if snap.State == exam.StateFinalized {
			target = base + "/sessions/" + runner.ID() + "/result"
		}
		http.Redirect(w, r, target, http.StatusSeeOther)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := views.SessionPage(runner.ID(), runner.Test().Public(), snap).Render(r.Context(), w); err != nil {
		slog.Error("render error", "error", err)
	}
}
