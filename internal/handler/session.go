package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/parikshasarathi/sarathi/internal/exam"
	"github.com/parikshasarathi/sarathi/internal/handler/views"
	appI18n "github.com/parikshasarathi/sarathi/internal/i18n"
	"github.com/parikshasarathi/sarathi/internal/model"
)

// StartResponse is returned when a test starts. The test carries no answers.
type StartResponse struct {
	SessionID string           `json:"sessionId"`
	Test      model.PublicTest `json:"test"`
	Snapshot  exam.Snapshot    `json:"snapshot"`
}

// ResultResponse pairs the graded result with its display breakdown.
type ResultResponse struct {
	Result model.TestResult `json:"result"`
	Report exam.Report      `json:"report"`
}

func (h *Handler) handleStartTest(w http.ResponseWriter, r *http.Request) {
	var setup model.TestSetup
	if !decodeJSON(w, r, &setup) {
		return
	}
	setup = setup.WithDefaults()
	if err := model.ValidateTestSetup(setup); err != nil {
		writeError(w, r, err)
		return
	}

	runner, err := h.startSetup(r.Context(), setup)
	if err != nil {
		// The client went away while questions were generated.
		slog.Info("test setup abandoned", "subject", setup.Subject, "class", setup.ClassLevel, "error", err)
		return
	}
	h.writeStarted(w, runner)
}

// startSetup assembles a test for a validated setup and starts its session.
func (h *Handler) startSetup(ctx context.Context, setup model.TestSetup) (*exam.Runner, error) {
	test, err := h.assembler.Assemble(ctx, exam.Request{
		Subject:         setup.Subject,
		ClassLevel:      setup.ClassLevel,
		Count:           setup.Count,
		Difficulty:      setup.Difficulty,
		DurationMinutes: setup.DurationMinutes,
	})
	if err != nil {
		return nil, err
	}
	return h.sessions.Start(test), nil
}

func (h *Handler) writeStarted(w http.ResponseWriter, runner *exam.Runner) {
	writeJSON(w, http.StatusCreated, StartResponse{
		SessionID: runner.ID(),
		Test:      runner.Test().Public(),
		Snapshot:  runner.Snapshot(),
	})
}

func (h *Handler) runner(w http.ResponseWriter, r *http.Request) (*exam.Runner, bool) {
	runner, err := h.sessions.Get(chi.URLParam(r, "sessionID"))
	if err != nil {
		writeError(w, r, err)
		return nil, false
	}
	return runner, true
}

func (h *Handler) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	runner, ok := h.runner(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, runner.Snapshot())
}

type answerRequest struct {
	Option *int `json:"option"`
}

func (h *Handler) handleAnswer(w http.ResponseWriter, r *http.Request) {
	runner, ok := h.runner(w, r)
	if !ok {
		return
	}
	var req answerRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Option == nil {
		writeFail(w, r, http.StatusBadRequest, ErrInvalidPayload, nil)
		return
	}
	if err := runner.SelectAnswer(*req.Option); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, runner.Snapshot())
}

type moveRequest struct {
	Index *int `json:"index"`
}

func (h *Handler) handleMove(w http.ResponseWriter, r *http.Request) {
	runner, ok := h.runner(w, r)
	if !ok {
		return
	}
	var req moveRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Index == nil {
		writeFail(w, r, http.StatusBadRequest, ErrInvalidPayload, nil)
		return
	}
	if err := runner.MoveTo(*req.Index); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, runner.Snapshot())
}

func (h *Handler) handleFinish(w http.ResponseWriter, r *http.Request) {
	runner, ok := h.runner(w, r)
	if !ok {
		return
	}
	result, err := runner.Finish()
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.resultResponse(r, runner.Test(), result))
}

func (h *Handler) handleCancel(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Remove(chi.URLParam(r, "sessionID")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleResult(w http.ResponseWriter, r *http.Request) {
	runner, ok := h.runner(w, r)
	if !ok {
		return
	}
	result, done := runner.Result()
	if !done {
		if runner.Snapshot().State == exam.StateCancelled {
			writeFail(w, r, http.StatusConflict, ErrSessionNotRunning, nil)
			return
		}
		writeFail(w, r, http.StatusConflict, ErrResultPending, nil)
		return
	}
	writeJSON(w, http.StatusOK, h.resultResponse(r, runner.Test(), result))
}

func (h *Handler) resultResponse(r *http.Request, test model.Test, result model.TestResult) ResultResponse {
	return ResultResponse{
		Result: result,
		Report: exam.Present(test, result, appI18n.T(r.Context(), "Unanswered")),
	}
}

func (h *Handler) handleResultPage(w http.ResponseWriter, r *http.Request) {
	runner, err := h.sessions.Get(chi.URLParam(r, "sessionID"))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	result, done := runner.Result()
	if !done {
		http.Error(w, appI18n.T(r.Context(), "ErrResultPending"), http.StatusConflict)
		return
	}

	report := exam.Present(runner.Test(), result, appI18n.T(r.Context(), "Unanswered"))
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := views.ResultPage(report, result).Render(r.Context(), w); err != nil {
		slog.Error("render error", "error", err)
	}
}
