package handler

import (
	"io"
	"log/slog"
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"

	"github.com/parikshasarathi/sarathi/internal/model"
	"github.com/parikshasarathi/sarathi/internal/store"
)

// BankList is the response of the bank listing.
type BankList struct {
	Total     int                  `json:"total"`
	Questions []model.BankQuestion `json:"questions"`
}

func (h *Handler) handleListBank(w http.ResponseWriter, r *http.Request) {
	qs, err := h.bank.Filter(r.Context(), r.URL.Query().Get("class"), r.URL.Query().Get("subject"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if qs == nil {
		qs = []model.BankQuestion{}
	}
	writeJSON(w, http.StatusOK, BankList{Total: len(qs), Questions: qs})
}

func (h *Handler) handleCreateQuestion(w http.ResponseWriter, r *http.Request) {
	var q model.BankQuestion
	if !decodeJSON(w, r, &q) {
		return
	}
	created, err := h.bank.Insert(r.Context(), q)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) handleUpdateQuestion(w http.ResponseWriter, r *http.Request) {
	var q model.BankQuestion
	if !decodeJSON(w, r, &q) {
		return
	}
	updated, err := h.bank.Update(r.Context(), chi.URLParam(r, "questionID"), q)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) handleDeleteQuestion(w http.ResponseWriter, r *http.Request) {
	if err := h.bank.Delete(r.Context(), chi.URLParam(r, "questionID")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleImport(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		writeFail(w, r, http.StatusBadRequest, ErrInvalidPayload, map[string]string{"questions_file": "file too large or not multipart"})
		return
	}

	file, header, err := r.FormFile("questions_file")
	if err != nil {
		writeFail(w, r, http.StatusBadRequest, ErrInvalidPayload, map[string]string{"questions_file": "no file uploaded"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, r, err)
		return
	}

	name := "upload:" + filepath.Base(header.Filename)
	res, err := store.Import(r.Context(), h.bank, h.ledger, name, data, r.FormValue("replace") == "true")
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("uploaded questions via admin", "filename", header.Filename, "outcome", res.Outcome, "count", res.Count)
	status := http.StatusOK
	if res.Outcome == store.ImportDone {
		status = http.StatusCreated
	}
	writeJSON(w, status, res)
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	data, err := h.bank.Export(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="question-bank.json"`)
	if _, err := w.Write(data); err != nil {
		slog.Error("write export", "error", err)
	}
}
