package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/parikshasarathi/sarathi/internal/model"
)

// mockClass reads the optional class query parameter.
func mockClass(w http.ResponseWriter, r *http.Request) (string, bool) {
	class := r.URL.Query().Get("class")
	if class != "" && !model.IsKnownClass(class) {
		writeFail(w, r, http.StatusUnprocessableEntity, ErrValidation, map[string]string{
			"class": "class is not a known class",
		})
		return "", false
	}
	return class, true
}

func (h *Handler) handleListMockTests(w http.ResponseWriter, r *http.Request) {
	class, ok := mockClass(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.mocks.ForClass(class))
}

// handleStartMockTest starts a prepared test as is. A class given in the
// query scopes a test offered to every class.
func (h *Handler) handleStartMockTest(w http.ResponseWriter, r *http.Request) {
	class, ok := mockClass(w, r)
	if !ok {
		return
	}
	test, found := h.mocks.Get(chi.URLParam(r, "testID"), class)
	if !found {
		writeFail(w, r, http.StatusNotFound, ErrNotFound, nil)
		return
	}
	h.writeStarted(w, h.sessions.Start(test))
}
