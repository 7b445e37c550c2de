package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/parikshasarathi/sarathi/internal/exam"
	"github.com/parikshasarathi/sarathi/internal/handler/views"
	"github.com/parikshasarathi/sarathi/internal/mocktest"
	"github.com/parikshasarathi/sarathi/internal/model"
	"github.com/parikshasarathi/sarathi/internal/store"
)

// Handler holds shared dependencies for HTTP handlers.
type Handler struct {
	bank      *store.Bank
	ledger    store.Ledger
	assembler *exam.Assembler
	sessions  *exam.Registry
	mocks     *mocktest.Catalog
	config    model.ExamConfig
	upgrader  websocket.Upgrader

	wsReadWait   time.Duration
	wsPingPeriod time.Duration
}

// New creates a new Handler.
// A nil mocks catalog offers no mock tests.
func New(bank *store.Bank, ledger store.Ledger, assembler *exam.Assembler, sessions *exam.Registry, mocks *mocktest.Catalog, cfg model.ExamConfig) *Handler {
	if mocks == nil {
		mocks = &mocktest.Catalog{}
	}
	return &Handler{
		bank:      bank,
		ledger:    ledger,
		assembler: assembler,
		sessions:  sessions,
		mocks:     mocks,
		config:    cfg,
		upgrader:  buildUpgrader(cfg.AllowedOrigins),

		wsReadWait:   wsReadWait,
		wsPingPeriod: wsPingPeriod,
	}
}

// Routes registers all HTTP routes.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.handleIndex)
	r.Get("/healthz", h.handleHealthz)
	r.Post("/tests", h.handleStartForm)
	r.Post("/mock-tests/{testID}/start", h.handleStartMockForm)
	r.Get("/sessions/{sessionID}", h.handleSessionPage)
	r.Get("/sessions/{sessionID}/result", h.handleResultPage)

	r.Route("/api", func(r chi.Router) {
		r.Get("/catalog", h.handleCatalog)
		r.Post("/tests", h.handleStartTest)
		r.Get("/mock-tests", h.handleListMockTests)
		r.Post("/mock-tests/{testID}/start", h.handleStartMockTest)

		r.Route("/sessions/{sessionID}", func(r chi.Router) {
			r.Get("/", h.handleSnapshot)
			r.Delete("/", h.handleCancel)
			r.Post("/answer", h.handleAnswer)
			r.Post("/move", h.handleMove)
			r.Post("/finish", h.handleFinish)
			r.Get("/result", h.handleResult)
			r.Get("/ws", h.handleStream)
		})

		r.Route("/bank", func(r chi.Router) {
			r.Get("/", h.handleListBank)
			r.Post("/", h.handleCreateQuestion)
			r.Post("/import", h.handleImport)
			r.Get("/export", h.handleExport)
			r.Put("/{questionID}", h.handleUpdateQuestion)
			r.Delete("/{questionID}", h.handleDeleteQuestion)
		})
	})
}

// BasePathMiddleware stores the configured base path in the request context.
func (h *Handler) BasePathMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := model.ContextWithBasePath(r.Context(), h.config.BasePath)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	class := r.URL.Query().Get("class")
	if !model.IsKnownClass(class) {
		class = model.DefaultClass
	}
	h.renderIndex(w, r, http.StatusOK, model.TestSetup{ClassLevel: class}.WithDefaults(), nil)
}

// renderIndex draws the home page for the setup's class, with any form errors.
func (h *Handler) renderIndex(w http.ResponseWriter, r *http.Request, status int, setup model.TestSetup, fields map[string]string) {
	questions, err := h.bank.List(r.Context())
	if err != nil {
		slog.Error("failed to list bank", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	counts := make(map[string]int)
	for _, q := range questions {
		if q.ClassLevel == setup.ClassLevel {
			counts[q.Subject]++
		}
	}

	page := views.IndexPage(views.IndexData{
		BankCounts: counts,
		MockTests:  h.mocks.ForClass(setup.ClassLevel),
		Setup:      setup,
		Errors:     fields,
	})
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := page.Render(r.Context(), w); err != nil {
		slog.Error("render error", "error", err)
	}
}

func (h *Handler) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"sessions": h.sessions.Len(),
	})
}

// Catalog is what a client needs to build the test setup form.
type Catalog struct {
	Subjects        []model.Subject `json:"subjects"`
	Classes         []string        `json:"classes"`
	Difficulties    []string        `json:"difficulties"`
	QuestionCounts  []int           `json:"questionCounts"`
	DefaultClass    string          `json:"defaultClass"`
	DefaultCount    int             `json:"defaultCount"`
	DefaultDuration int             `json:"defaultDurationMinutes"`
	MinDuration     int             `json:"minDurationMinutes"`
	MaxDuration     int             `json:"maxDurationMinutes"`
}

func (h *Handler) handleCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, Catalog{
		Subjects:        model.Subjects,
		Classes:         model.Classes,
		Difficulties:    model.Difficulties,
		QuestionCounts:  model.QuestionCountChoices,
		DefaultClass:    model.DefaultClass,
		DefaultCount:    model.DefaultQuestionCount,
		DefaultDuration: model.DefaultDurationMinutes,
		MinDuration:     model.MinDurationMinutes,
		MaxDuration:     model.MaxDurationMinutes,
	})
}
