package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/cors"

	"github.com/pavelanni/studygenius/internal/events"
	"github.com/pavelanni/studygenius/internal/exam"
	"github.com/pavelanni/studygenius/internal/grader"
	appI18n "github.com/pavelanni/studygenius/internal/i18n"
	"github.com/pavelanni/studygenius/internal/model"
	"github.com/pavelanni/studygenius/internal/speech"
	"github.com/pavelanni/studygenius/internal/store"
	"github.com/pavelanni/studygenius/internal/study"
	"github.com/pavelanni/studygenius/internal/translate"
)

const defaultMaxUploadBytes = 32 << 20

// Handler holds shared dependencies for HTTP handlers.
type Handler struct {
	store      *store.Store
	study      *study.Service
	exams      *exam.Manager
	translator *translate.Translator
	speech     *speech.Client
	hub        *events.Hub
	config     model.AppConfig
}

// Deps are the services a Handler serves.
type Deps struct {
	Store      *store.Store
	Study      *study.Service
	Exams      *exam.Manager
	Translator *translate.Translator
	Speech     *speech.Client
	Hub        *events.Hub
}

// New creates a new Handler.
func New(d Deps, cfg model.AppConfig) (*Handler, error) {
	if d.Store == nil || d.Study == nil || d.Exams == nil || d.Translator == nil || d.Speech == nil || d.Hub == nil {
		return nil, errors.New("handler: missing dependency")
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = defaultMaxUploadBytes
	}
	if len(cfg.CORSOrigins) == 0 {
		cfg.CORSOrigins = defaultOrigins
	}
	return &Handler{
		store:      d.Store,
		study:      d.Study,
		exams:      d.Exams,
		translator: d.Translator,
		speech:     d.Speech,
		hub:        d.Hub,
		config:     cfg,
	}, nil
}

// Routes registers all HTTP routes.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/health", h.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/signup", h.handleSignup)
		r.Post("/auth/login", h.handleLogin)
		r.Post("/auth/logout", h.handleLogout)

		r.Group(func(r chi.Router) {
			r.Use(h.requireAuth)

			r.Get("/me", h.handleMe)
			r.Get("/stats", h.handleStats)
			r.Get("/settings", h.handleGetSettings)
			r.Put("/settings", h.handlePutSettings)
			r.Post("/settings/api-key", h.handleAPIKey)

			r.Post("/uploads", h.handleUpload)
			r.Post("/analyze", h.handleAnalyze)

			r.Get("/notes", h.handleListNotes)
			r.Post("/notes", h.handleCreateNote)
			r.Delete("/notes/{id}", h.handleDeleteNote)
			r.Post("/notes/{id}/test", h.handleNoteTest)

			r.Get("/quizzes", h.handleListQuizzes)
			r.Get("/quizzes/{id}", h.handleGetQuiz)
			r.Delete("/quizzes/{id}", h.handleDeleteQuiz)
			r.Post("/quizzes/{id}/taken", h.handleQuizTaken)

			r.Get("/flashcards", h.handleListFlashcards)
			r.Delete("/flashcards/{id}", h.handleDeleteFlashcards)

			r.Get("/tests", h.handleListTests)
			r.Get("/tests/{id}", h.handleGetTest)

			r.Get("/exams", h.handleListExamResults)
			r.Post("/exams", h.handleStartExam)
			r.Get("/exams/{id}", h.handleGetExam)
			r.Put("/exams/{id}/draft", h.handleExamDraft)
			r.Post("/exams/{id}/answer", h.handleExamAnswer)
			r.Post("/exams/{id}/hint", h.handleExamHint)
			r.Post("/exams/{id}/next", h.handleExamNext)
			r.Delete("/exams/{id}", h.handleDeleteExam)

			r.Post("/translate", h.handleTranslate)
			r.Post("/speech", h.handleSpeech)

			r.Get("/events", h.handleEvents)
		})
	})
}

// CORS returns the cross-origin middleware for the browser front-end.
// Credentials are allowed so the session cookie travels with API calls.
var defaultOrigins = []string{"http://localhost:5173"}

func CORS(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		origins = defaultOrigins
	}
	c := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Accept-Language"},
		AllowCredentials: true,
	})
	return c.Handler
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.UserCount()
	if err != nil {
		slog.Error("health check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":        "ok",
		"users":         users,
		"exam_sessions": h.exams.Len(),
	})
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

// writeError responds with a localized message for msgID.
func writeError(w http.ResponseWriter, r *http.Request, status int, msgID string) {
	writeJSON(w, status, errorResponse{Error: msgID, Message: appI18n.T(r.Context(), msgID)})
}

// fail maps a service error to a status and a localized message.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, msgID := classify(err)
	if status >= http.StatusInternalServerError {
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	} else {
		slog.Debug("request rejected", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	}
	writeError(w, r, status, msgID)
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, store.ErrNotFound), errors.Is(err, exam.ErrNotFound):
		return http.StatusNotFound, "ErrNotFound"
	case errors.Is(err, store.ErrEmailTaken):
		return http.StatusConflict, "ErrEmailTaken"
	case errors.Is(err, store.ErrDefaultNote):
		return http.StatusForbidden, "ErrDefaultNote"
	case errors.Is(err, study.ErrBuiltinQuiz):
		return http.StatusForbidden, "ErrBuiltinQuiz"
	case errors.Is(err, study.ErrNoFiles):
		return http.StatusBadRequest, "ErrNoFiles"
	case errors.Is(err, study.ErrEmptyContent), errors.Is(err, speech.ErrEmptyText):
		return http.StatusBadRequest, "ErrEmptyText"
	case errors.Is(err, grader.ErrEmptyAnswer):
		return http.StatusBadRequest, "EmptyAnswer"
	case errors.Is(err, exam.ErrAnswerLocked):
		return http.StatusConflict, "AnswerLocked"
	case errors.Is(err, exam.ErrNoMoreHints):
		return http.StatusConflict, "NoMoreHints"
	case errors.Is(err, exam.ErrFinished):
		return http.StatusConflict, "ExamFinished"
	case errors.Is(err, exam.ErrNoQuestions):
		return http.StatusBadRequest, "ErrBadRequest"
	case errors.Is(err, speech.ErrKeyTooShort):
		return http.StatusBadRequest, "ErrAPIKeyTooShort"
	case errors.Is(err, speech.ErrMissingKey), errors.Is(err, speech.ErrInvalidKey):
		return http.StatusBadGateway, "ErrAPIKeyInvalid"
	case errors.Is(err, speech.ErrUnusualActivity):
		return http.StatusBadGateway, "ErrUnusualActivity"
	}
	var se *speech.StatusError
	if errors.As(err, &se) {
		return http.StatusBadGateway, "ErrSpeechFailed"
	}
	return http.StatusInternalServerError, "ErrInternal"
}

// decodeJSON reads a JSON body into v. It answers 400 itself and reports
// false when the body is malformed.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		slog.Debug("bad request body", "path", r.URL.Path, "error", err)
		writeError(w, r, http.StatusBadRequest, "ErrBadRequest")
		return false
	}
	return true
}

func currentUser(r *http.Request) *model.User {
	return model.UserFromContext(r.Context())
}
