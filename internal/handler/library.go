package handler

import (
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	appI18n "github.com/pavelanni/studygenius/internal/i18n"
	"github.com/pavelanni/studygenius/internal/model"
	"github.com/pavelanni/studygenius/internal/speech"
	"github.com/pavelanni/studygenius/internal/store"
)

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	st, err := h.study.Stats(currentUser(r).ID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

type settingsResponse struct {
	model.Settings
	HasAPIKey bool     `json:"has_api_key"`
	Languages any      `json:"languages"`
	Voices    []string `json:"voices"`
}

func newSettingsResponse(st model.Settings) settingsResponse {
	resp := settingsResponse{Settings: st, HasAPIKey: st.APIKey != "", Languages: model.Languages, Voices: speech.Voices()}
	resp.APIKey = ""
	return resp
}

func (h *Handler) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	st, err := h.store.GetSettings(currentUser(r).ID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newSettingsResponse(st))
}

func validSettings(st model.Settings) bool {
	switch st.Theme {
	case model.ThemeLight, model.ThemeDark, model.ThemeSystem:
	default:
		return false
	}
	return model.IsSupportedLanguage(st.Language) &&
		st.Voice != "" &&
		st.Volume >= 0 && st.Volume <= 100 &&
		st.SpeechRate > 0
}

func (h *Handler) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	current, err := h.store.GetSettings(user.ID)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	next := current
	if !decodeJSON(w, r, &next) {
		return
	}
	// The API key only changes through its validating endpoint.
	next.APIKey = current.APIKey
	if !validSettings(next) {
		writeError(w, r, http.StatusBadRequest, "ErrBadRequest")
		return
	}
	if err := h.store.SaveSettings(user.ID, next); err != nil {
		h.fail(w, r, err)
		return
	}
	slog.Info("settings saved", "user_id", user.ID, "language", next.Language, "theme", next.Theme)

	ctx := appI18n.WithLocalizer(r.Context(), appI18n.NewLocalizer(next.Language))
	writeJSON(w, http.StatusOK, map[string]any{
		"settings": newSettingsResponse(next),
		"title":    appI18n.T(ctx, "SettingsSaved"),
		"message":  appI18n.T(ctx, "SettingsSavedDetail"),
	})
}

type apiKeyRequest struct {
	APIKey string `json:"api_key"`
}

func (h *Handler) handleAPIKey(w http.ResponseWriter, r *http.Request) {
	var req apiKeyRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	key := strings.TrimSpace(req.APIKey)
	if err := h.speech.ValidateKey(r.Context(), key); err != nil {
		h.fail(w, r, err)
		return
	}
	user := currentUser(r)
	if err := h.store.SetSetting(user.ID, store.SettingAPIKey, key); err != nil {
		h.fail(w, r, err)
		return
	}
	slog.Info("speech API key saved", "user_id", user.ID)
	writeJSON(w, http.StatusOK, map[string]string{"message": appI18n.T(r.Context(), "APIKeySaved")})
}

func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.config.MaxUploadBytes)
	if err := r.ParseMultipartForm(h.config.MaxUploadBytes); err != nil {
		slog.Debug("bad upload", "error", err)
		writeError(w, r, http.StatusBadRequest, "ErrBadRequest")
		return
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		headers = r.MultipartForm.File["files[]"]
	}
	files := make([]model.UploadedFile, 0, len(headers))
	for _, fh := range headers {
		f, err := readUpload(fh)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		files = append(files, f)
	}

	res, err := h.study.ProcessUpload(r.Context(), currentUser(r).ID, files)
	if err != nil {
		if r.Context().Err() != nil {
			slog.Info("upload cancelled", "user_id", currentUser(r).ID)
			return
		}
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"result":  res,
		"message": appI18n.Tp(r.Context(), "FilesProcessed", len(files)),
	})
}

func readUpload(fh *multipart.FileHeader) (model.UploadedFile, error) {
	f, err := fh.Open()
	if err != nil {
		return model.UploadedFile{}, err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return model.UploadedFile{}, err
	}
	mimeType := fh.Header.Get("Content-Type")
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = http.DetectContentType(data)
	}
	return model.UploadedFile{Name: fh.Filename, MIMEType: mimeType, Data: data}, nil
}

type analyzeRequest struct {
	Content  string `json:"content"`
	FileName string `json:"file_name"`
	Count    int    `json:"count"`
}

func (h *Handler) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	topics, qs, err := h.study.Analyze(req.Content, req.FileName, req.Count)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"topics":    topics.All(),
		"questions": qs,
		"message":   appI18n.Tp(r.Context(), "QuestionsAvailable", len(qs)),
	})
}

func (h *Handler) handleListNotes(w http.ResponseWriter, r *http.Request) {
	notes, err := h.study.Notes(currentUser(r).ID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, notes)
}

type noteRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

func (h *Handler) handleCreateNote(w http.ResponseWriter, r *http.Request) {
	var req noteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	n, err := h.study.CreateNote(currentUser(r).ID, req.Title, req.Content)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, n)
}

func (h *Handler) handleDeleteNote(w http.ResponseWriter, r *http.Request) {
	if err := h.study.DeleteNote(currentUser(r).ID, chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleNoteTest(w http.ResponseWriter, r *http.Request) {
	dt, err := h.study.NoteTest(currentUser(r).ID, chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, dt)
}

func (h *Handler) handleListQuizzes(w http.ResponseWriter, r *http.Request) {
	qs, err := h.study.Quizzes(currentUser(r).ID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, qs)
}

func (h *Handler) handleGetQuiz(w http.ResponseWriter, r *http.Request) {
	q, err := h.study.Quiz(currentUser(r).ID, chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (h *Handler) handleDeleteQuiz(w http.ResponseWriter, r *http.Request) {
	if err := h.study.DeleteQuiz(currentUser(r).ID, chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleQuizTaken(w http.ResponseWriter, r *http.Request) {
	st, err := h.study.RecordQuizTaken(currentUser(r).ID, chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (h *Handler) handleListFlashcards(w http.ResponseWriter, r *http.Request) {
	sets, err := h.study.FlashcardSets(currentUser(r).ID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sets)
}

func (h *Handler) handleDeleteFlashcards(w http.ResponseWriter, r *http.Request) {
	st, err := h.study.DeleteFlashcardSet(currentUser(r).ID, chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (h *Handler) handleListTests(w http.ResponseWriter, r *http.Request) {
	tests, err := h.study.Tests(currentUser(r).ID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tests)
}

func (h *Handler) handleGetTest(w http.ResponseWriter, r *http.Request) {
	dt, err := h.study.Test(currentUser(r).ID, chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dt)
}
