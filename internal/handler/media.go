package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/pavelanni/studygenius/internal/model"
	"github.com/pavelanni/studygenius/internal/store"
)

type translateRequest struct {
	Text     string `json:"text"`
	Language string `json:"language"`
	Markdown bool   `json:"markdown"`
}

func (h *Handler) handleTranslate(w http.ResponseWriter, r *http.Request) {
	var req translateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !model.IsSupportedLanguage(req.Language) {
		writeError(w, r, http.StatusBadRequest, "ErrBadRequest")
		return
	}

	var (
		out string
		err error
	)
	if req.Markdown {
		out, err = h.translator.Document(r.Context(), req.Text, req.Language)
	} else {
		out, err = h.translator.Text(r.Context(), req.Text, req.Language)
	}
	if err != nil {
		if r.Context().Err() != nil {
			slog.Debug("translation cancelled", "language", req.Language)
			return
		}
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"text": out, "language": req.Language})
}

type speechRequest struct {
	Text  string `json:"text"`
	Voice string `json:"voice"`
}

func (h *Handler) handleSpeech(w http.ResponseWriter, r *http.Request) {
	var req speechRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	user := currentUser(r)
	key, err := h.store.GetSetting(user.ID, store.SettingAPIKey)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	voice := req.Voice
	if voice == "" {
		st, err := h.store.GetSettings(user.ID)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		voice = st.Voice
	}

	audio, err := h.speech.Synthesize(r.Context(), key, voice, req.Text)
	if err != nil {
		if r.Context().Err() != nil {
			return
		}
		h.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "audio/mpeg")
	w.Header().Set("Content-Length", strconv.Itoa(len(audio)))
	if _, err := w.Write(audio); err != nil {
		slog.Warn("write audio", "user_id", user.ID, "error", err)
	}
}
