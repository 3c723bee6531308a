package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pavelanni/studygenius/internal/exam"
	appI18n "github.com/pavelanni/studygenius/internal/i18n"
	"github.com/pavelanni/studygenius/internal/model"
)

type startExamRequest struct {
	TestID   string `json:"test_id"`
	ExamMode bool   `json:"exam_mode"`
}

type answerRequest struct {
	Answer string `json:"answer"`
}

type answerResponse struct {
	Result  model.GradingResult `json:"result"`
	Message string              `json:"message"`
	Exam    exam.View           `json:"exam"`
}

type hintResponse struct {
	Hint    string    `json:"hint"`
	Warning string    `json:"warning,omitempty"`
	Exam    exam.View `json:"exam"`
}

type nextResponse struct {
	Finished bool      `json:"finished"`
	Mastery  string    `json:"mastery,omitempty"`
	Exam     exam.View `json:"exam"`
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*exam.Session, bool) {
	s, err := h.exams.Get(currentUser(r).ID, chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return nil, false
	}
	return s, true
}

func (h *Handler) handleListExamResults(w http.ResponseWriter, r *http.Request) {
	rs, err := h.study.ExamResults(currentUser(r).ID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rs)
}

func (h *Handler) handleStartExam(w http.ResponseWriter, r *http.Request) {
	var req startExamRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	user := currentUser(r)
	test, err := h.study.Test(user.ID, req.TestID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	s, err := h.exams.Start(user.ID, &test, req.ExamMode)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, s.Snapshot())
}

func (h *Handler) handleGetExam(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.Snapshot())
}

func (h *Handler) handleExamDraft(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var req answerRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := s.SetDraft(req.Answer); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleExamAnswer(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var req answerRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := s.Submit(req.Answer)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, answerResponse{
		Result:  res,
		Message: feedbackMessage(r, res),
		Exam:    s.Snapshot(),
	})
}

// feedbackMessage localizes the outcome of a graded answer.
func feedbackMessage(r *http.Request, res model.GradingResult) string {
	if res.Exam != nil {
		data := map[string]any{"Points": res.Score()}
		switch res.Feedback {
		case model.FeedbackSuccess:
			return appI18n.Td(r.Context(), "ExamFeedbackCorrect", data)
		case model.FeedbackPartial:
			return appI18n.Td(r.Context(), "ExamFeedbackPartial", data)
		default:
			return appI18n.Td(r.Context(), "ExamFeedbackIncorrect", data)
		}
	}
	switch res.Feedback {
	case model.FeedbackSuccess:
		return appI18n.T(r.Context(), "FeedbackCorrect")
	case model.FeedbackPartial:
		return appI18n.T(r.Context(), "FeedbackPartial")
	default:
		return appI18n.T(r.Context(), "FeedbackIncorrect")
	}
}

func (h *Handler) handleExamHint(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	hint, err := s.Hint()
	if err != nil {
		h.fail(w, r, err)
		return
	}
	resp := hintResponse{Hint: hint, Exam: s.Snapshot()}
	if s.ExamMode {
		resp.Warning = appI18n.T(r.Context(), "HintPenaltyWarning")
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleExamNext(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	finished, err := s.Next()
	// A finished session stays tracked until its result is saved, so a
	// failed save can be retried with another Next.
	if errors.Is(err, exam.ErrFinished) && s.Finished() {
		finished, err = true, nil
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}
	resp := nextResponse{Finished: finished, Exam: s.Snapshot()}
	if finished {
		result, err := s.Result()
		if err != nil {
			h.fail(w, r, err)
			return
		}
		if err := h.study.RecordExam(result); err != nil {
			h.fail(w, r, err)
			return
		}
		if err := h.exams.Remove(s.UserID, s.ID); err != nil {
			slog.Debug("exam session already removed", "session_id", s.ID, "error", err)
		}
		resp.Mastery = appI18n.T(r.Context(), "Mastery"+result.Mastery)
		slog.Info("exam finished", "session_id", s.ID, "user_id", s.UserID, "percentage", result.Percentage)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleDeleteExam(w http.ResponseWriter, r *http.Request) {
	if err := h.exams.Remove(currentUser(r).ID, chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
