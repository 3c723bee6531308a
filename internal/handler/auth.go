package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/pavelanni/studygenius/internal/model"
	"github.com/pavelanni/studygenius/internal/store"
)

const sessionCookieName = "session"

// requireAuth is middleware that checks for a valid session cookie.
func (h *Handler) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(sessionCookieName)
		if err != nil || cookie.Value == "" {
			writeError(w, r, http.StatusUnauthorized, "ErrUnauthorized")
			return
		}

		authSess, err := h.store.GetAuthSession(cookie.Value)
		if err != nil {
			slog.Error("failed to get auth session", "error", err)
			writeError(w, r, http.StatusUnauthorized, "ErrUnauthorized")
			return
		}
		if authSess == nil {
			writeError(w, r, http.StatusUnauthorized, "ErrUnauthorized")
			return
		}

		user, err := h.store.GetUserByID(authSess.UserID)
		if err != nil || user == nil || !user.Active {
			writeError(w, r, http.StatusUnauthorized, "ErrUnauthorized")
			return
		}

		ctx := model.ContextWithUser(r.Context(), user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type signupRequest struct {
	Email           string `json:"email"`
	DisplayName     string `json:"display_name"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		writeError(w, r, http.StatusBadRequest, "ErrMissingFields")
		return
	}
	if req.Password != req.ConfirmPassword {
		writeError(w, r, http.StatusBadRequest, "ErrPasswordMismatch")
		return
	}

	existing, err := h.store.GetUserByEmail(req.Email)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if existing != nil {
		writeError(w, r, http.StatusConflict, "ErrEmailTaken")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	name := strings.TrimSpace(req.DisplayName)
	if name == "" {
		name, _, _ = strings.Cut(req.Email, "@")
	}
	id, err := h.store.CreateUser(model.User{
		Email:        req.Email,
		DisplayName:  name,
		PasswordHash: string(hash),
		Active:       true,
	})
	if errors.Is(err, store.ErrEmailTaken) {
		writeError(w, r, http.StatusConflict, "ErrEmailTaken")
		return
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.study.SeedDefaultNotes(id); err != nil {
		h.fail(w, r, err)
		return
	}

	user, err := h.store.GetUserByID(id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if user == nil {
		slog.Error("created user not found", "user_id", id)
		writeError(w, r, http.StatusInternalServerError, "ErrInternal")
		return
	}
	if !h.startSession(w, r, user.ID) {
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		writeError(w, r, http.StatusBadRequest, "ErrMissingFields")
		return
	}

	user, err := h.store.GetUserByEmail(req.Email)
	if err != nil {
		slog.Error("failed to get user", "error", err)
		writeError(w, r, http.StatusUnauthorized, "ErrInvalidCredentials")
		return
	}
	if user == nil || !user.Active {
		writeError(w, r, http.StatusUnauthorized, "ErrInvalidCredentials")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		writeError(w, r, http.StatusUnauthorized, "ErrInvalidCredentials")
		return
	}

	// Older accounts may predate the default notes.
	if err := h.study.SeedDefaultNotes(user.ID); err != nil {
		slog.Warn("failed to seed default notes", "user_id", user.ID, "error", err)
	}
	if !h.startSession(w, r, user.ID) {
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *Handler) startSession(w http.ResponseWriter, r *http.Request, userID int64) bool {
	token, err := h.store.CreateAuthSession(userID)
	if err != nil {
		slog.Error("failed to create auth session", "error", err)
		writeError(w, r, http.StatusInternalServerError, "ErrInternal")
		return false
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   h.config.SecureCookies,
	})
	return true
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(sessionCookieName)
	if err == nil && cookie.Value != "" {
		_ = h.store.DeleteAuthSession(cookie.Value)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.config.SecureCookies,
	})
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, currentUser(r))
}
