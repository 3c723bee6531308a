package model

import (
	"context"
	"time"
)

// User represents a registered learner.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	DisplayName  string    `json:"display_name"`
	PasswordHash string    `json:"-"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
}

// AuthSession represents an authentication session.
type AuthSession struct {
	ID        string
	UserID    int64
	CreatedAt time.Time
	ExpiresAt time.Time
}

type userCtxKey struct{}

// ContextWithUser stores a user in the request context.
func ContextWithUser(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, userCtxKey{}, u)
}

// UserFromContext retrieves the authenticated user from context, or nil.
func UserFromContext(ctx context.Context) *User {
	u, _ := ctx.Value(userCtxKey{}).(*User)
	return u
}

// AppConfig holds runtime parameters set via CLI flags.
type AppConfig struct {
	ExamSeconds    int           // per-question time limit in exam mode
	HintPenalty    int           // seconds removed from the clock per hint in exam mode
	TranslateDelay time.Duration // simulated latency of the mock translator
	SecureCookies  bool          // Set Secure flag on cookies (disable for local dev)
	CORSOrigins    []string
	SummaryVariant string // summary prompt variant (brief, standard, detailed)
	MaxUploadBytes int64
}
