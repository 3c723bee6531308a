package exam

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pavelanni/studygenius/internal/events"
	"github.com/pavelanni/studygenius/internal/model"
)

// ErrNotFound is returned for unknown sessions and for sessions owned by another user.
var ErrNotFound = errors.New("exam session not found")

// Manager owns the running sessions.
type Manager struct {
	cfg Config
	pub events.Publisher

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager creates a manager whose sessions use cfg and publish to pub.
func NewManager(cfg Config, pub events.Publisher) *Manager {
	return &Manager{cfg: cfg, pub: pub, sessions: make(map[string]*Session)}
}

// Start creates and starts a session over test.
func (m *Manager) Start(userID int64, test *model.DescriptiveTest, examMode bool) (*Session, error) {
	s, err := NewSession(uuid.NewString(), userID, test.ID, test.Questions, examMode, m.cfg, m.pub)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	s.Start()
	slog.Info("exam started", "session_id", s.ID, "user_id", userID, "test_id", test.ID, "exam_mode", examMode, "questions", len(test.Questions))
	return s, nil
}

// Get returns the session id owned by userID.
func (m *Manager) Get(userID int64, id string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok || s.UserID != userID {
		return nil, ErrNotFound
	}
	return s, nil
}

// Remove stops and forgets a session.
func (m *Manager) Remove(userID int64, id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if !ok || s.UserID != userID {
		m.mu.Unlock()
		return ErrNotFound
	}
	delete(m.sessions, id)
	m.mu.Unlock()
	s.Close()
	return nil
}

// Len reports the number of tracked sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Sweep stops and forgets every session idle at now. It returns how many
// were removed.
func (m *Manager) Sweep(now time.Time) int {
	m.mu.Lock()
	var idle []*Session
	for id, s := range m.sessions {
		if s.Idle(now) {
			idle = append(idle, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()
	for _, s := range idle {
		s.Close()
		slog.Info("exam session expired", "session_id", s.ID, "user_id", s.UserID)
	}
	return len(idle)
}

// Run sweeps idle sessions every interval until ctx is cancelled.
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := m.Sweep(now); n > 0 {
				slog.Debug("swept exam sessions", "removed", n, "remaining", m.Len())
			}
		}
	}
}

// CloseAll stops every session.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()
	for _, s := range sessions {
		s.Close()
	}
}
