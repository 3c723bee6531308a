package store

import (
	"database/sql"
	"log/slog"
	"strings"
	"time"

	"github.com/pavelanni/studygenius/internal/model"
)

const userColumns = `id, email, display_name, password_hash, active, created_at`

func scanUser(row interface{ Scan(...any) error }) (*model.User, error) {
	var u model.User
	if err := row.Scan(&u.ID, &u.Email, &u.DisplayName, &u.PasswordHash, &u.Active, &u.CreatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateUser inserts a new user. Emails are stored lower-cased; a taken
// email yields ErrEmailTaken.
func (s *Store) CreateUser(u model.User) (int64, error) {
	email := strings.ToLower(strings.TrimSpace(u.Email))
	res, err := s.db.Exec(
		`INSERT INTO users (email, display_name, password_hash, active, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		email, u.DisplayName, u.PasswordHash, u.Active, time.Now(),
	)
	if isUniqueViolation(err) {
		return 0, ErrEmailTaken
	}
	if err != nil {
		slog.Error("failed to create user", "email", email, "error", err)
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	slog.Info("created user", "id", id, "email", email)
	return id, nil
}

// GetUserByEmail returns a user by email, or nil if there is none.
func (s *Store) GetUserByEmail(email string) (*model.User, error) {
	u, err := scanUser(s.db.QueryRow(
		`SELECT `+userColumns+` FROM users WHERE email = ?`, strings.ToLower(strings.TrimSpace(email)),
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return u, err
}

// GetUserByID returns a user by ID, or nil if there is none.
func (s *Store) GetUserByID(id int64) (*model.User, error) {
	u, err := scanUser(s.db.QueryRow(`SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return u, err
}

// ListUsers returns all users.
func (s *Store) ListUsers() ([]model.User, error) {
	rows, err := s.db.Query(`SELECT ` + userColumns + ` FROM users ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var users []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// UserCount returns the total number of users.
func (s *Store) UserCount() (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&count)
	return count, err
}
