package store

import (
	"database/sql"
	"time"

	"github.com/pavelanni/studygenius/internal/model"
)

const noteColumns = `id, user_id, title, content, has_audio, is_default, created_at`

func scanNote(row interface{ Scan(...any) error }) (model.Note, error) {
	var n model.Note
	err := row.Scan(&n.ID, &n.UserID, &n.Title, &n.Content, &n.HasAudio, &n.Default, &n.CreatedAt)
	return n, err
}

// CreateNote stores a note. A zero CreatedAt is set to now.
func (s *Store) CreateNote(n model.Note) error {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	_, err := s.db.Exec(
		`INSERT INTO notes (`+noteColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		n.ID, n.UserID, n.Title, n.Content, n.HasAudio, n.Default, n.CreatedAt,
	)
	return err
}

// SeedNotes inserts notes for a user, skipping IDs the user already has.
// It returns the number of notes inserted.
func (s *Store) SeedNotes(userID int64, notes []model.Note) (int, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	inserted := 0
	now := time.Now()
	for _, n := range notes {
		res, err := tx.Exec(
			`INSERT INTO notes (`+noteColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT(user_id, id) DO NOTHING`,
			n.ID, userID, n.Title, n.Content, n.HasAudio, n.Default, now,
		)
		if err != nil {
			return 0, err
		}
		if k, _ := res.RowsAffected(); k > 0 {
			inserted++
		}
	}
	return inserted, tx.Commit()
}

// ListNotes returns a user's notes, oldest first.
func (s *Store) ListNotes(userID int64) ([]model.Note, error) {
	rows, err := s.db.Query(
		`SELECT `+noteColumns+` FROM notes WHERE user_id = ? ORDER BY created_at, rowid`, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var notes []model.Note
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

// GetNote returns one note of a user.
func (s *Store) GetNote(userID int64, id string) (model.Note, error) {
	n, err := scanNote(s.db.QueryRow(
		`SELECT `+noteColumns+` FROM notes WHERE user_id = ? AND id = ?`, userID, id,
	))
	if err == sql.ErrNoRows {
		return n, ErrNotFound
	}
	return n, err
}

// DeleteNote removes a note. Seeded default notes are kept and yield ErrDefaultNote.
func (s *Store) DeleteNote(userID int64, id string) error {
	n, err := s.GetNote(userID, id)
	if err != nil {
		return err
	}
	if n.Default {
		return ErrDefaultNote
	}
	res, err := s.db.Exec(`DELETE FROM notes WHERE user_id = ? AND id = ?`, userID, id)
	if err != nil {
		return err
	}
	return rowsAffectedOrNotFound(res)
}

// CountNotes returns how many notes a user has.
func (s *Store) CountNotes(userID int64) (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM notes WHERE user_id = ?`, userID).Scan(&count)
	return count, err
}
