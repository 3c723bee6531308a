package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/pavelanni/studygenius/internal/model"
)

// maxStateRetries bounds UpdateStats attempts under concurrent writers.
const maxStateRetries = 5

type queryRower interface {
	QueryRow(query string, args ...any) *sql.Row
}

// readStats loads the stats document. A missing row is the zero document;
// a malformed one is logged and treated as zero counters at its stored version.
func readStats(q queryRower, userID int64) (model.Stats, error) {
	var version int64
	var raw string
	err := q.QueryRow(`SELECT version, stats FROM app_state WHERE user_id = ?`, userID).Scan(&version, &raw)
	if err == sql.ErrNoRows {
		return model.Stats{}, nil
	}
	if err != nil {
		return model.Stats{}, err
	}
	var st model.Stats
	if err := json.Unmarshal([]byte(raw), &st); err != nil {
		slog.Warn("ignoring malformed stats document", "user_id", userID, "error", err)
		st = model.Stats{}
	}
	st.Version = version
	return st, nil
}

// GetStats returns a user's stats document.
func (s *Store) GetStats(userID int64) (model.Stats, error) {
	return readStats(s.db, userID)
}

// UpdateStats applies fn to the current stats document and stores the result
// with the next version. The write only succeeds if nobody else wrote in
// between; otherwise it retries with fresh data, up to maxStateRetries times,
// before giving up with ErrStaleState.
func (s *Store) UpdateStats(userID int64, fn func(model.Stats) model.Stats) (model.Stats, error) {
	for attempt := 1; attempt <= maxStateRetries; attempt++ {
		next, err := s.tryUpdateStats(userID, fn)
		if err == nil {
			return next, nil
		}
		if !errors.Is(err, ErrStaleState) {
			return model.Stats{}, err
		}
		slog.Debug("stats update conflict, retrying", "user_id", userID, "attempt", attempt)
	}
	return model.Stats{}, fmt.Errorf("update stats for user %d: %w", userID, ErrStaleState)
}

func (s *Store) tryUpdateStats(userID int64, fn func(model.Stats) model.Stats) (model.Stats, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return model.Stats{}, err
	}
	defer tx.Rollback()

	cur, err := readStats(tx, userID)
	if err != nil {
		return model.Stats{}, err
	}
	next := fn(cur)
	next.Version = cur.Version + 1

	raw, err := json.Marshal(next)
	if err != nil {
		return model.Stats{}, fmt.Errorf("marshal stats: %w", err)
	}
	if err := s.writeStats(tx, userID, cur.Version, next.Version, string(raw)); err != nil {
		return model.Stats{}, err
	}
	return next, tx.Commit()
}

// writeStats stores raw at version next if the row is still at version prev.
func (s *Store) writeStats(tx *sql.Tx, userID, prev, next int64, raw string) error {
	var res sql.Result
	var err error
	if prev == 0 {
		res, err = tx.Exec(
			`INSERT INTO app_state (user_id, version, stats, updated_at) VALUES (?, ?, ?, ?)
			 ON CONFLICT(user_id) DO NOTHING`,
			userID, next, raw, time.Now(),
		)
	} else {
		res, err = tx.Exec(
			`UPDATE app_state SET version = ?, stats = ?, updated_at = ? WHERE user_id = ? AND version = ?`,
			next, raw, time.Now(), userID, prev,
		)
	}
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrStaleState
	}
	return nil
}
