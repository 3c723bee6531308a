package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pavelanni/studygenius/internal/model"
)

func orNow(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now()
	}
	return t
}

// CreateQuiz stores a quiz with its questions as JSON.
func (s *Store) CreateQuiz(q model.Quiz) error {
	questions, err := json.Marshal(q.Questions)
	if err != nil {
		return fmt.Errorf("marshal quiz questions: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO quizzes (id, user_id, title, difficulty, questions, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		q.ID, q.UserID, q.Title, q.Difficulty, string(questions), orNow(q.CreatedAt),
	)
	return err
}

func scanQuiz(row interface{ Scan(...any) error }) (model.Quiz, error) {
	var q model.Quiz
	var questions string
	if err := row.Scan(&q.ID, &q.UserID, &q.Title, &q.Difficulty, &questions, &q.CreatedAt); err != nil {
		return q, err
	}
	if err := json.Unmarshal([]byte(questions), &q.Questions); err != nil {
		return q, fmt.Errorf("quiz %s: %w", q.ID, err)
	}
	return q, nil
}

// ListQuizzes returns a user's quizzes, newest first.
func (s *Store) ListQuizzes(userID int64) ([]model.Quiz, error) {
	rows, err := s.db.Query(
		`SELECT id, user_id, title, difficulty, questions, created_at FROM quizzes
		 WHERE user_id = ? ORDER BY created_at DESC, rowid DESC`, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var quizzes []model.Quiz
	for rows.Next() {
		q, err := scanQuiz(rows)
		if err != nil {
			return nil, err
		}
		quizzes = append(quizzes, q)
	}
	return quizzes, rows.Err()
}

// GetQuiz returns one quiz of a user.
func (s *Store) GetQuiz(userID int64, id string) (model.Quiz, error) {
	q, err := scanQuiz(s.db.QueryRow(
		`SELECT id, user_id, title, difficulty, questions, created_at FROM quizzes WHERE user_id = ? AND id = ?`,
		userID, id,
	))
	if err == sql.ErrNoRows {
		return q, ErrNotFound
	}
	return q, err
}

// DeleteQuiz removes a quiz.
func (s *Store) DeleteQuiz(userID int64, id string) error {
	res, err := s.db.Exec(`DELETE FROM quizzes WHERE user_id = ? AND id = ?`, userID, id)
	if err != nil {
		return err
	}
	return rowsAffectedOrNotFound(res)
}

// CreateFlashcardSet stores a flashcard set with its cards as JSON.
func (s *Store) CreateFlashcardSet(fs model.FlashcardSet) error {
	cards, err := json.Marshal(fs.Cards)
	if err != nil {
		return fmt.Errorf("marshal flashcards: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO flashcard_sets (id, user_id, title, cards, created_at) VALUES (?, ?, ?, ?, ?)`,
		fs.ID, fs.UserID, fs.Title, string(cards), orNow(fs.CreatedAt),
	)
	return err
}

// ListFlashcardSets returns a user's flashcard sets, newest first.
func (s *Store) ListFlashcardSets(userID int64) ([]model.FlashcardSet, error) {
	rows, err := s.db.Query(
		`SELECT id, user_id, title, cards, created_at FROM flashcard_sets
		 WHERE user_id = ? ORDER BY created_at DESC, rowid DESC`, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var sets []model.FlashcardSet
	for rows.Next() {
		var fs model.FlashcardSet
		var cards string
		if err := rows.Scan(&fs.ID, &fs.UserID, &fs.Title, &cards, &fs.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(cards), &fs.Cards); err != nil {
			return nil, fmt.Errorf("flashcard set %s: %w", fs.ID, err)
		}
		sets = append(sets, fs)
	}
	return sets, rows.Err()
}

// DeleteFlashcardSet removes a flashcard set.
func (s *Store) DeleteFlashcardSet(userID int64, id string) error {
	res, err := s.db.Exec(`DELETE FROM flashcard_sets WHERE user_id = ? AND id = ?`, userID, id)
	if err != nil {
		return err
	}
	return rowsAffectedOrNotFound(res)
}

// CreateDescriptiveTest stores a generated descriptive test.
func (s *Store) CreateDescriptiveTest(dt model.DescriptiveTest) error {
	topics, err := json.Marshal(dt.Topics)
	if err != nil {
		return fmt.Errorf("marshal topics: %w", err)
	}
	questions, err := json.Marshal(dt.Questions)
	if err != nil {
		return fmt.Errorf("marshal questions: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO descriptive_tests (id, user_id, title, source, topics, questions, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		dt.ID, dt.UserID, dt.Title, dt.Source, string(topics), string(questions), orNow(dt.CreatedAt),
	)
	return err
}

func scanDescriptiveTest(row interface{ Scan(...any) error }) (model.DescriptiveTest, error) {
	var dt model.DescriptiveTest
	var topics, questions string
	if err := row.Scan(&dt.ID, &dt.UserID, &dt.Title, &dt.Source, &topics, &questions, &dt.CreatedAt); err != nil {
		return dt, err
	}
	if err := json.Unmarshal([]byte(topics), &dt.Topics); err != nil {
		return dt, fmt.Errorf("test %s topics: %w", dt.ID, err)
	}
	if err := json.Unmarshal([]byte(questions), &dt.Questions); err != nil {
		return dt, fmt.Errorf("test %s questions: %w", dt.ID, err)
	}
	return dt, nil
}

// GetDescriptiveTest returns one descriptive test of a user.
func (s *Store) GetDescriptiveTest(userID int64, id string) (model.DescriptiveTest, error) {
	dt, err := scanDescriptiveTest(s.db.QueryRow(
		`SELECT id, user_id, title, source, topics, questions, created_at FROM descriptive_tests
		 WHERE user_id = ? AND id = ?`, userID, id,
	))
	if err == sql.ErrNoRows {
		return dt, ErrNotFound
	}
	return dt, err
}

// ListDescriptiveTests returns a user's descriptive tests, newest first.
func (s *Store) ListDescriptiveTests(userID int64) ([]model.DescriptiveTest, error) {
	rows, err := s.db.Query(
		`SELECT id, user_id, title, source, topics, questions, created_at FROM descriptive_tests
		 WHERE user_id = ? ORDER BY created_at DESC, rowid DESC`, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var tests []model.DescriptiveTest
	for rows.Next() {
		dt, err := scanDescriptiveTest(rows)
		if err != nil {
			return nil, err
		}
		tests = append(tests, dt)
	}
	return tests, rows.Err()
}

// SaveExamResult stores the outcome of a finished exam session. Saving a
// result ID again keeps the first row.
func (s *Store) SaveExamResult(r model.ExamResult) error {
	_, err := s.db.Exec(
		`INSERT INTO exam_results (id, user_id, test_id, exam_mode, score, questions, correct, percentage, mastery, completed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO NOTHING`,
		r.ID, r.UserID, r.TestID, r.ExamMode, r.Score, r.Questions, r.Correct, r.Percentage, r.Mastery, orNow(r.CompletedAt),
	)
	return err
}

// ListExamResults returns a user's exam results, newest first.
func (s *Store) ListExamResults(userID int64) ([]model.ExamResult, error) {
	rows, err := s.db.Query(
		`SELECT id, user_id, test_id, exam_mode, score, questions, correct, percentage, mastery, completed_at
		 FROM exam_results WHERE user_id = ? ORDER BY completed_at DESC, rowid DESC`, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var results []model.ExamResult
	for rows.Next() {
		var r model.ExamResult
		if err := rows.Scan(&r.ID, &r.UserID, &r.TestID, &r.ExamMode, &r.Score, &r.Questions, &r.Correct, &r.Percentage, &r.Mastery, &r.CompletedAt); err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}
