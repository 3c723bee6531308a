package study

import (
	"fmt"

	"github.com/pavelanni/studygenius/internal/model"
	"github.com/pavelanni/studygenius/internal/stats"
	"github.com/pavelanni/studygenius/internal/synth"
)

func builtinQuiz(id string) (model.Quiz, bool) {
	for _, q := range synth.SampleQuizzes() {
		if q.ID == id {
			return q, true
		}
	}
	return model.Quiz{}, false
}

// Quizzes returns the built-in quizzes followed by the user's own, with
// missing hints filled in.
func (s *Service) Quizzes(userID int64) ([]model.Quiz, error) {
	own, err := s.store.ListQuizzes(userID)
	if err != nil {
		return nil, err
	}
	all := synth.SampleQuizzes()
	for _, q := range own {
		q.Questions = synth.FillMissingHints(q.Questions)
		all = append(all, q)
	}
	return all, nil
}

// Quiz returns one quiz, built-in or owned by userID.
func (s *Service) Quiz(userID int64, id string) (model.Quiz, error) {
	if q, ok := builtinQuiz(id); ok {
		return q, nil
	}
	q, err := s.store.GetQuiz(userID, id)
	if err != nil {
		return q, err
	}
	q.Questions = synth.FillMissingHints(q.Questions)
	return q, nil
}

// DeleteQuiz removes a quiz the user owns.
func (s *Service) DeleteQuiz(userID int64, id string) error {
	if _, ok := builtinQuiz(id); ok {
		return ErrBuiltinQuiz
	}
	return s.store.DeleteQuiz(userID, id)
}

// RecordQuizTaken counts a completed quiz.
func (s *Service) RecordQuizTaken(userID int64, quizID string) (StatsPayload, error) {
	if _, err := s.Quiz(userID, quizID); err != nil {
		return StatsPayload{}, err
	}
	return s.updateStats(userID, stats.QuizTaken())
}

// FlashcardSets lists the user's flashcard sets.
func (s *Service) FlashcardSets(userID int64) ([]model.FlashcardSet, error) {
	return s.store.ListFlashcardSets(userID)
}

// DeleteFlashcardSet removes a flashcard set and decrements the counter.
func (s *Service) DeleteFlashcardSet(userID int64, id string) (StatsPayload, error) {
	if err := s.store.DeleteFlashcardSet(userID, id); err != nil {
		return StatsPayload{}, err
	}
	return s.updateStats(userID, stats.FlashcardSetRemoved())
}

// Test returns a stored descriptive test.
func (s *Service) Test(userID int64, id string) (model.DescriptiveTest, error) {
	return s.store.GetDescriptiveTest(userID, id)
}

// Tests lists the user's descriptive tests.
func (s *Service) Tests(userID int64) ([]model.DescriptiveTest, error) {
	return s.store.ListDescriptiveTests(userID)
}

// ExamResults lists the user's finished exams.
func (s *Service) ExamResults(userID int64) ([]model.ExamResult, error) {
	rs, err := s.store.ListExamResults(userID)
	if err != nil {
		return nil, fmt.Errorf("list exam results: %w", err)
	}
	return rs, nil
}
