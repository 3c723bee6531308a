package store

import (
	"fmt"
	"time"

	"github.com/pavelanni/studygenius/internal/model"
)

// ExportStudy builds an export of every user's study material and progress.
func (s *Store) ExportStudy() (model.StudyExport, error) {
	users, err := s.ListUsers()
	if err != nil {
		return model.StudyExport{}, fmt.Errorf("list users: %w", err)
	}

	export := model.StudyExport{ExportedAt: time.Now().UTC(), Users: []model.UserStudy{}}
	for _, u := range users {
		us, err := s.exportUser(u)
		if err != nil {
			return model.StudyExport{}, fmt.Errorf("export user %d: %w", u.ID, err)
		}
		export.Users = append(export.Users, us)
	}
	return export, nil
}

func (s *Store) exportUser(u model.User) (model.UserStudy, error) {
	us := model.UserStudy{Email: u.Email, DisplayName: u.DisplayName}
	var err error

	if us.Stats, err = s.GetStats(u.ID); err != nil {
		return us, fmt.Errorf("stats: %w", err)
	}
	us.Progress = us.Stats.OverallProgress()
	if us.Notes, err = s.ListNotes(u.ID); err != nil {
		return us, fmt.Errorf("notes: %w", err)
	}
	if us.Quizzes, err = s.ListQuizzes(u.ID); err != nil {
		return us, fmt.Errorf("quizzes: %w", err)
	}
	if us.FlashcardSets, err = s.ListFlashcardSets(u.ID); err != nil {
		return us, fmt.Errorf("flashcards: %w", err)
	}
	if us.Tests, err = s.ListDescriptiveTests(u.ID); err != nil {
		return us, fmt.Errorf("tests: %w", err)
	}
	if us.ExamResults, err = s.ListExamResults(u.ID); err != nil {
		return us, fmt.Errorf("exam results: %w", err)
	}
	return us, nil
}
