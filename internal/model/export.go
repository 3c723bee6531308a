package model

import "time"

// StudyExport is the top-level JSON structure for a user's data export.
type StudyExport struct {
	ExportedAt time.Time   `json:"exported_at"`
	Users      []UserStudy `json:"users"`
}

// UserStudy holds one user's study material and progress for export.
type UserStudy struct {
	Email         string            `json:"email"`
	DisplayName   string            `json:"display_name"`
	Stats         Stats             `json:"stats"`
	Progress      int               `json:"overall_progress"`
	Notes         []Note            `json:"notes"`
	Quizzes       []Quiz            `json:"quizzes"`
	FlashcardSets []FlashcardSet    `json:"flashcard_sets"`
	Tests         []DescriptiveTest `json:"tests"`
	ExamResults   []ExamResult      `json:"exam_results"`
}
