package model

import "time"

// Note is a smart note, either seeded, typed by the user, or created from an upload.
type Note struct {
	ID        string    `json:"id"`
	UserID    int64     `json:"-"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	HasAudio  bool      `json:"has_audio"`
	Default   bool      `json:"default"`
	CreatedAt time.Time `json:"created_at"`
}

// QuizQuestion is a multiple-choice question.
type QuizQuestion struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
	Explanation   string   `json:"explanation"`
	Hint          string   `json:"hint,omitempty"`
	Kind          string   `json:"kind,omitempty"`
}

// Quiz is a titled set of multiple-choice questions.
type Quiz struct {
	ID         string         `json:"id"`
	UserID     int64          `json:"-"`
	Title      string         `json:"title"`
	Difficulty Difficulty     `json:"difficulty"`
	Questions  []QuizQuestion `json:"questions"`
	Builtin    bool           `json:"builtin"`
	CreatedAt  time.Time      `json:"created_at"`
}

// Flashcard is a single front/back card.
type Flashcard struct {
	Front string `json:"front"`
	Back  string `json:"back"`
}

// FlashcardSet is a titled deck of flashcards.
type FlashcardSet struct {
	ID        string      `json:"id"`
	UserID    int64       `json:"-"`
	Title     string      `json:"title"`
	Cards     []Flashcard `json:"cards"`
	CreatedAt time.Time   `json:"created_at"`
}

// TestSource tells where a descriptive test came from.
type TestSource string

const (
	SourceUpload TestSource = "upload"
	SourceNote   TestSource = "note"
)

// DescriptiveTest is a stored list of descriptive questions.
type DescriptiveTest struct {
	ID        string                `json:"id"`
	UserID    int64                 `json:"-"`
	Title     string                `json:"title"`
	Source    TestSource            `json:"source"`
	Topics    []string              `json:"topics"`
	Questions []DescriptiveQuestion `json:"questions"`
	CreatedAt time.Time             `json:"created_at"`
}

// ExamResult is the persisted outcome of a finished exam session.
type ExamResult struct {
	ID          string    `json:"id"`
	UserID      int64     `json:"-"`
	TestID      string    `json:"test_id"`
	ExamMode    bool      `json:"exam_mode"`
	Score       int       `json:"score"`
	Questions   int       `json:"questions"`
	Correct     int       `json:"correct"`
	Percentage  int       `json:"percentage"`
	Mastery     string    `json:"mastery"`
	CompletedAt time.Time `json:"completed_at"`
}

// UploadedFile is one file submitted for processing.
type UploadedFile struct {
	Name     string
	MIMEType string
	Data     []byte
}
