package study

import (
	"fmt"
	"strings"
	"time"

	"github.com/pavelanni/studygenius/internal/analyzer"
	"github.com/pavelanni/studygenius/internal/events"
	"github.com/pavelanni/studygenius/internal/model"
	"github.com/pavelanni/studygenius/internal/stats"
	"github.com/pavelanni/studygenius/internal/synth"
)

// DefaultNotes are seeded for every new user and cannot be deleted.
func DefaultNotes() []model.Note {
	return []model.Note{
		{
			ID:       "default-cell-biology",
			Title:    "Cell Biology Lecture",
			Content:  "The cell is the basic structural and functional unit of life. Cells are divided into two main types - prokaryotes and eukaryotes.\n\nProkaryotic cells lack a nucleus, while eukaryotic cells have a nucleus and other membrane-bound organelles. Human cells are eukaryotic.",
			HasAudio: true,
			Default:  true,
		},
		{
			ID:       "default-world-war-ii",
			Title:    "World War II Overview",
			Content:  "World War II (1939-1945) was a global conflict that involved most of the world's nations forming two opposing military alliances: the Allies and the Axis.\n\nKey events include: Pearl Harbor attack (1941), D-Day (1944), and the atomic bombings of Hiroshima and Nagasaki (1945).",
			HasAudio: true,
			Default:  true,
		},
		{
			ID:      "default-algebra",
			Title:   "Algebraic Expressions",
			Content: "Algebraic expressions are combinations of variables, numbers, and operations. Examples include: 2x + 3, 5y² - 2y + 1, 3(a + b).\n\nTerms are parts of an expression separated by + or - signs. Coefficients are the numbers multiplied by variables.",
			Default: true,
		},
	}
}

// SeedDefaultNotes gives userID the default notes it does not have yet.
func (s *Service) SeedDefaultNotes(userID int64) error {
	n, err := s.store.SeedNotes(userID, DefaultNotes())
	if err != nil {
		return fmt.Errorf("seed notes: %w", err)
	}
	if n == 0 {
		return nil
	}
	_, err = s.notesChanged(userID)
	return err
}

// Notes lists the user's notes, oldest first.
func (s *Service) Notes(userID int64) ([]model.Note, error) {
	return s.store.ListNotes(userID)
}

// CreateNote stores a note typed by the user.
func (s *Service) CreateNote(userID int64, title, content string) (model.Note, error) {
	title = strings.TrimSpace(title)
	if strings.TrimSpace(content) == "" {
		return model.Note{}, ErrEmptyContent
	}
	if title == "" {
		title = analyzer.DefaultTitle
	}
	n := model.Note{ID: s.ids(), UserID: userID, Title: title, Content: content, CreatedAt: time.Now()}
	if err := s.store.CreateNote(n); err != nil {
		return model.Note{}, fmt.Errorf("create note: %w", err)
	}
	if _, err := s.notesChanged(userID); err != nil {
		return model.Note{}, err
	}
	return n, nil
}

// DeleteNote removes a user note. Default notes yield store.ErrDefaultNote.
func (s *Service) DeleteNote(userID int64, id string) error {
	if err := s.store.DeleteNote(userID, id); err != nil {
		return err
	}
	_, err := s.notesChanged(userID)
	return err
}

// notesChanged recounts the notes, stores the count in the stats document
// and notifies the user's clients.
func (s *Service) notesChanged(userID int64) (int, error) {
	count, err := s.store.CountNotes(userID)
	if err != nil {
		return 0, fmt.Errorf("count notes: %w", err)
	}
	if _, err := s.updateStats(userID, stats.NotesCounted(count)); err != nil {
		return 0, err
	}
	s.pub.Publish(userID, events.NotesChanged, NotesPayload{Count: count})
	return count, nil
}

// NoteTest generates and stores a descriptive test from a note's topics.
func (s *Service) NoteTest(userID int64, noteID string) (model.DescriptiveTest, error) {
	n, err := s.store.GetNote(userID, noteID)
	if err != nil {
		return model.DescriptiveTest{}, err
	}
	topics := analyzer.ExtractTopics(n.Content, n.Title)
	qs, err := s.gen.Generate(synth.CognitiveBank(), topics, synth.NotesQuestionCount(topics), synth.GenerateOptions{})
	if err != nil {
		return model.DescriptiveTest{}, fmt.Errorf("generate note test: %w", err)
	}
	dt := model.DescriptiveTest{
		ID: s.ids(), UserID: userID, Title: "Test: " + n.Title,
		Source: model.SourceNote, Topics: topics.All(), Questions: qs, CreatedAt: time.Now(),
	}
	if err := s.store.CreateDescriptiveTest(dt); err != nil {
		return model.DescriptiveTest{}, fmt.Errorf("create descriptive test: %w", err)
	}
	return dt, nil
}
