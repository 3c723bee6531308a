// Package stats applies progress events to the per-user stats document.
package stats

import (
	"fmt"

	"github.com/pavelanni/studygenius/internal/model"
)

// Kind identifies a progress event.
type Kind string

const (
	KindMaterialsUploaded   Kind = "materials_uploaded"
	KindFlashcardSetAdded   Kind = "flashcard_set_added"
	KindFlashcardSetRemoved Kind = "flashcard_set_removed"
	KindQuizTaken           Kind = "quiz_taken"
	KindNotesCounted        Kind = "notes_counted"
)

// Event is one change to the stats document.
type Event struct {
	Kind Kind
	N    int
}

func (e Event) String() string {
	return fmt.Sprintf("%s(%d)", e.Kind, e.N)
}

// MaterialsUploaded records n uploaded files.
func MaterialsUploaded(n int) Event { return Event{Kind: KindMaterialsUploaded, N: n} }

// FlashcardSetAdded records a new flashcard set.
func FlashcardSetAdded() Event { return Event{Kind: KindFlashcardSetAdded, N: 1} }

// FlashcardSetRemoved records a deleted flashcard set.
func FlashcardSetRemoved() Event { return Event{Kind: KindFlashcardSetRemoved, N: 1} }

// QuizTaken records a completed quiz.
func QuizTaken() Event { return Event{Kind: KindQuizTaken, N: 1} }

// NotesCounted sets the smart-notes counter to the current number of notes.
func NotesCounted(n int) Event { return Event{Kind: KindNotesCounted, N: n} }

// Reduce returns s with events applied in order. It never mutates its input,
// never drives a counter below zero and leaves Version untouched.
func Reduce(s model.Stats, events ...Event) model.Stats {
	for _, e := range events {
		switch e.Kind {
		case KindMaterialsUploaded:
			s.MaterialsUploaded = clamp(s.MaterialsUploaded + e.N)
		case KindFlashcardSetAdded:
			s.FlashcardSets = clamp(s.FlashcardSets + e.N)
		case KindFlashcardSetRemoved:
			s.FlashcardSets = clamp(s.FlashcardSets - e.N)
		case KindQuizTaken:
			s.QuizzesTaken = clamp(s.QuizzesTaken + e.N)
		case KindNotesCounted:
			s.SmartNotes = clamp(e.N)
		}
	}
	return s
}

// Reducer adapts Reduce to the store's update callback.
func Reducer(events ...Event) func(model.Stats) model.Stats {
	return func(s model.Stats) model.Stats {
		return Reduce(s, events...)
	}
}

func clamp(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
