package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pavelanni/studygenius/internal/model"
)

func TestReduce(t *testing.T) {
	tests := []struct {
		name   string
		in     model.Stats
		events []Event
		want   model.Stats
	}{
		{
			name:   "upload",
			events: []Event{MaterialsUploaded(3), FlashcardSetAdded(), NotesCounted(4)},
			want:   model.Stats{MaterialsUploaded: 3, FlashcardSets: 1, SmartNotes: 4},
		},
		{
			name:   "flashcard delete floors at zero",
			events: []Event{FlashcardSetRemoved()},
			want:   model.Stats{},
		},
		{
			name:   "flashcard delete",
			in:     model.Stats{FlashcardSets: 2},
			events: []Event{FlashcardSetRemoved()},
			want:   model.Stats{FlashcardSets: 1},
		},
		{
			name:   "quiz taken twice",
			in:     model.Stats{QuizzesTaken: 1},
			events: []Event{QuizTaken(), QuizTaken()},
			want:   model.Stats{QuizzesTaken: 3},
		},
		{
			name:   "notes counted replaces",
			in:     model.Stats{SmartNotes: 9},
			events: []Event{NotesCounted(3)},
			want:   model.Stats{SmartNotes: 3},
		},
		{
			name:   "version untouched",
			in:     model.Stats{Version: 7},
			events: []Event{QuizTaken()},
			want:   model.Stats{Version: 7, QuizzesTaken: 1},
		},
		{
			name:   "unknown kind ignored",
			in:     model.Stats{MaterialsUploaded: 1},
			events: []Event{{Kind: "bogus", N: 5}},
			want:   model.Stats{MaterialsUploaded: 1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := tt.in
			got := Reduce(tt.in, tt.events...)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, in, tt.in)
		})
	}
}

func TestReducer(t *testing.T) {
	fn := Reducer(MaterialsUploaded(2), QuizTaken())
	s := fn(model.Stats{})
	assert.Equal(t, 3, s.Total())
	assert.Equal(t, 15, s.OverallProgress())
}
