package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTopics(t *testing.T) {
	topics := NewTopics("  physics ", "optics", "", "physics", "optics", " waves ")

	assert.Equal(t, []string{"physics", "optics", "waves"}, topics.All())
	assert.Equal(t, 3, topics.Len())
	assert.Equal(t, "physics", topics.First())
	assert.Equal(t, "optics", topics.At(4))
}

func TestTopicsWithDoesNotAlias(t *testing.T) {
	base := NewTopics("a", "b")
	x := base.With("x")
	y := base.With("y")

	assert.Equal(t, []string{"a", "b", "x"}, x.All())
	assert.Equal(t, []string{"a", "b", "y"}, y.All())
	assert.Equal(t, 2, base.Len())
}

func TestDifficultyMultiplier(t *testing.T) {
	assert.Equal(t, 1.0, DifficultyEasy.Multiplier())
	assert.Equal(t, 1.1, DifficultyMedium.Multiplier())
	assert.Equal(t, 1.2, DifficultyHard.Multiplier())
	assert.Equal(t, 1.0, Difficulty("").Multiplier())
}

func TestDifficultyJSON(t *testing.T) {
	data, err := json.Marshal(DescriptiveQuestion{ID: "q1", Difficulty: DifficultyHard})
	assert.NoError(t, err)
	assert.Contains(t, string(data), `"difficulty":"Hard"`)

	var q DescriptiveQuestion
	assert.NoError(t, json.Unmarshal([]byte(`{"difficulty":"Easy"}`), &q))
	assert.Equal(t, DifficultyEasy, q.Difficulty)
	assert.Equal(t, 1.0, q.Difficulty.Multiplier())
}

func TestOverallProgress(t *testing.T) {
	tests := []struct {
		stats Stats
		want  int
	}{
		{Stats{}, 0},
		{Stats{MaterialsUploaded: 1}, 5},
		{Stats{MaterialsUploaded: 3, FlashcardSets: 2, QuizzesTaken: 1, SmartNotes: 1}, 35},
		{Stats{SmartNotes: 20}, 100},
		{Stats{SmartNotes: 50}, 100},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.stats.OverallProgress(), "%+v", tt.stats)
	}
}

func TestIsSupportedLanguage(t *testing.T) {
	assert.True(t, IsSupportedLanguage("hi"))
	assert.True(t, IsSupportedLanguage("ta"))
	assert.False(t, IsSupportedLanguage("xx"))
}
