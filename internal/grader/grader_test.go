package grader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pavelanni/studygenius/internal/model"
)

func question(d model.Difficulty, keywords ...string) model.DescriptiveQuestion {
	return model.DescriptiveQuestion{ID: "q1", Keywords: keywords, Difficulty: d}
}

func TestGradeRejectsEmptyAnswer(t *testing.T) {
	for _, answer := range []string{"", "   ", "\n\t"} {
		_, err := Grade(answer, question(model.DifficultyEasy, "x"), Options{})
		assert.ErrorIs(t, err, ErrEmptyAnswer)
	}
}

func TestGradeCaseInsensitiveSubstring(t *testing.T) {
	res, err := Grade("The Mitochondria is key", question(model.DifficultyEasy, "mitochondria"), Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"mitochondria"}, res.MatchedKeywords)
	assert.True(t, res.IsCorrect)

	// No word-boundary check.
	res, err = Grade("a keyword list", question(model.DifficultyEasy, "KEY"), Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"KEY"}, res.MatchedKeywords)
}

func TestGradeThreshold(t *testing.T) {
	tests := []struct {
		name    string
		answer  string
		correct bool
		pct     float64
		fb      model.Feedback
	}{
		{"three of five", "alpha beta gamma", true, 60, model.FeedbackSuccess},
		{"two of five", "alpha beta", false, 40, model.FeedbackPartial},
		{"one of five", "alpha", false, 20, model.FeedbackFailure},
		{"all", "alpha beta gamma delta epsilon", true, 100, model.FeedbackSuccess},
	}
	q := question(model.DifficultyEasy, "alpha", "beta", "gamma", "delta", "epsilon")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Grade(tt.answer, q, Options{})
			require.NoError(t, err)
			assert.Equal(t, tt.correct, res.IsCorrect)
			assert.InDelta(t, tt.pct, res.MatchPercentage, 1e-9)
			assert.Equal(t, tt.fb, res.Feedback)
			assert.Equal(t, 3, res.RequiredMatches)
			assert.Len(t, res.MatchedKeywords, len(q.Keywords)-len(res.MissingKeywords))
			assert.Nil(t, res.Exam)
		})
	}
}

func TestGradePartialBoundary(t *testing.T) {
	// 3 of 10 is exactly 30%: not partial.
	q := question(model.DifficultyEasy, "k0", "k1", "k2", "k3", "k4", "k5", "k6", "k7", "k8", "k9")
	res, err := Grade("k0 k1 k2", q, Options{})
	require.NoError(t, err)
	assert.Equal(t, model.FeedbackFailure, res.Feedback)

	res, err = Grade("k0 k1 k2 k3", q, Options{})
	require.NoError(t, err)
	assert.Equal(t, model.FeedbackPartial, res.Feedback)
}

func TestRequiredMatches(t *testing.T) {
	tests := map[int]int{0: 0, 1: 1, 2: 2, 3: 2, 4: 3, 5: 3, 6: 4, 7: 5, 10: 6, 11: 7, 15: 9}
	for total, want := range tests {
		assert.Equal(t, want, RequiredMatches(total), "total %d", total)
	}
}

func TestGradeIdempotent(t *testing.T) {
	q := question(model.DifficultyMedium, "cell", "membrane", "nucleus")
	opts := Options{ExamMode: true, TimeRemaining: 120}
	a, err := Grade("the cell nucleus", q, opts)
	require.NoError(t, err)
	b, err := Grade("the cell nucleus", q, opts)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestGradeNoKeywords(t *testing.T) {
	res, err := Grade("anything", question(model.DifficultyEasy), Options{})
	require.NoError(t, err)
	assert.True(t, res.IsCorrect)
	assert.InDelta(t, 100.0, res.MatchPercentage, 1e-9)
}

func TestExamScore(t *testing.T) {
	tests := []struct {
		name      string
		pct       float64
		d         model.Difficulty
		remaining int
		bonus     int
		total     int
	}{
		{"hard half time", 80, model.DifficultyHard, 150, 15, 111},
		{"easy full time", 100, model.DifficultyEasy, 300, 30, 130},
		{"hard full marks", 100, model.DifficultyHard, 300, 30, 150},
		{"medium no time", 50, model.DifficultyMedium, 0, 0, 55},
		{"negative time", 40, model.DifficultyEasy, -10, 0, 40},
		{"rounded pct", 66.666, model.DifficultyEasy, 10, 1, 68},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := ExamScore(tt.pct, tt.d, tt.remaining)
			assert.Equal(t, tt.bonus, s.TimeBonus)
			assert.Equal(t, tt.total, s.Total)
			assert.Equal(t, tt.d.Multiplier(), s.Multiplier)
		})
	}
}

func TestGradeExamMode(t *testing.T) {
	q := question(model.DifficultyHard, "a1", "b2", "c3", "d4", "e5")
	res, err := Grade("a1 b2 c3 d4", q, Options{ExamMode: true, TimeRemaining: 150})
	require.NoError(t, err)
	require.NotNil(t, res.Exam)
	assert.Equal(t, 80, res.Exam.KeywordScore)
	assert.Equal(t, 15, res.Exam.TimeBonus)
	assert.Equal(t, 111, res.Score())
}

func TestSummarize(t *testing.T) {
	tests := []struct {
		score, n int
		pct      int
		mastery  Mastery
	}{
		{0, 0, 0, MasteryDeveloping},
		{600, 5, 100, MasteryExpert},
		{540, 5, 90, MasteryExpert},
		{450, 5, 75, MasteryAdvanced},
		{360, 5, 60, MasteryCompetent},
		{359, 5, 60, MasteryCompetent},
		{300, 5, 50, MasteryDeveloping},
		{750, 5, 125, MasteryExpert},
	}
	for _, tt := range tests {
		s := Summarize(tt.score, tt.n)
		assert.Equal(t, tt.pct, s.Percentage, "score %d of %d", tt.score, tt.n)
		assert.Equal(t, tt.mastery, s.Mastery)
	}
}
