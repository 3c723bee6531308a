// Package grader scores free-text answers against a question's keyword checklist.
package grader

import (
	"errors"
	"math"
	"strings"

	"github.com/pavelanni/studygenius/internal/model"
)

// ErrEmptyAnswer is returned for empty or whitespace-only answers.
var ErrEmptyAnswer = errors.New("answer is empty")

const (
	// TimeLimit is the per-question exam clock in seconds that the time bonus is scaled against.
	TimeLimit = 300
	// MaxTimeBonus is awarded for an answer submitted with the full clock left.
	MaxTimeBonus = 30
	// MaxQuestionScore is the per-question denominator of the results percentage.
	MaxQuestionScore = 120
	// partialThreshold is the match percentage above which a wrong answer earns partial credit feedback.
	partialThreshold = 30
)

// Options controls exam-mode scoring.
type Options struct {
	ExamMode      bool
	TimeRemaining int // seconds left on the question clock
}

// Grade matches answer against q.Keywords. A keyword matches when it occurs
// anywhere in the answer, ignoring case. The answer is correct when at least
// ceil(60%) of the keywords match. A question without keywords is always correct.
func Grade(answer string, q model.DescriptiveQuestion, opts Options) (model.GradingResult, error) {
	if strings.TrimSpace(answer) == "" {
		return model.GradingResult{}, ErrEmptyAnswer
	}

	lower := strings.ToLower(answer)
	res := model.GradingResult{
		MatchedKeywords: []string{},
		MissingKeywords: []string{},
	}
	for _, k := range q.Keywords {
		if strings.Contains(lower, strings.ToLower(k)) {
			res.MatchedKeywords = append(res.MatchedKeywords, k)
		} else {
			res.MissingKeywords = append(res.MissingKeywords, k)
		}
	}

	total := len(q.Keywords)
	matched := len(res.MatchedKeywords)
	res.RequiredMatches = RequiredMatches(total)
	res.IsCorrect = matched >= res.RequiredMatches
	if total == 0 {
		res.MatchPercentage = 100
	} else {
		res.MatchPercentage = float64(matched) / float64(total) * 100
	}

	switch {
	case res.IsCorrect:
		res.Feedback = model.FeedbackSuccess
	case res.MatchPercentage > partialThreshold:
		res.Feedback = model.FeedbackPartial
	default:
		res.Feedback = model.FeedbackFailure
	}

	if opts.ExamMode {
		res.Exam = ExamScore(res.MatchPercentage, q.Difficulty, opts.TimeRemaining)
	}
	return res, nil
}

// RequiredMatches is ceil(0.6 * total) computed in integers.
func RequiredMatches(total int) int {
	return (3*total + 4) / 5
}

// TimeBonus scales the remaining seconds to at most MaxTimeBonus points.
func TimeBonus(timeRemaining int) int {
	if timeRemaining <= 0 {
		return 0
	}
	return int(math.Round(float64(timeRemaining) / TimeLimit * MaxTimeBonus))
}

// ExamScore computes round(round(pct) * multiplier + timeBonus). The total is
// not capped at MaxQuestionScore.
func ExamScore(pct float64, d model.Difficulty, timeRemaining int) *model.ExamScore {
	keyword := int(math.Round(pct))
	mult := d.Multiplier()
	bonus := TimeBonus(timeRemaining)
	return &model.ExamScore{
		KeywordScore: keyword,
		Multiplier:   mult,
		TimeBonus:    bonus,
		Total:        int(math.Round(float64(keyword)*mult + float64(bonus))),
	}
}

// Mastery is the results-screen label for a percentage.
type Mastery string

const (
	MasteryExpert     Mastery = "Expert"
	MasteryAdvanced   Mastery = "Advanced"
	MasteryCompetent  Mastery = "Competent"
	MasteryDeveloping Mastery = "Developing"
)

// MasteryFor maps a results percentage to its label.
func MasteryFor(pct int) Mastery {
	switch {
	case pct >= 90:
		return MasteryExpert
	case pct >= 75:
		return MasteryAdvanced
	case pct >= 60:
		return MasteryCompetent
	default:
		return MasteryDeveloping
	}
}

// Summary is the results screen of a finished exam.
type Summary struct {
	Score      int     `json:"score"`
	Questions  int     `json:"questions"`
	Percentage int     `json:"percentage"`
	Mastery    Mastery `json:"mastery"`
}

// Summarize computes round(score / (questions * MaxQuestionScore) * 100).
// Because question scores are uncapped the percentage may exceed 100.
func Summarize(score, questions int) Summary {
	s := Summary{Score: score, Questions: questions}
	if questions > 0 {
		s.Percentage = int(math.Round(float64(score) / float64(questions*MaxQuestionScore) * 100))
	}
	s.Mastery = MasteryFor(s.Percentage)
	return s
}
