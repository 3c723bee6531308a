package model

import "strings"

// Difficulty represents question difficulty level.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

// Multiplier returns the exam-mode score multiplier for the difficulty.
func (d Difficulty) Multiplier() float64 {
	switch d {
	case DifficultyHard:
		return 1.2
	case DifficultyMedium:
		return 1.1
	default:
		return 1.0
	}
}

// Topics is an ordered, de-duplicated, non-empty list of topic phrases.
// The zero value is not valid; build one with NewTopics.
type Topics struct {
	items []string
}

// NewTopics builds a topic list. The first topic is always kept, even when
// blank, so the list can never be empty. Later blank or repeated entries are dropped.
func NewTopics(first string, rest ...string) Topics {
	t := Topics{items: []string{strings.TrimSpace(first)}}
	for _, r := range rest {
		t = t.With(r)
	}
	return t
}

// With returns the list with topic appended unless it is blank or already present.
func (t Topics) With(topic string) Topics {
	topic = strings.TrimSpace(topic)
	if topic == "" || t.Contains(topic) {
		return t
	}
	items := make([]string, len(t.items), len(t.items)+1)
	copy(items, t.items)
	t.items = append(items, topic)
	return t
}

// Contains reports whether topic is already in the list.
func (t Topics) Contains(topic string) bool {
	for _, it := range t.items {
		if it == topic {
			return true
		}
	}
	return false
}

// Len returns the number of topics. It is at least 1 for lists built with NewTopics.
func (t Topics) Len() int { return len(t.items) }

// At returns the topic at position i modulo the list length.
func (t Topics) At(i int) string {
	return t.items[i%len(t.items)]
}

// First returns the seed topic.
func (t Topics) First() string { return t.items[0] }

// All returns a copy of the topics in discovery order.
func (t Topics) All() []string {
	out := make([]string, len(t.items))
	copy(out, t.items)
	return out
}

// DescriptiveQuestion is an open-ended question graded by keyword coverage.
type DescriptiveQuestion struct {
	ID            string     `json:"id"`
	Question      string     `json:"question"`
	CorrectAnswer string     `json:"correct_answer"`
	Keywords      []string   `json:"keywords"`
	Explanation   string     `json:"explanation"`
	Hints         []string   `json:"hints"`
	Difficulty    Difficulty `json:"difficulty"`
	Topic         string     `json:"topic"`
	Category      string     `json:"category"`
}

// Feedback is the coarse outcome shown after grading an answer.
type Feedback string

const (
	FeedbackSuccess Feedback = "success"
	FeedbackPartial Feedback = "partial"
	FeedbackFailure Feedback = "failure"
)

// ExamScore is the exam-mode breakdown of a question score.
type ExamScore struct {
	KeywordScore int     `json:"keyword_score"`
	Multiplier   float64 `json:"multiplier"`
	TimeBonus    int     `json:"time_bonus"`
	Total        int     `json:"total"`
}

// GradingResult is the outcome of grading one free-text answer.
type GradingResult struct {
	MatchedKeywords []string   `json:"matched_keywords"`
	MissingKeywords []string   `json:"missing_keywords"`
	MatchPercentage float64    `json:"match_percentage"`
	RequiredMatches int        `json:"required_matches"`
	IsCorrect       bool       `json:"is_correct"`
	Feedback        Feedback   `json:"feedback"`
	Exam            *ExamScore `json:"exam,omitempty"`
}

// Score returns the exam score, or 0 outside exam mode.
func (r GradingResult) Score() int {
	if r.Exam == nil {
		return 0
	}
	return r.Exam.Total
}
