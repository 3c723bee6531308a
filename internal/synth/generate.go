// Package synth builds study material from templates: descriptive questions,
// multiple-choice quizzes, flashcards and summaries.
package synth

import (
	"errors"
	"fmt"
	"strconv"
	"sync/atomic"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/pavelanni/studygenius/internal/model"
)

var (
	// ErrInvalidCount is returned when fewer than one question is requested.
	ErrInvalidCount = errors.New("question count must be at least 1")
	// ErrEmptyBank is returned when a bank has no usable templates.
	ErrEmptyBank = errors.New("template bank has no templates")
)

// UploadQuestionCount is the size of the test generated for an upload.
const UploadQuestionCount = 7

// maxNotesQuestions caps the test generated from a note.
const maxNotesQuestions = 10

// maxCompactKeywords caps keyword lists of non-progressive banks.
const maxCompactKeywords = 15

// lateKeywords are added to the second half of a progressive test.
var lateKeywords = []string{"analysis", "evaluation", "critical thinking", "synthesis"}

// NotesQuestionCount is the number of questions generated for a note: two per
// topic, at most ten.
func NotesQuestionCount(topics model.Topics) int {
	return min(topics.Len()*2, maxNotesQuestions)
}

// IDSource hands out question IDs.
type IDSource func() string

// UUIDs returns an IDSource of random UUIDs.
func UUIDs() IDSource {
	return uuid.NewString
}

// Sequential returns an IDSource of prefix-1, prefix-2, ... Safe for concurrent use.
func Sequential(prefix string) IDSource {
	var n atomic.Int64
	return func() string {
		return prefix + "-" + strconv.FormatInt(n.Add(1), 10)
	}
}

// GenerateOptions carries optional content context.
type GenerateOptions struct {
	// Themes are content words appended to every question's keywords.
	Themes []string
	// Snippets[i], when present, becomes an extra hint for question i.
	Snippets []string
}

// Generator turns topics into descriptive questions.
type Generator struct {
	ids IDSource
}

// NewGenerator creates a generator. A nil ids uses UUIDs.
func NewGenerator(ids IDSource) *Generator {
	if ids == nil {
		ids = UUIDs()
	}
	return &Generator{ids: ids}
}

// Generate produces count questions. Question i uses topic i mod len(topics),
// category i mod len(categories) and template i mod len(category templates).
func (g *Generator) Generate(bank Bank, topics model.Topics, count int, opts GenerateOptions) ([]model.DescriptiveQuestion, error) {
	if count < 1 {
		return nil, ErrInvalidCount
	}
	cats := bank.Categories()
	if len(cats) == 0 {
		return nil, fmt.Errorf("%s: %w", bank.Name(), ErrEmptyBank)
	}
	for _, c := range cats {
		if len(c.Templates) == 0 {
			return nil, fmt.Errorf("%s/%s: %w", bank.Name(), c.Name, ErrEmptyBank)
		}
	}

	questions := make([]model.DescriptiveQuestion, 0, count)
	for i := range count {
		topic := topics.At(i)
		cat := cats[i%len(cats)]
		tmpl := cat.Templates[i%len(cat.Templates)]

		question, answer, explanation, keywords, hints := tmpl.render(topic)
		keywords = append(keywords, opts.Themes...)

		difficulty := tmpl.Difficulty
		if bank.Progressive() {
			difficulty = positionalDifficulty(i, count)
			if 2*i >= count {
				keywords = appendMissing(keywords, lateKeywords...)
			}
		} else {
			keywords = compactKeywords(keywords)
		}
		if difficulty == "" {
			difficulty = model.DifficultyMedium
		}

		if i < len(opts.Snippets) {
			hints = append(hints, snippetHint(opts.Snippets[i]))
		}

		questions = append(questions, model.DescriptiveQuestion{
			ID:            g.ids(),
			Question:      question,
			CorrectAnswer: answer,
			Keywords:      keywords,
			Explanation:   explanation,
			Hints:         hints,
			Difficulty:    difficulty,
			Topic:         topic,
			Category:      cat.Name,
		})
	}
	return questions, nil
}

// positionalDifficulty splits a test into thirds: easy, medium, hard.
func positionalDifficulty(i, count int) model.Difficulty {
	switch {
	case 3*i < count:
		return model.DifficultyEasy
	case 3*i < 2*count:
		return model.DifficultyMedium
	default:
		return model.DifficultyHard
	}
}

func appendMissing(list []string, extra ...string) []string {
	seen := make(map[string]bool, len(list))
	for _, k := range list {
		seen[k] = true
	}
	for _, k := range extra {
		if !seen[k] {
			list = append(list, k)
			seen[k] = true
		}
	}
	return list
}

func compactKeywords(keywords []string) []string {
	seen := make(map[string]bool, len(keywords))
	out := make([]string, 0, maxCompactKeywords)
	for _, k := range keywords {
		if seen[k] || utf8.RuneCountInString(k) <= 3 {
			continue
		}
		seen[k] = true
		out = append(out, k)
		if len(out) == maxCompactKeywords {
			break
		}
	}
	return out
}

func snippetHint(snippet string) string {
	return fmt.Sprintf("Incorporate this key insight into your answer: \"%s...\"", truncate(snippet, 80))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
