// Package analyzer extracts candidate topics and study snippets from raw text.
package analyzer

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/pavelanni/studygenius/internal/model"
)

// DefaultTitle is used when a file name yields no usable title.
const DefaultTitle = "Uploaded Content"

// minTopics is the pool size below which generic filler topics are added.
const minTopics = 5

var (
	headingRegex  = regexp.MustCompile(`(?m)^#+[ \t]*(.+)$`)
	boldRegex     = regexp.MustCompile(`\*\*(.+?)\*\*`)
	sentenceSplit = regexp.MustCompile(`[.!?]`)
	nonWordRegex  = regexp.MustCompile(`[^\w\s]`)
	lineSplit     = regexp.MustCompile(`\n+`)
	themeRegex    = regexp.MustCompile(`\b[A-Za-z]{6,}\b`)
)

var importanceKeywords = []string{
	"important", "key", "essential", "fundamental",
	"critical", "significant", "primary", "major",
}

// FileTitle derives a human-readable title from a file name: the part before
// the first dot with underscores turned into spaces.
func FileTitle(fileName string) string {
	base, _, _ := strings.Cut(fileName, ".")
	title := strings.TrimSpace(strings.ReplaceAll(base, "_", " "))
	if title == "" {
		return DefaultTitle
	}
	return title
}

// ExtractTopics returns the topics found in content, seeded with the file title.
// The result is never empty.
func ExtractTopics(content, fileName string) model.Topics {
	title := FileTitle(fileName)
	topics := model.NewTopics(title)

	for _, m := range headingRegex.FindAllStringSubmatch(content, -1) {
		topics = topics.With(m[1])
	}
	for _, m := range boldRegex.FindAllStringSubmatch(content, -1) {
		topics = topics.With(m[1])
	}
	for _, phrase := range keyPhrasesAfterImportanceWords(content) {
		topics = topics.With(phrase)
	}

	if topics.Len() < minTopics {
		for _, f := range fillerTopics(title) {
			topics = topics.With(f)
		}
	}
	return topics
}

// keyPhrasesAfterImportanceWords collects up to four words following an
// importance keyword in every sentence longer than 20 characters.
func keyPhrasesAfterImportanceWords(content string) []string {
	var phrases []string
	for _, sentence := range sentenceSplit.Split(content, -1) {
		if utf8.RuneCountInString(strings.TrimSpace(sentence)) <= 20 {
			continue
		}
		if !containsImportanceWord(strings.ToLower(sentence)) {
			continue
		}
		words := strings.Fields(nonWordRegex.ReplaceAllString(sentence, ""))
		for i, w := range words {
			if i >= len(words)-2 || !isImportanceWord(strings.ToLower(w)) {
				continue
			}
			end := min(i+5, len(words))
			phrase := strings.Join(words[i+1:end], " ")
			if utf8.RuneCountInString(phrase) > 5 {
				phrases = append(phrases, phrase)
			}
		}
	}
	return phrases
}

func containsImportanceWord(lower string) bool {
	for _, k := range importanceKeywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

func isImportanceWord(lower string) bool {
	for _, k := range importanceKeywords {
		if lower == k {
			return true
		}
	}
	return false
}

func fillerTopics(title string) []string {
	return []string{
		"the fundamentals of " + title,
		title + " methodologies",
		title + " applications",
		title + " in modern context",
		"advanced concepts in " + title,
		"practical applications of " + title,
		"theoretical foundations of " + title,
	}
}

// Lines splits content into non-empty raw lines.
func Lines(content string) []string {
	var out []string
	for _, l := range lineSplit.Split(content, -1) {
		if l != "" {
			out = append(out, l)
		}
	}
	return out
}

func linesBetween(content string, minLen, maxLen int) []string {
	var out []string
	for _, l := range Lines(content) {
		n := utf8.RuneCountInString(l)
		if n > minLen && (maxLen <= 0 || n < maxLen) {
			out = append(out, strings.TrimSpace(l))
		}
	}
	return out
}

// KeyPhrases returns the trimmed lines longer than 40 characters.
func KeyPhrases(content string) []string {
	return linesBetween(content, 40, 0)
}

// FlashcardLines returns the trimmed lines between 41 and 499 characters.
func FlashcardLines(content string) []string {
	return linesBetween(content, 40, 500)
}

// Snippets returns up to n lines between 61 and 199 characters taken from the
// long lines of content.
func Snippets(content string, n int) []string {
	if n <= 0 {
		return nil
	}
	var out []string
	for _, l := range KeyPhrases(content) {
		c := utf8.RuneCountInString(l)
		if c > 60 && c < 200 {
			out = append(out, l)
		}
		if len(out) == n {
			break
		}
	}
	return out
}

// Themes returns up to n words of six or more letters from the long lines of content.
func Themes(content string, n int) []string {
	joined := strings.Join(KeyPhrases(content), " ")
	return themeRegex.FindAllString(joined, n)
}

// PlaceholderContent stands in for files whose text cannot be read directly.
func PlaceholderContent(fileName, mimeType string) string {
	base, _, _ := strings.Cut(fileName, ".")
	var sb strings.Builder
	fmt.Fprintf(&sb, "Content from %s (%s)\n\n", fileName, mimeType)
	fmt.Fprintf(&sb, "This document contains information about %s.\n", base)
	sb.WriteString("Key concepts include:\n\n")
	fmt.Fprintf(&sb, "- Understanding the main topics in %s\n", base)
	fmt.Fprintf(&sb, "- Analyzing relationships between different parts of %s\n", base)
	fmt.Fprintf(&sb, "- Applying concepts from %s to practical situations\n", base)
	fmt.Fprintf(&sb, "- Evaluating the significance of %s in its field\n\n", base)
	sb.WriteString("Further exploration of these topics would typically include detailed explanations,\n")
	fmt.Fprintf(&sb, "examples, and practical applications related to %s.", base)
	return sb.String()
}
