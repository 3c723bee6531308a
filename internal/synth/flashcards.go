package synth

import (
	"strings"

	"github.com/pavelanni/studygenius/internal/analyzer"
	"github.com/pavelanni/studygenius/internal/model"
)

const maxFlashcards = 20

type cardPattern struct {
	words []string
	front string
}

// First matching pattern wins. Matching is case-sensitive.
var cardPatterns = []cardPattern{
	{
		words: []string{"definition", "concept", "theory"},
		front: "Analyze the theoretical foundations and implications of this concept. Consider its:\n1. Core assumptions\n2. Historical development\n3. Contemporary applications\n4. Limitations",
	},
	{
		words: []string{"process", "method"},
		front: "Compare and contrast different approaches to this process:\n1. Traditional methods\n2. Modern innovations\n3. Contextual adaptations\n4. Efficiency considerations",
	},
	{
		words: []string{"example", "case"},
		front: "Critically evaluate this case through multiple theoretical lenses:\n1. Underlying principles\n2. Alternative interpretations\n3. Real-world implications\n4. Potential challenges",
	},
	{
		words: []string{"problem", "challenge"},
		front: "Develop a comprehensive solution strategy:\n1. Root cause analysis\n2. Stakeholder considerations\n3. Implementation challenges\n4. Success metrics",
	},
}

func (p cardPattern) matches(line string) bool {
	for _, w := range p.words {
		if strings.Contains(line, w) {
			return true
		}
	}
	return false
}

// FlashcardsFromContent builds up to 20 flashcards whose backs are content lines.
func FlashcardsFromContent(content, fileName string) []model.Flashcard {
	topic := analyzer.FileTitle(fileName)
	lines := analyzer.FlashcardLines(content)
	n := min(len(lines), maxFlashcards)

	cards := make([]model.Flashcard, 0, n)
	for _, line := range lines[:n] {
		front := "Analyze this concept's role in " + topic + ":\n1. Theoretical significance\n2. Practical applications\n3. Related concepts\n4. Future implications"
		for _, p := range cardPatterns {
			if p.matches(line) {
				front = p.front
				break
			}
		}
		cards = append(cards, model.Flashcard{Front: front, Back: line})
	}
	return cards
}
