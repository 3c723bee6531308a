package synth

import (
	"strings"
	"unicode/utf8"

	"github.com/pavelanni/studygenius/internal/model"
)

// Placeholders understood by templates.
const (
	topicToken      = "{topic}"
	topicWordsToken = "{topic-words}" // keyword list only: topic words longer than 3 chars
)

// Template is one parameterized descriptive question. Every text field may
// contain {topic}.
type Template struct {
	Question    string
	Keywords    []string
	Hints       []string
	Explanation string
	Answer      string           // defaults to "A comprehensive answer about {topic}"
	Difficulty  model.Difficulty // used only by non-progressive banks
}

// Category is a named group of templates.
type Category struct {
	Name      string
	Templates []Template
}

// Bank is a source of question templates.
type Bank interface {
	Name() string
	Categories() []Category
	// Progressive banks derive difficulty from question position and add
	// late-question keywords. Others use each template's fixed difficulty and
	// compact the keyword list.
	Progressive() bool
}

// TemplateBank is a static Bank.
type TemplateBank struct {
	name        string
	categories  []Category
	progressive bool
}

func (b *TemplateBank) Name() string           { return b.name }
func (b *TemplateBank) Categories() []Category { return b.categories }
func (b *TemplateBank) Progressive() bool      { return b.progressive }

// Select returns a bank limited to the named categories, in the original bank order.
// Unknown names are ignored.
func Select(b Bank, names ...string) *TemplateBank {
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}
	out := &TemplateBank{name: b.Name(), progressive: b.Progressive()}
	for _, c := range b.Categories() {
		if want[c.Name] {
			out.categories = append(out.categories, c)
		}
	}
	return out
}

func (t Template) render(topic string) (question, answer, explanation string, keywords, hints []string) {
	r := strings.NewReplacer(topicToken, topic)
	question = r.Replace(t.Question)
	explanation = r.Replace(t.Explanation)
	answer = "A comprehensive answer about " + topic
	if t.Answer != "" {
		answer = r.Replace(t.Answer)
	}
	for _, k := range t.Keywords {
		switch k {
		case topicToken:
			keywords = append(keywords, topic)
		case topicWordsToken:
			for _, w := range strings.Split(topic, " ") {
				if utf8.RuneCountInString(w) > 3 {
					keywords = append(keywords, w)
				}
			}
		default:
			keywords = append(keywords, r.Replace(k))
		}
	}
	for _, h := range t.Hints {
		hints = append(hints, r.Replace(h))
	}
	return question, answer, explanation, keywords, hints
}

// CognitiveBank returns the six-level cognitive template bank, two templates per level.
func CognitiveBank() *TemplateBank {
	return &TemplateBank{name: "cognitive", categories: cognitiveCategories, progressive: true}
}

// ArchetypeBank returns the seven question archetypes used for uploaded material.
func ArchetypeBank() *TemplateBank {
	return &TemplateBank{name: "archetype", categories: archetypeCategories}
}

var cognitiveCategories = []Category{
	{Name: "remember", Templates: []Template{
		{
			Question: "Define and explain the key components of {topic}.",
			Keywords: []string{topicToken, "definition", "explain", "component", "key", "fundamental"},
			Hints: []string{
				"Start with the basic definition of {topic}.",
				"Consider the essential elements that make up {topic}.",
				"What are the fundamental characteristics of {topic}?",
			},
			Explanation: "Understanding {topic} requires knowledge of its core components and definitions.",
		},
		{
			Question: "Identify and describe the main principles of {topic}.",
			Keywords: []string{topicToken, "identify", "describe", "principle", "main", "primary"},
			Hints: []string{
				"What are the guiding principles in {topic}?",
				"Think about the foundational rules in {topic}.",
				"Consider the essential concepts that define {topic}.",
			},
			Explanation: "The main principles of {topic} form its theoretical foundation and practical applications.",
		},
	}},
	{Name: "understand", Templates: []Template{
		{
			Question: "Explain the relationship between different aspects of {topic} and provide examples.",
			Keywords: []string{topicToken, "relationship", "explain", "aspect", "example", "connection"},
			Hints: []string{
				"How do various elements of {topic} interact with each other?",
				"Can you provide real-world examples of these relationships?",
				"Think about cause and effect within {topic}.",
			},
			Explanation: "Understanding {topic} requires comprehension of how its different aspects relate to each other and manifest in practical situations.",
		},
		{
			Question: "Compare and contrast different theories within {topic}.",
			Keywords: []string{topicToken, "compare", "contrast", "theory", "difference", "similarity"},
			Hints: []string{
				"What are the major theories in {topic}?",
				"How do these theories differ in their approach?",
				"What similarities exist across these different perspectives?",
			},
			Explanation: "A comprehensive understanding of {topic} includes awareness of various theoretical perspectives and their commonalities and differences.",
		},
	}},
	{Name: "apply", Templates: []Template{
		{
			Question: "Apply the principles of {topic} to solve a real-world problem.",
			Keywords: []string{topicToken, "apply", "principle", "solve", "problem", "real-world", "application"},
			Hints: []string{
				"Consider a specific challenge that {topic} could address.",
				"What steps would you take to implement {topic} in a practical situation?",
				"How might the theories of {topic} be put into practice?",
			},
			Explanation: "Applying {topic} demonstrates the ability to use theoretical knowledge to address practical challenges.",
		},
		{
			Question: "Demonstrate how {topic} can be used in different contexts.",
			Keywords: []string{topicToken, "demonstrate", "context", "use", "application", "implement"},
			Hints: []string{
				"In what different fields or situations could {topic} be relevant?",
				"How might {topic} be adapted to different environments?",
				"What makes {topic} versatile across different applications?",
			},
			Explanation: "The versatility of {topic} is demonstrated by its applicability across various contexts and situations.",
		},
	}},
	{Name: "analyze", Templates: []Template{
		{
			Question: "Analyze the strengths and weaknesses of different approaches to {topic}.",
			Keywords: []string{topicToken, "analyze", "strength", "weakness", "approach", "advantage", "disadvantage", "critical"},
			Hints: []string{
				"What are the benefits of different methods in {topic}?",
				"What limitations exist in various approaches to {topic}?",
				"How might these approaches be evaluated objectively?",
			},
			Explanation: "Critical analysis of {topic} involves evaluating the merits and limitations of different methodologies and approaches.",
		},
		{
			Question: "Examine the factors that influence {topic} and explain their significance.",
			Keywords: []string{topicToken, "examine", "factor", "influence", "significance", "impact", "analyze"},
			Hints: []string{
				"What external elements affect {topic}?",
				"How do these factors interact with each other?",
				"Why are certain factors more significant than others?",
			},
			Explanation: "Understanding {topic} requires examination of its influential factors and their relative importance.",
		},
	}},
	{Name: "evaluate", Templates: []Template{
		{
			Question: "Evaluate the effectiveness of {topic} in addressing specific challenges.",
			Keywords: []string{topicToken, "evaluate", "effectiveness", "challenge", "assessment", "critique", "judgment"},
			Hints: []string{
				"What criteria would you use to measure the success of {topic}?",
				"What evidence supports the effectiveness of {topic}?",
				"Are there situations where {topic} might be less effective?",
			},
			Explanation: "Evaluating {topic} involves assessing its efficacy and appropriateness for particular situations based on evidence and criteria.",
		},
		{
			Question: "Critique the current state of research on {topic} and suggest future directions.",
			Keywords: []string{topicToken, "critique", "research", "future", "direction", "limitation", "gap", "recommend"},
			Hints: []string{
				"What are the current strengths in {topic} research?",
				"What gaps exist in our understanding of {topic}?",
				"How might future research address these limitations?",
			},
			Explanation: "A critical evaluation of {topic} research identifies current knowledge status and opportunities for advancement.",
		},
	}},
	{Name: "create", Templates: []Template{
		{
			Question: "Design a new approach or solution related to {topic} that addresses current limitations.",
			Keywords: []string{topicToken, "design", "new", "approach", "solution", "innovative", "create", "develop"},
			Hints: []string{
				"What innovative methods could advance {topic}?",
				"How would your approach overcome existing challenges?",
				"What resources or technologies would your solution require?",
			},
			Explanation: "Innovation in {topic} requires creative thinking to develop novel approaches that advance beyond current limitations.",
		},
		{
			Question: "Propose an integrated framework that combines multiple perspectives on {topic}.",
			Keywords: []string{topicToken, "propose", "integrated", "framework", "combine", "perspective", "synthesize"},
			Hints: []string{
				"How might different theories of {topic} complement each other?",
				"What would a comprehensive approach to {topic} include?",
				"How could seemingly contradictory aspects of {topic} be reconciled?",
			},
			Explanation: "Synthesizing knowledge about {topic} into an integrated framework demonstrates the ability to create cohesive understanding from diverse perspectives.",
		},
	}},
}

var archetypeHints = []string{
	"Consider multiple theoretical perspectives when addressing {topic}.",
	"Integrate both empirical evidence and theoretical frameworks in your response.",
	"Include analysis of limitations and counterarguments in your answer.",
	"Connect abstract concepts to concrete examples or case studies.",
	"Consider ethical implications and broader societal context in your response.",
}

const archetypeExplanation = `A comprehensive answer about {topic} should demonstrate:
1. Critical evaluation of multiple theoretical perspectives
2. Integration of empirical evidence with conceptual frameworks
3. Analysis of strengths and limitations of different approaches
4. Application of concepts to real-world contexts or case studies
5. Consideration of ethical implications and broader impacts`

const archetypeAnswer = "A comprehensive answer would demonstrate critical thinking, integrate multiple perspectives, connect theory to practice, and consider broader implications of {topic}."

func archetype(name, question string, difficulty model.Difficulty, keywords ...string) Category {
	return Category{Name: name, Templates: []Template{{
		Question:    question,
		Keywords:    append([]string{topicWordsToken}, keywords...),
		Hints:       archetypeHints,
		Explanation: archetypeExplanation,
		Answer:      archetypeAnswer,
		Difficulty:  difficulty,
	}}}
}

var archetypeCategories = []Category{
	archetype("critique",
		"Critically evaluate the most significant theoretical frameworks in {topic}, highlighting their strengths, limitations, and real-world applicability.",
		model.DifficultyHard,
		"critical", "evaluation", "framework", "strength", "limitation", "applicability", "theoretical"),
	archetype("synthesize",
		"Compare and synthesize diverse perspectives on {topic}, explaining how these viewpoints collectively contribute to a comprehensive understanding of the subject.",
		model.DifficultyHard,
		"synthesis", "perspective", "compare", "viewpoint", "comprehensive", "understanding"),
	archetype("analyze",
		"Analyze the underlying assumptions and methodological approaches in {topic}, and discuss their impact on research outcomes.",
		model.DifficultyMedium,
		"assumption", "methodology", "approach", "impact", "research", "outcome", "analysis"),
	archetype("connect",
		"Explain the interconnections between key concepts in {topic} and demonstrate how they form a coherent system of knowledge.",
		model.DifficultyMedium,
		"interconnection", "concept", "coherent", "system", "knowledge", "relationship"),
	archetype("apply",
		"Propose an innovative application of {topic} principles to address a significant real-world challenge, explaining your reasoning and anticipated outcomes.",
		model.DifficultyMedium,
		"apply", "innovative", "principle", "challenge", "real-world", "solution", "outcome"),
	archetype("evaluate",
		"Evaluate the ethical implications and societal impacts of developments in {topic}, considering diverse stakeholder perspectives.",
		model.DifficultyHard,
		"ethical", "implication", "societal", "impact", "development", "stakeholder", "perspective"),
	archetype("transform",
		"How might emerging technologies transform our understanding and application of {topic}? Provide specific examples and analyze potential future developments.",
		model.DifficultyHard,
		"technology", "transform", "emerging", "future", "development", "understanding", "application"),
}
