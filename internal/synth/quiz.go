package synth

import (
	"math/rand/v2"
	"strings"

	"github.com/pavelanni/studygenius/internal/analyzer"
	"github.com/pavelanni/studygenius/internal/model"
)

// maxQuizQuestions caps the quiz generated from an upload.
const maxQuizQuestions = 15

// mcqTemplate is a multiple-choice question quoting part of a content line.
// Options[0] is the correct answer before shuffling.
type mcqTemplate struct {
	kind        string
	question    string // {topic}, {context}
	contextLen  int
	options     []string
	explanation string
	hint        string
}

var mcqTemplates = []mcqTemplate{
	{
		kind:       "critical-analysis",
		question:   `Critically analyze the following statement about {topic}: "{context}..." Which interpretation best captures the complex implications of this concept?`,
		contextLen: 100,
		options: []string{
			"The statement presents a nuanced perspective that acknowledges the multifaceted nature of {topic} while recognizing inherent methodological limitations.",
			"The statement overlooks critical contradictions in how {topic} has been conceptualized across different theoretical frameworks.",
			"The fundamental premise of the statement can be challenged based on recent empirical findings that suggest alternative mechanisms.",
			"The statement reflects a deterministic view that fails to account for contextual variability and emergent properties in {topic}.",
		},
		explanation: "This interpretation correctly identifies the balanced approach taken in the statement, acknowledging both strengths and limitations while avoiding oversimplification of the complex issues surrounding {topic}.",
		hint:        "Consider how the statement addresses multiple perspectives and acknowledges limitations rather than presenting an absolutist viewpoint.",
	},
	{
		kind:       "theoretical-integration",
		question:   `How might the following evidence about {topic} be integrated into a comprehensive theoretical framework? "{context}..."`,
		contextLen: 80,
		options: []string{
			"Through a transdisciplinary approach that synthesizes methodologies from multiple fields while acknowledging epistemological differences.",
			"By adopting a reductionist perspective that isolates variables and establishes linear causal relationships between components.",
			"Through rejection of existing paradigms in favor of an entirely new conceptual model that prioritizes descriptive accuracy over predictive power.",
			"By selectively incorporating only those aspects of the evidence that align with established theoretical models.",
		},
		explanation: "This approach represents the most sophisticated integration strategy by acknowledging the complexity of the evidence and the need to draw on diverse methodological and theoretical traditions while remaining sensitive to their underlying assumptions.",
		hint:        "The most robust theoretical frameworks acknowledge complexity and draw from multiple disciplines rather than forcing evidence into existing models.",
	},
	{
		kind:       "methodological-evaluation",
		question:   `Evaluate the methodological implications of this limitation in {topic}: "{context}..." Which methodological approach would most effectively address this challenge?`,
		contextLen: 90,
		options: []string{
			"A mixed-methods design that triangulates findings through complementary quantitative and qualitative approaches.",
			"Exclusive reliance on quantitative methods with increased sample sizes to enhance statistical power.",
			"Abandoning empirical approaches in favor of purely theoretical analysis.",
			"Adopting a strictly qualitative approach that prioritizes depth over generalizability.",
		},
		explanation: "This approach addresses the methodological limitation by drawing on the strengths of multiple methods, allowing for triangulation of findings and a more comprehensive understanding of the phenomenon under study.",
		hint:        "Consider which approach leverages complementary strengths from different methodological traditions rather than doubling down on a single approach.",
	},
	{
		kind:       "conceptual-paradox",
		question:   `Resolve the following conceptual paradox in {topic}: "{context}..." Which resolution offers the most sophisticated theoretical understanding?`,
		contextLen: 80,
		options: []string{
			"The paradox emerges from conflation of different levels of analysis; distinguishing between micro and macro levels reveals complementary rather than contradictory processes.",
			"The paradox is merely semantic and disappears when terminology is standardized.",
			"One side of the paradox must be rejected entirely as it represents a fundamental misconception.",
			"The paradox is irresolvable and represents an inherent limitation in our understanding of {topic}.",
		},
		explanation: "This resolution demonstrates sophisticated theoretical understanding by identifying how apparent contradictions can emerge when phenomena are analyzed at different levels or from different perspectives, preserving valuable insights from seemingly contradictory principles.",
		hint:        "Look for a resolution that preserves insights from both sides of the paradox rather than simply rejecting one perspective.",
	},
	{
		kind:       "ethical-implications",
		question:   `Analyze the ethical implications raised by this aspect of {topic}: "{context}..." Which framework provides the most nuanced approach to addressing these ethical concerns?`,
		contextLen: 90,
		options: []string{
			"A pluralistic ethical framework that balances multiple principles while remaining sensitive to contextual factors and stakeholder perspectives.",
			"A strictly consequentialist approach that focuses exclusively on maximizing beneficial outcomes regardless of means.",
			"A deontological framework that applies universal rules without consideration of context-specific factors.",
			"Rejection of ethical analysis in favor of practical utility as the sole criterion for decision-making.",
		},
		explanation: "This framework acknowledges the complexity of ethical decision-making by considering multiple ethical principles, contextual factors, and diverse stakeholder perspectives rather than reducing ethics to a single principle or approach.",
		hint:        "The most sophisticated ethical frameworks acknowledge multiple values and principles rather than reducing ethics to a single consideration.",
	},
	{
		kind:       "complex-systems",
		question:   `How does this property of {topic}: "{context}..." exemplify complex systems principles? Which analysis most accurately captures its emergent characteristics?`,
		contextLen: 80,
		options: []string{
			"The property emerges from non-linear interactions between system components, creating patterns that cannot be predicted from analysis of individual elements alone.",
			"The property can be fully explained through reductionist analysis of individual system components without consideration of interactions.",
			"The property is an epiphenomenon with no causal significance for system behavior.",
			"The property represents random noise rather than meaningful patterns in system behavior.",
		},
		explanation: "This analysis correctly applies complex systems thinking by identifying how the property emerges from interactions between system components rather than being reducible to individual elements, highlighting the non-linear and emergent nature of complex systems.",
		hint:        "Consider which explanation acknowledges emergent properties and non-linear interactions rather than simple cause-effect relationships.",
	},
}

func (t mcqTemplate) build(topic, line string, rng *rand.Rand) model.QuizQuestion {
	r := strings.NewReplacer("{topic}", topic, "{context}", truncate(line, t.contextLen))
	options := make([]string, len(t.options))
	for i, o := range t.options {
		options[i] = r.Replace(o)
	}
	correct := options[0]
	rng.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})
	return model.QuizQuestion{
		Question:      r.Replace(t.question),
		Options:       options,
		CorrectAnswer: correct,
		Explanation:   r.Replace(t.explanation),
		Hint:          t.hint,
		Kind:          t.kind,
	}
}

// QuizFromContent builds up to 15 multiple-choice questions, one per long
// content line, each from a randomly chosen template with shuffled options.
func QuizFromContent(content, fileName string, rng *rand.Rand) []model.QuizQuestion {
	topic := analyzer.FileTitle(fileName)
	lines := analyzer.KeyPhrases(content)
	n := min(len(lines), maxQuizQuestions)

	questions := make([]model.QuizQuestion, 0, n)
	for _, line := range lines[:n] {
		tmpl := mcqTemplates[rng.IntN(len(mcqTemplates))]
		questions = append(questions, tmpl.build(topic, line, rng))
	}
	return questions
}

// FillMissingHints gives every question without a hint a generic one built
// from its first two options.
func FillMissingHints(questions []model.QuizQuestion) []model.QuizQuestion {
	out := make([]model.QuizQuestion, len(questions))
	for i, q := range questions {
		if q.Hint == "" {
			if len(q.Options) >= 2 {
				q.Hint = "Consider the relationship between " + q.Options[0] + " and " + q.Options[1] + " in context of the question."
			} else {
				q.Hint = "No hint available for this question."
			}
		}
		out[i] = q
	}
	return out
}

// SampleQuizzes returns the built-in quizzes available to every user.
func SampleQuizzes() []model.Quiz {
	return []model.Quiz{
		{
			ID: "builtin-biology", Title: "Biology Basics", Difficulty: model.DifficultyMedium, Builtin: true,
			Questions: []model.QuizQuestion{
				{
					Question:      "What is the powerhouse of the cell?",
					Options:       []string{"Nucleus", "Mitochondria", "Endoplasmic Reticulum", "Golgi Apparatus"},
					CorrectAnswer: "Mitochondria",
					Explanation:   "Mitochondria are organelles that generate most of the cell's supply of ATP (energy). They are often referred to as the powerhouse of the cell.",
					Hint:          "This organelle is responsible for producing cellular energy in the form of ATP.",
				},
				{
					Question:      "Which of these structures is NOT part of a neuron?",
					Options:       []string{"Axon", "Dendrite", "Nephron", "Cell body"},
					CorrectAnswer: "Nephron",
					Explanation:   "Nephron is the functional unit of the kidney, not a part of a neuron. The main parts of a neuron include the cell body, axon, and dendrites.",
					Hint:          "One of these terms is related to a different organ system entirely - the excretory system.",
				},
				{
					Question:      "What is the primary function of chloroplasts in plant cells?",
					Options:       []string{"Cellular respiration", "Protein synthesis", "Photosynthesis", "Cell division"},
					CorrectAnswer: "Photosynthesis",
					Explanation:   "Chloroplasts are organelles found in plant cells that contain chlorophyll and are responsible for photosynthesis, the process of converting light energy into chemical energy.",
					Hint:          "These structures contain chlorophyll and are involved in converting light energy into chemical energy.",
				},
			},
		},
		{
			ID: "builtin-chemistry", Title: "Chemistry Fundamentals", Difficulty: model.DifficultyHard, Builtin: true,
			Questions: []model.QuizQuestion{
				{
					Question:      "Which of the following is NOT a type of chemical bond?",
					Options:       []string{"Covalent bond", "Ionic bond", "Hydrogen bond", "Magnetic bond"},
					CorrectAnswer: "Magnetic bond",
					Explanation:   "Magnetic bond is not a type of chemical bond. The three main types of chemical bonds are covalent bonds, ionic bonds, and metallic bonds. Hydrogen bonds are a type of intermolecular force.",
					Hint:          "Think about forces between atoms - only certain types of interactions are considered true chemical bonds.",
				},
				{
					Question:      "What is the pH of a neutral solution at 25°C?",
					Options:       []string{"0", "7", "14", "10"},
					CorrectAnswer: "7",
					Explanation:   "A neutral solution has a pH of 7. Solutions with pH less than 7 are acidic, and those with pH greater than 7 are basic or alkaline.",
					Hint:          "This value sits in the middle of the pH scale from 0 to 14.",
				},
				{
					Question:      "Which element has the symbol 'Au' in the periodic table?",
					Options:       []string{"Silver", "Gold", "Aluminum", "Argon"},
					CorrectAnswer: "Gold",
					Explanation:   "The element Gold has the symbol 'Au' in the periodic table, derived from its Latin name 'Aurum'.",
					Hint:          "This element is a precious metal often used in jewelry and currency.",
				},
			},
		},
		{
			ID: "builtin-history", Title: "World History", Difficulty: model.DifficultyEasy, Builtin: true,
			Questions: []model.QuizQuestion{
				{
					Question:      "In which year did World War II end?",
					Options:       []string{"1943", "1944", "1945", "1946"},
					CorrectAnswer: "1945",
					Explanation:   "World War II ended in 1945, with Nazi Germany surrendering in May and Japan surrendering in September after the atomic bombings of Hiroshima and Nagasaki.",
					Hint:          "This was after the atomic bombs were used and Nazi Germany had already surrendered.",
				},
				{
					Question:      "Which empire was ruled by Genghis Khan?",
					Options:       []string{"Roman Empire", "Mongol Empire", "Ottoman Empire", "Byzantine Empire"},
					CorrectAnswer: "Mongol Empire",
					Explanation:   "Genghis Khan was the founder and first Great Khan of the Mongol Empire, which became the largest contiguous empire in history after his death.",
					Hint:          "This nomadic leader united tribes from Central Asia to create one of history's largest empires.",
				},
				{
					Question:      "Which ancient civilization built the Machu Picchu complex in Peru?",
					Options:       []string{"Maya", "Aztec", "Inca", "Olmec"},
					CorrectAnswer: "Inca",
					Explanation:   "Machu Picchu was built by the Inca civilization in the 15th century and is often referred to as the 'Lost City of the Incas'.",
					Hint:          "This civilization was based in the Andean region and was the largest empire in pre-Columbian America.",
				},
			},
		},
	}
}
