package synth

import (
	"fmt"
	"math/rand/v2"
	"strings"
)

var summarySubjects = []string{
	"Computer Science",
	"Economics",
	"Biology",
	"Psychology",
	"History",
	"Chemistry",
	"Physics",
	"Literature",
}

const summaryBody = `### Key Concepts:

The documents cover fundamental concepts in %s. The material is organized into several main sections:

1. **Introduction to the Subject**
   - Definition and scope of the field
   - Historical context and development
   - Key figures and their contributions

2. **Core Theoretical Frameworks**
   - Primary models and theories
   - Comparative analysis of different approaches
   - Recent developments and current consensus

3. **Practical Applications**
   - Real-world examples and case studies
   - Methodological considerations
   - Best practices and implementation guidelines

### Important Points:

- The field has evolved significantly over the past decades, with several paradigm shifts
- Current research focuses on integrating traditional approaches with new technological advancements
- Multiple perspectives exist on key issues, with ongoing debates among experts
- Practical applications require careful consideration of context and specific variables

### Recommended Focus Areas:

Based on the content complexity, special attention should be given to:
- Understanding the theoretical foundations before moving to applications
- Exploring the interconnections between different concepts
- Recognizing common misconceptions and how to avoid them

This summary represents approximately %d%% of the original content, focusing on core concepts and key information.`

// MockSummary renders the markdown summary shown after an upload. The subject
// and coverage percentage are drawn from rng.
func MockSummary(fileNames []string, rng *rand.Rand) string {
	plural := ""
	if len(fileNames) > 1 {
		plural = "s"
	}
	subject := summarySubjects[rng.IntN(len(summarySubjects))]
	coverage := rng.IntN(20) + 10

	header := fmt.Sprintf("## Summary of %d document%s: %s\n\n", len(fileNames), plural, strings.Join(fileNames, ", "))
	return header + fmt.Sprintf(summaryBody, subject, coverage)
}
