package prompts

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"regexp"
	"strings"
	"sync"
	"text/template"
	"unicode/utf8"
)

//go:embed templates/*.txt
var templateFS embed.FS

// FS returns the embedded prompt templates.
func FS() fs.FS {
	return templateFS
}

var (
	documentTagRegex        = regexp.MustCompile(`(?i)</?\s*document\b[^>]*>`)
	systemInstructionsRegex = regexp.MustCompile(`(?i)</?\s*system-instructions\b[^>]*>`)
)

// maxContentRunes bounds the material sent in one prompt.
const maxContentRunes = 12000

// Variant represents a summary prompt variant.
type Variant string

const (
	// VariantBrief asks for a handful of bullet points.
	VariantBrief Variant = "brief"
	// VariantStandard mirrors the layout of the built-in mock summary.
	VariantStandard Variant = "standard"
	// VariantDetailed asks for a revision guide.
	VariantDetailed Variant = "detailed"
)

var validVariants = map[Variant]bool{
	VariantBrief:    true,
	VariantStandard: true,
	VariantDetailed: true,
}

var (
	loadOnce         sync.Once
	loadErr          error
	summaryTemplates map[Variant]*template.Template
)

// IsValidVariant checks if a prompt variant name is valid.
func IsValidVariant(v string) bool {
	return validVariants[Variant(v)]
}

// SummaryData holds template data for summary prompts.
type SummaryData struct {
	FileNames []string
	Language  string
	Content   string
}

var funcs = template.FuncMap{"join": strings.Join}

// Load loads prompt templates from fsys.
// It uses sync.Once to ensure templates are loaded only once.
func Load(fsys fs.FS) error {
	loadOnce.Do(func() {
		summaryTemplates = make(map[Variant]*template.Template)

		for _, v := range []Variant{VariantBrief, VariantStandard, VariantDetailed} {
			file := "templates/summary_" + string(v) + ".txt"

			content, err := fs.ReadFile(fsys, file)
			if err != nil {
				loadErr = errors.New("failed to read prompt file " + file + ": " + err.Error())
				return
			}

			tmpl, err := template.New("summary").Funcs(funcs).Parse(string(content))
			if err != nil {
				loadErr = errors.New("failed to parse prompt template " + file + ": " + err.Error())
				return
			}
			summaryTemplates[v] = tmpl
		}
	})
	return loadErr
}

// BuildSummaryPrompt builds a summary prompt using the specified variant.
func BuildSummaryPrompt(variant Variant, data SummaryData) (string, error) {
	if summaryTemplates == nil {
		return "", errors.New("templates not initialized: call Load first")
	}
	tmpl, ok := summaryTemplates[variant]
	if !ok {
		if loadErr != nil {
			return "", fmt.Errorf("templates load failed: %w", loadErr)
		}
		return "", errors.New("invalid prompt variant: " + string(variant))
	}

	data.Content = sanitizeContent(data.Content)

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func sanitizeContent(content string) string {
	content = documentTagRegex.ReplaceAllString(content, "")
	content = systemInstructionsRegex.ReplaceAllString(content, "")
	content = strings.TrimSpace(content)

	if content == "" {
		return "[No content provided]"
	}

	if utf8.RuneCountInString(content) > maxContentRunes {
		runes := []rune(content)
		content = string(runes[:maxContentRunes]) + "\n\n[Content truncated due to length]"
	}

	return content
}
