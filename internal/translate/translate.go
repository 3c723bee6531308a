// Package translate is a mock content translator. Known UI strings come from
// the i18n catalogue; everything else is translated phrase by phrase from
// small embedded per-language tables, keeping markdown structure intact.
package translate

import (
	"cmp"
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"slices"
	"strings"
	"time"
)

//go:embed phrases/*.json
var phraseFS embed.FS

// DefaultDelay is the simulated latency of a translation call.
const DefaultDelay = 100 * time.Millisecond

// LookupFunc resolves whole UI strings, reporting false when text is unknown.
type LookupFunc func(lang, text string) (string, bool)

type phrase struct {
	re *regexp.Regexp
	to string
}

type table struct {
	direct  map[string]string
	phrases []phrase // longest source phrase first
}

// Translator translates text into the languages it has phrase tables for.
// It is safe for concurrent use.
type Translator struct {
	delay  time.Duration
	lookup LookupFunc
	tables map[string]*table
}

// Option configures a Translator.
type Option func(*Translator)

// WithDelay sets the simulated latency. Zero disables it.
func WithDelay(d time.Duration) Option {
	return func(t *Translator) { t.delay = d }
}

// WithLookup sets the UI-string lookup consulted before the phrase tables.
func WithLookup(fn LookupFunc) Option {
	return func(t *Translator) { t.lookup = fn }
}

// New loads the embedded phrase tables.
func New(opts ...Option) (*Translator, error) {
	t := &Translator{
		delay:  DefaultDelay,
		tables: make(map[string]*table),
	}
	for _, o := range opts {
		o(t)
	}

	entries, err := phraseFS.ReadDir("phrases")
	if err != nil {
		return nil, fmt.Errorf("read phrases dir: %w", err)
	}
	for _, e := range entries {
		data, err := phraseFS.ReadFile("phrases/" + e.Name())
		if err != nil {
			return nil, fmt.Errorf("read phrase file %s: %w", e.Name(), err)
		}
		var raw map[string]string
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parse phrase file %s: %w", e.Name(), err)
		}
		t.tables[strings.TrimSuffix(e.Name(), ".json")] = newTable(raw)
	}
	return t, nil
}

func newTable(raw map[string]string) *table {
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b string) int {
		if c := cmp.Compare(len(b), len(a)); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	})

	tb := &table{direct: raw}
	for _, k := range keys {
		tb.phrases = append(tb.phrases, phrase{
			re: regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(k) + `\b`),
			to: raw[k],
		})
	}
	return tb
}

// Languages returns the languages with a phrase table, sorted.
func (t *Translator) Languages() []string {
	langs := make([]string, 0, len(t.tables))
	for l := range t.tables {
		langs = append(langs, l)
	}
	slices.Sort(langs)
	return langs
}

// Text translates text into lang. English and empty text pass through.
// When ctx is cancelled during the simulated call, ctx.Err() is returned and
// the result is dropped.
func (t *Translator) Text(ctx context.Context, text, lang string) (string, error) {
	if text == "" {
		return text, nil
	}
	if s, ok := t.lookupText(lang, text); ok {
		return s, nil
	}
	if lang == "en" {
		return text, nil
	}
	if err := t.wait(ctx); err != nil {
		return "", err
	}
	slog.Debug("translating text", "lang", lang, "bytes", len(text))
	return t.translate(text, lang), nil
}

// Document translates a markdown document paragraph by paragraph. Paragraphs
// that are known UI strings are replaced whole.
func (t *Translator) Document(ctx context.Context, doc, lang string) (string, error) {
	if doc == "" || lang == "en" {
		return doc, nil
	}
	if err := t.wait(ctx); err != nil {
		return "", err
	}
	paras := strings.Split(doc, "\n\n")
	for i, p := range paras {
		if s, ok := t.lookupText(lang, p); ok {
			paras[i] = s
			continue
		}
		paras[i] = t.translate(p, lang)
	}
	slog.Debug("translated document", "lang", lang, "paragraphs", len(paras))
	return strings.Join(paras, "\n\n"), nil
}

func (t *Translator) lookupText(lang, text string) (string, bool) {
	if t.lookup == nil {
		return "", false
	}
	return t.lookup(lang, text)
}

func (t *Translator) wait(ctx context.Context) error {
	if t.delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(t.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (t *Translator) translate(text, lang string) string {
	if !strings.ContainsAny(text, "\n#-") {
		return t.Line(text, lang)
	}
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = t.Line(l, lang)
	}
	return strings.Join(lines, "\n")
}

var bulletRe = regexp.MustCompile(`^(-|\d+\.)\s+(.*)`)

// Line translates a single line, keeping a leading header marker or list
// bullet in place. Languages without a phrase table pass through.
func (t *Translator) Line(line, lang string) string {
	tb, ok := t.tables[lang]
	if !ok {
		return line
	}

	if strings.HasPrefix(line, "#") {
		level, text, found := strings.Cut(line, " ")
		if !found {
			return line
		}
		return level + " " + tb.apply(text)
	}

	if m := bulletRe.FindStringSubmatch(line); m != nil {
		return m[1] + " " + tb.apply(m[2])
	}

	return tb.apply(line)
}

func (tb *table) apply(text string) string {
	if s, ok := tb.direct[text]; ok {
		return s
	}
	for _, p := range tb.phrases {
		text = p.re.ReplaceAllLiteralString(text, p.to)
	}
	return text
}
