package i18n

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

var jsonUnmarshal = json.Unmarshal

//go:embed locales/*.json
var localeFS embed.FS

type ctxKey struct{}

var (
	bundle *i18n.Bundle
	// byText maps default-language message text to its ID, for callers
	// that hold English UI text rather than a message ID.
	byText map[string]string
	loaded []string
)

// Init loads the translation bundle for the given language tag.
func Init(lang string) error {
	tag, err := language.Parse(lang)
	if err != nil {
		return fmt.Errorf("parse language %q: %w", lang, err)
	}

	bundle = i18n.NewBundle(tag)
	bundle.RegisterUnmarshalFunc("json", jsonUnmarshal)

	// Load all locale files from embedded FS.
	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		return fmt.Errorf("read locales dir: %w", err)
	}
	byText = make(map[string]string)
	loaded = loaded[:0]
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		data, err := localeFS.ReadFile("locales/" + e.Name())
		if err != nil {
			return fmt.Errorf("read locale file %s: %w", e.Name(), err)
		}
		bundle.MustParseMessageFileBytes(data, e.Name())
		code := strings.TrimSuffix(e.Name(), ".json")
		loaded = append(loaded, code)
		if code == "en" {
			if err := indexText(data); err != nil {
				return fmt.Errorf("index %s: %w", e.Name(), err)
			}
		}
		slog.Debug("loaded locale file", "file", e.Name())
	}
	slog.Info("loaded locales", "count", len(loaded), "default", tag.String())

	return nil
}

func indexText(data []byte) error {
	var raw map[string]any
	if err := jsonUnmarshal(data, &raw); err != nil {
		return err
	}
	for id, v := range raw {
		if text, ok := v.(string); ok {
			byText[text] = id
		}
	}
	return nil
}

// Languages returns the codes of all loaded locales.
func Languages() []string {
	return slices.Clone(loaded)
}

// Supported reports whether a locale file exists for lang.
func Supported(lang string) bool {
	return slices.Contains(loaded, lang)
}

// Lookup translates English UI text into lang. It reports false when the
// text is not a known message or lang has no translation for it.
func Lookup(lang, text string) (string, bool) {
	id, ok := byText[text]
	if !ok || bundle == nil {
		return "", false
	}
	s, tag, err := i18n.NewLocalizer(bundle, lang).LocalizeWithTag(&i18n.LocalizeConfig{MessageID: id})
	if err != nil {
		return "", false
	}
	if base, _ := tag.Base(); base.String() != lang && lang != "en" {
		return "", false
	}
	return s, true
}

// NewLocalizer creates a localizer for the given languages, in preference order.
func NewLocalizer(langs ...string) *i18n.Localizer {
	return i18n.NewLocalizer(bundle, langs...)
}

// WithLocalizer stores a localizer in the context.
func WithLocalizer(ctx context.Context, loc *i18n.Localizer) context.Context {
	return context.WithValue(ctx, ctxKey{}, loc)
}

// localizerFromCtx retrieves the localizer from context.
func localizerFromCtx(ctx context.Context) *i18n.Localizer {
	if loc, ok := ctx.Value(ctxKey{}).(*i18n.Localizer); ok {
		return loc
	}
	return i18n.NewLocalizer(bundle, fallbackLang)
}

// fallbackLang has every message ID; other locales may be partial.
const fallbackLang = "en"

// localize renders lc with the context's localizer. A message the matched
// locale lacks is rendered in English; an unknown ID is returned as-is.
func localize(ctx context.Context, lc *i18n.LocalizeConfig) string {
	s, err := localizerFromCtx(ctx).Localize(lc)
	if err == nil {
		return s
	}
	var notFound *i18n.MessageNotFoundErr
	if errors.As(err, &notFound) {
		if s != "" {
			return s
		}
		if s, err = i18n.NewLocalizer(bundle, fallbackLang).Localize(lc); err == nil {
			return s
		}
	}
	slog.Warn("missing translation", "id", lc.MessageID, "error", err)
	return lc.MessageID
}

// T translates a message by ID.
func T(ctx context.Context, msgID string) string {
	return localize(ctx, &i18n.LocalizeConfig{MessageID: msgID})
}

// Td translates a message by ID with template data.
func Td(ctx context.Context, msgID string, data map[string]any) string {
	return localize(ctx, &i18n.LocalizeConfig{
		MessageID:    msgID,
		TemplateData: data,
	})
}

// Tp translates a pluralized message by ID.
func Tp(ctx context.Context, msgID string, count int) string {
	return localize(ctx, &i18n.LocalizeConfig{
		MessageID:    msgID,
		PluralCount:  count,
		TemplateData: map[string]any{"Count": count},
	})
}
