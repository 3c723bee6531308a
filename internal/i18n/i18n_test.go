package i18n

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func initLang(t *testing.T, lang string) context.Context {
	t.Helper()
	if err := Init("en"); err != nil {
		t.Fatalf("Init: %v", err)
	}
	loc := NewLocalizer(lang)
	return WithLocalizer(context.Background(), loc)
}

func TestTranslateEnglish(t *testing.T) {
	ctx := initLang(t, "en")

	got := T(ctx, "AppTitle")
	if got != "StudyGenius" {
		t.Errorf("T(AppTitle) = %q, want 'StudyGenius'", got)
	}

	got = T(ctx, "SmartNotes")
	if got != "Smart Notes" {
		t.Errorf("T(SmartNotes) = %q, want 'Smart Notes'", got)
	}
}

func TestTranslateFrench(t *testing.T) {
	ctx := initLang(t, "fr")

	got := T(ctx, "Settings")
	if got != "Paramètres" {
		t.Errorf("T(Settings) = %q, want 'Paramètres'", got)
	}

	got = T(ctx, "FeedbackCorrect")
	if got != "Correct ! Votre réponse contient les concepts clés." {
		t.Errorf("T(FeedbackCorrect) = %q", got)
	}
}

func TestFallbackToDefault(t *testing.T) {
	ctx := initLang(t, "ja")

	got := T(ctx, "NoMoreHints")
	if got != "No more hints available for this question." {
		t.Errorf("T(NoMoreHints) = %q, want English fallback", got)
	}
}

func TestFallbackWithNonEnglishDefault(t *testing.T) {
	if err := Init("hi"); err != nil {
		t.Fatalf("Init: %v", err)
	}
	ctx := WithLocalizer(context.Background(), NewLocalizer("ja", "hi"))

	if got := T(ctx, "ErrNotFound"); got != "Not found." {
		t.Errorf("T(ErrNotFound) = %q, want English fallback", got)
	}
	if got := Td(ctx, "ExamFeedbackCorrect", map[string]any{"Points": 7}); got != "Correct! You earned 7 points." {
		t.Errorf("Td(ExamFeedbackCorrect) = %q", got)
	}
	if got := Tp(ctx, "FilesProcessed", 2); got != "2 files processed." {
		t.Errorf("Tp(FilesProcessed, 2) = %q", got)
	}
	if got := T(ctx, "Settings"); got != "設定" {
		t.Errorf("T(Settings) = %q, want Japanese", got)
	}
}

func TestCompleteLocales(t *testing.T) {
	initLang(t, "en")

	var en map[string]any
	data, err := localeFS.ReadFile("locales/en.json")
	if err != nil {
		t.Fatal(err)
	}
	if err := jsonUnmarshal(data, &en); err != nil {
		t.Fatal(err)
	}
	for _, lang := range []string{"fr", "de"} {
		var msgs map[string]any
		data, err := localeFS.ReadFile("locales/" + lang + ".json")
		if err != nil {
			t.Fatal(err)
		}
		if err := jsonUnmarshal(data, &msgs); err != nil {
			t.Fatal(err)
		}
		for id := range en {
			if _, ok := msgs[id]; !ok {
				t.Errorf("%s.json lacks %s", lang, id)
			}
		}
	}
}

func TestPluralTranslation(t *testing.T) {
	ctx := initLang(t, "en")

	got1 := Tp(ctx, "QuestionsAvailable", 1)
	if got1 != "1 question available." {
		t.Errorf("Tp(QuestionsAvailable, 1) = %q, want '1 question available.'", got1)
	}

	got5 := Tp(ctx, "QuestionsAvailable", 5)
	if got5 != "5 questions available." {
		t.Errorf("Tp(QuestionsAvailable, 5) = %q, want '5 questions available.'", got5)
	}
}

func TestTemplateDataTranslation(t *testing.T) {
	ctx := initLang(t, "en")

	got := Td(ctx, "ExamFeedbackPartial", map[string]any{"Points": 42})
	if got != "Partial credit! You earned 42 points." {
		t.Errorf("Td(ExamFeedbackPartial) = %q", got)
	}
}

func TestMissingKey(t *testing.T) {
	ctx := initLang(t, "en")

	got := T(ctx, "NonExistentKey")
	if got != "NonExistentKey" {
		t.Errorf("T(NonExistentKey) = %q, want 'NonExistentKey'", got)
	}
}

func TestLookup(t *testing.T) {
	initLang(t, "en")

	tests := []struct {
		lang, text string
		want       string
		ok         bool
	}{
		{"fr", "Dashboard", "Tableau de bord", true},
		{"de", "Upload Content", "Inhalt hochladen", true},
		{"hi", "Settings", "सेटिंग्स", true},
		{"en", "Flashcards", "Flashcards", true},
		{"ja", "Time's up! Your answer has been submitted.", "", false},
		{"fr", "not a known message", "", false},
	}
	for _, tt := range tests {
		got, ok := Lookup(tt.lang, tt.text)
		if ok != tt.ok || got != tt.want {
			t.Errorf("Lookup(%q, %q) = %q, %v; want %q, %v", tt.lang, tt.text, got, ok, tt.want, tt.ok)
		}
	}
}

func TestSupported(t *testing.T) {
	initLang(t, "en")

	for _, lang := range []string{"en", "fr", "de", "ja", "ar", "hi", "kn", "te", "ta"} {
		if !Supported(lang) {
			t.Errorf("Supported(%q) = false", lang)
		}
	}
	if Supported("xx") {
		t.Error("Supported(xx) = true")
	}
}

func TestMiddlewareAcceptLanguage(t *testing.T) {
	initLang(t, "en")

	var got string
	h := Middleware("en")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = T(r.Context(), "Settings")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Language", "de-DE,de;q=0.9")
	h.ServeHTTP(httptest.NewRecorder(), req)
	if got != "Einstellungen" {
		t.Errorf("with Accept-Language de: %q, want 'Einstellungen'", got)
	}

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if got != "Settings" {
		t.Errorf("without header: %q, want 'Settings'", got)
	}
}
