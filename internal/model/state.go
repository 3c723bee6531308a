package model

// Stats is the per-user progress document. Version increases by one on every
// successful write.
type Stats struct {
	Version           int64 `json:"version"`
	MaterialsUploaded int   `json:"materials_uploaded"`
	FlashcardSets     int   `json:"flashcard_sets"`
	QuizzesTaken      int   `json:"quizzes_taken"`
	SmartNotes        int   `json:"smart_notes"`
}

// Total is the sum of all counters.
func (s Stats) Total() int {
	return s.MaterialsUploaded + s.FlashcardSets + s.QuizzesTaken + s.SmartNotes
}

// OverallProgress is the learning progress percentage, where 20 items count as 100%.
func (s Stats) OverallProgress() int {
	p := s.Total() * 100 / 20
	if p > 100 {
		return 100
	}
	if p < 0 {
		return 0
	}
	return p
}

// Theme is the UI color scheme.
type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)

// Settings holds the user preferences.
type Settings struct {
	Language      string  `json:"language"`
	AutoTranslate bool    `json:"auto_translate"`
	Theme         Theme   `json:"theme"`
	Voice         string  `json:"voice"`
	Volume        int     `json:"volume"`
	SpeechRate    float64 `json:"speech_rate"`
	APIKey        string  `json:"api_key,omitempty"`
}

// DefaultSettings returns the preferences used when nothing is stored.
func DefaultSettings() Settings {
	return Settings{
		Language:   "en",
		Theme:      ThemeLight,
		Voice:      "female1",
		Volume:     80,
		SpeechRate: 1.0,
	}
}

// Languages lists the supported UI/translation languages.
var Languages = []struct {
	Code string `json:"code"`
	Name string `json:"name"`
}{
	{"en", "English"},
	{"fr", "French"},
	{"de", "German"},
	{"ja", "Japanese"},
	{"ar", "Arabic"},
	{"hi", "Hindi"},
	{"kn", "Kannada"},
	{"te", "Telugu"},
	{"ta", "Tamil"},
}

// IsSupportedLanguage reports whether code is one of Languages.
func IsSupportedLanguage(code string) bool {
	for _, l := range Languages {
		if l.Code == code {
			return true
		}
	}
	return false
}
