package store

import (
	"database/sql"
	"log/slog"
	"strconv"

	"github.com/pavelanni/studygenius/internal/model"
)

// Setting keys.
const (
	SettingLanguage      = "language"
	SettingAutoTranslate = "auto_translate"
	SettingTheme         = "theme"
	SettingVoice         = "voice"
	SettingVolume        = "volume"
	SettingSpeechRate    = "speech_rate"
	SettingAPIKey        = "api_key"
)

// SetSetting upserts one preference of a user.
func (s *Store) SetSetting(userID int64, key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO settings (user_id, key, value) VALUES (?, ?, ?)
		 ON CONFLICT(user_id, key) DO UPDATE SET value = ?`,
		userID, key, value, value,
	)
	return err
}

// GetSetting returns the value for a preference.
// Returns empty string and nil error if the key is missing.
func (s *Store) GetSetting(userID int64, key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE user_id = ? AND key = ?`, userID, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

// SaveSettings stores every field of st.
func (s *Store) SaveSettings(userID int64, st model.Settings) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	pairs := []struct{ k, v string }{
		{SettingLanguage, st.Language},
		{SettingAutoTranslate, strconv.FormatBool(st.AutoTranslate)},
		{SettingTheme, string(st.Theme)},
		{SettingVoice, st.Voice},
		{SettingVolume, strconv.Itoa(st.Volume)},
		{SettingSpeechRate, strconv.FormatFloat(st.SpeechRate, 'f', -1, 64)},
		{SettingAPIKey, st.APIKey},
	}
	for _, p := range pairs {
		if _, err := tx.Exec(
			`INSERT INTO settings (user_id, key, value) VALUES (?, ?, ?)
			 ON CONFLICT(user_id, key) DO UPDATE SET value = ?`,
			userID, p.k, p.v, p.v,
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// GetSettings reads a user's preferences. Missing or malformed values fall
// back to model.DefaultSettings; malformed ones are logged.
func (s *Store) GetSettings(userID int64) (model.Settings, error) {
	st := model.DefaultSettings()
	rows, err := s.db.Query(`SELECT key, value FROM settings WHERE user_id = ?`, userID)
	if err != nil {
		return st, err
	}
	defer rows.Close()

	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return st, err
		}
		if !applySetting(&st, key, value) {
			slog.Warn("ignoring malformed setting", "user_id", userID, "key", key, "value", value)
		}
	}
	return st, rows.Err()
}

// applySetting parses value into st and reports whether it was valid.
func applySetting(st *model.Settings, key, value string) bool {
	switch key {
	case SettingLanguage:
		if !model.IsSupportedLanguage(value) {
			return false
		}
		st.Language = value
	case SettingAutoTranslate:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return false
		}
		st.AutoTranslate = b
	case SettingTheme:
		switch t := model.Theme(value); t {
		case model.ThemeLight, model.ThemeDark, model.ThemeSystem:
			st.Theme = t
		default:
			return false
		}
	case SettingVoice:
		if value == "" {
			return false
		}
		st.Voice = value
	case SettingVolume:
		v, err := strconv.Atoi(value)
		if err != nil || v < 0 || v > 100 {
			return false
		}
		st.Volume = v
	case SettingSpeechRate:
		r, err := strconv.ParseFloat(value, 64)
		if err != nil || r <= 0 {
			return false
		}
		st.SpeechRate = r
	case SettingAPIKey:
		st.APIKey = value
	}
	return true
}
