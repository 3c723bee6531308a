// Package speech is a small client for an ElevenLabs-compatible
// text-to-speech API.
package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const (
	DefaultBaseURL = "https://api.elevenlabs.io"
	ModelID        = "eleven_multilingual_v2"
	// MinKeyLength is the shortest API key accepted before asking upstream.
	MinKeyLength = 32
	DefaultVoice = "female1"

	maxAudioBytes = 20 << 20
)

var (
	ErrMissingKey      = errors.New("speech: no API key configured")
	ErrKeyTooShort     = errors.New("speech: API key too short")
	ErrInvalidKey      = errors.New("speech: API key rejected")
	ErrUnusualActivity = errors.New("speech: unusual activity detected on account")
	ErrEmptyText       = errors.New("speech: nothing to say")
)

// StatusError is returned for upstream failures other than authorization.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("speech: upstream status %d", e.Code)
}

var voices = map[string]string{
	"female1": "EXAVITQu4vr4xnSDxMaL",
	"male1":   "TxGEqnHWrfWFTfGW9XjX",
	"female2": "pFZP5JQG7iQjIQuC4Bku",
	"male2":   "onwK4e9ZLuTAKqWW03F9",
}

// VoiceID resolves a voice alias. Unknown aliases get the default voice.
func VoiceID(alias string) string {
	if id, ok := voices[alias]; ok {
		return id
	}
	return voices[DefaultVoice]
}

// Voices returns the known voice aliases.
func Voices() []string {
	return []string{"female1", "male1", "female2", "male2"}
}

// Client calls the speech API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a client for baseURL. A nil httpClient gets a 30 second timeout.
func New(baseURL string, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// ValidateKey checks key locally for length and then against the voices
// endpoint.
func (c *Client) ValidateKey(ctx context.Context, key string) error {
	key = strings.TrimSpace(key)
	if len(key) < MinKeyLength {
		return ErrKeyTooShort
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/voices", nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("xi-api-key", key)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("validate key: %w", err)
	}
	defer resp.Body.Close()
	if err := checkStatus(resp); err != nil {
		return err
	}
	io.Copy(io.Discard, resp.Body)
	return nil
}

type voiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

type synthesizeRequest struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id"`
	VoiceSettings voiceSettings `json:"voice_settings"`
}

// Synthesize turns text into MPEG audio spoken by the given voice alias.
// The text is cleaned of markdown punctuation first.
func (c *Client) Synthesize(ctx context.Context, key, voice, text string) ([]byte, error) {
	if key == "" {
		return nil, ErrMissingKey
	}
	text = CleanText(text)
	if text == "" {
		return nil, ErrEmptyText
	}

	body, err := json.Marshal(synthesizeRequest{
		Text:          text,
		ModelID:       ModelID,
		VoiceSettings: voiceSettings{Stability: 0.5, SimilarityBoost: 0.5},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	voiceID := VoiceID(voice)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/text-to-speech/"+voiceID, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")
	req.Header.Set("xi-api-key", key)

	slog.Debug("synthesizing speech", "voice", voiceID, "chars", len(text))
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("synthesize: %w", err)
	}
	defer resp.Body.Close()
	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	audio, err := io.ReadAll(io.LimitReader(resp.Body, maxAudioBytes))
	if err != nil {
		return nil, fmt.Errorf("read audio: %w", err)
	}
	return audio, nil
}

type errorBody struct {
	Detail json.RawMessage `json:"detail"`
}

type errorDetail struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		var eb errorBody
		var d errorDetail
		if json.Unmarshal(raw, &eb) == nil && json.Unmarshal(eb.Detail, &d) == nil &&
			d.Status == "detected_unusual_activity" {
			return ErrUnusualActivity
		}
		return ErrInvalidKey
	}
	slog.Warn("speech api error", "status", resp.StatusCode, "body", truncate(string(raw), 200))
	return &StatusError{Code: resp.StatusCode}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// CleanText replaces markdown and punctuation characters with spaces and
// collapses whitespace, so the voice does not read them aloud.
func CleanText(s string) string {
	s = strings.Map(func(r rune) rune {
		switch r {
		case '#', ',', '.', ':', ';', '-', '*':
			return ' '
		}
		return r
	}, s)
	return strings.Join(strings.Fields(s), " ")
}
