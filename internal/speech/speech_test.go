package speech

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var validKey = strings.Repeat("k", MinKeyLength)

func TestCleanText(t *testing.T) {
	tests := []struct {
		name, in, want string
	}{
		{"markdown", "## Key Concepts:\n- **cells**; nuclei.", "Key Concepts cells nuclei"},
		{"commas", "a, b,c", "a b c"},
		{"only punctuation", "#-*.", ""},
		{"plain", "hello world", "hello world"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanText(tt.in))
		})
	}
}

func TestVoiceID(t *testing.T) {
	assert.Equal(t, "TxGEqnHWrfWFTfGW9XjX", VoiceID("male1"))
	assert.Equal(t, "onwK4e9ZLuTAKqWW03F9", VoiceID("male2"))
	assert.Equal(t, "EXAVITQu4vr4xnSDxMaL", VoiceID("nobody"))
	for _, v := range Voices() {
		assert.NotEmpty(t, voices[v])
	}
}

func TestValidateKey(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		status  int
		body    string
		wantErr error
	}{
		{"ok", validKey, http.StatusOK, `{"voices":[]}`, nil},
		{"too short", "short", http.StatusOK, "", ErrKeyTooShort},
		{"padded short key", "   " + validKey[:10] + "   ", http.StatusOK, "", ErrKeyTooShort},
		{"rejected", validKey, http.StatusUnauthorized, `{"detail":{"status":"invalid_api_key"}}`, ErrInvalidKey},
		{"unusual activity", validKey, http.StatusUnauthorized, `{"detail":{"status":"detected_unusual_activity","message":"x"}}`, ErrUnusualActivity},
		{"string detail", validKey, http.StatusUnauthorized, `{"detail":"nope"}`, ErrInvalidKey},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls++
				assert.Equal(t, "/v1/voices", r.URL.Path)
				assert.Equal(t, tt.key, r.Header.Get("xi-api-key"))
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			err := New(srv.URL, nil).ValidateKey(context.Background(), tt.key)
			if tt.wantErr == nil {
				require.NoError(t, err)
			} else {
				require.ErrorIs(t, err, tt.wantErr)
			}
			if tt.wantErr == ErrKeyTooShort {
				assert.Zero(t, calls, "short keys never reach upstream")
			}
		})
	}
}

func TestValidateKeyServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	err := New(srv.URL, nil).ValidateKey(context.Background(), validKey)
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusBadGateway, se.Code)
}

func TestSynthesize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/text-to-speech/pFZP5JQG7iQjIQuC4Bku", r.URL.Path)
		assert.Equal(t, validKey, r.Header.Get("xi-api-key"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req synthesizeRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "The cell is alive", req.Text)
		assert.Equal(t, "eleven_multilingual_v2", req.ModelID)
		assert.Equal(t, 0.5, req.VoiceSettings.Stability)
		assert.Equal(t, 0.5, req.VoiceSettings.SimilarityBoost)

		w.Header().Set("Content-Type", "audio/mpeg")
		w.Write([]byte("ID3audio"))
	}))
	defer srv.Close()

	audio, err := New(srv.URL+"/", nil).Synthesize(context.Background(), validKey, "female2", "# The cell, is alive.")
	require.NoError(t, err)
	assert.Equal(t, []byte("ID3audio"), audio)
}

func TestSynthesizeErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail":{"status":"detected_unusual_activity"}}`))
	}))
	defer srv.Close()
	c := New(srv.URL, nil)

	_, err := c.Synthesize(context.Background(), "", "female1", "hello")
	require.ErrorIs(t, err, ErrMissingKey)

	_, err = c.Synthesize(context.Background(), validKey, "female1", "#.,")
	require.ErrorIs(t, err, ErrEmptyText)

	_, err = c.Synthesize(context.Background(), validKey, "female1", "hello")
	require.ErrorIs(t, err, ErrUnusualActivity)
}

func TestSynthesizeCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := New(srv.URL, nil).Synthesize(ctx, validKey, "male1", "hello")
	require.ErrorIs(t, err, context.DeadlineExceeded)
}
