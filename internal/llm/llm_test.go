package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pavelanni/studygenius/internal/llm/prompts"
)

func TestParseSummary(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		want     string
		coverage int
		wantErr  bool
	}{
		{"plain", `{"summary": "## Summary of 1 document", "coverage": 20}`, "## Summary of 1 document", 20, false},
		{"trimmed", `{"summary": "  text \n", "coverage": 5}`, "text", 5, false},
		{"coverage clamped high", `{"summary": "x", "coverage": 250}`, "x", 100, false},
		{"coverage clamped low", `{"summary": "x", "coverage": -3}`, "x", 0, false},
		{"empty summary", `{"summary": "   "}`, "", 0, true},
		{"not json", `Here is your summary`, "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseSummary(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("parseSummary(%q) expected error", tt.raw)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseSummary(%q): %v", tt.raw, err)
			}
			if got.Summary != tt.want {
				t.Errorf("Summary = %q, want %q", got.Summary, tt.want)
			}
			if got.Coverage != tt.coverage {
				t.Errorf("Coverage = %d, want %d", got.Coverage, tt.coverage)
			}
		})
	}
}

func TestParseSummaryEmptyIsSentinel(t *testing.T) {
	_, err := parseSummary(`{"summary": ""}`)
	if !errors.Is(err, ErrEmptySummary) {
		t.Errorf("err = %v, want ErrEmptySummary", err)
	}
}

func newFakeServer(t *testing.T, content string, gotPrompt *string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			http.NotFound(w, r)
			return
		}
		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if len(req.Messages) > 0 {
			*gotPrompt = req.Messages[0].Content
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"model":   req.Model,
			"choices": []map[string]any{{"index": 0, "message": map[string]any{"role": "assistant", "content": content}, "finish_reason": "stop"}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestSummarize(t *testing.T) {
	if err := prompts.Load(prompts.FS()); err != nil {
		t.Fatalf("Load: %v", err)
	}

	var prompt string
	srv := newFakeServer(t, `{"summary": "### Key Concepts:\n- cells", "coverage": 15}`, &prompt)
	c := New(srv.URL+"/v1", "test-key", "test-model", prompts.VariantStandard)

	got, err := c.Summarize(context.Background(), []string{"bio.txt"}, "The cell is the basic unit of life.")
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if got != "### Key Concepts:\n- cells" {
		t.Errorf("Summarize = %q", got)
	}
	if !strings.Contains(prompt, "SOURCE FILES: bio.txt") {
		t.Error("prompt should name the source files")
	}
	if !strings.Contains(prompt, "The cell is the basic unit of life.") {
		t.Error("prompt should contain the material")
	}
}

func TestSummarizeInLanguage(t *testing.T) {
	if err := prompts.Load(prompts.FS()); err != nil {
		t.Fatalf("Load: %v", err)
	}

	var prompt string
	srv := newFakeServer(t, `{"summary": "Résumé", "coverage": 12}`, &prompt)
	c := New(srv.URL+"/v1", "test-key", "test-model", prompts.VariantBrief)

	res, err := c.SummarizeIn(context.Background(), []string{"a.txt", "b.txt"}, "content", "French")
	if err != nil {
		t.Fatalf("SummarizeIn: %v", err)
	}
	if res.Coverage != 12 {
		t.Errorf("Coverage = %d, want 12", res.Coverage)
	}
	if !strings.Contains(prompt, "WRITE THE SUMMARY IN: French") {
		t.Error("prompt should request the output language")
	}
	if !strings.Contains(prompt, "a.txt, b.txt") {
		t.Error("prompt should join file names")
	}
}

func TestSummarizeUpstreamError(t *testing.T) {
	if err := prompts.Load(prompts.FS()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"boom"}}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(srv.URL+"/v1", "k", "m", prompts.VariantStandard)
	if _, err := c.Summarize(context.Background(), []string{"x"}, "y"); err == nil {
		t.Fatal("expected error from failing upstream")
	}
}
