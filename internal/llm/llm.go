package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pavelanni/studygenius/internal/llm/prompts"

	openai "github.com/sashabaranov/go-openai"
)

// ErrEmptySummary is returned when the model answers without a summary.
var ErrEmptySummary = errors.New("LLM returned an empty summary")

// SummaryResult holds the model's summary of uploaded material.
type SummaryResult struct {
	Summary  string `json:"summary"`
	Coverage int    `json:"coverage"`
}

// Client wraps an OpenAI-compatible API client.
type Client struct {
	api     *openai.Client
	model   string
	variant prompts.Variant
}

// New creates a new LLM client. Prompt templates must be loaded with
// prompts.Load before the first call.
func New(baseURL, apiKey, modelName string, variant prompts.Variant) *Client {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return &Client{
		api:     openai.NewClientWithConfig(config),
		model:   modelName,
		variant: variant,
	}
}

// Summarize asks the model for a markdown summary of content.
func (c *Client) Summarize(ctx context.Context, fileNames []string, content string) (string, error) {
	res, err := c.SummarizeIn(ctx, fileNames, content, "")
	if err != nil {
		return "", err
	}
	return res.Summary, nil
}

// SummarizeIn is Summarize with an explicit output language. An empty
// language leaves the choice to the model.
func (c *Client) SummarizeIn(ctx context.Context, fileNames []string, content, language string) (*SummaryResult, error) {
	prompt, err := prompts.BuildSummaryPrompt(c.variant, prompts.SummaryData{
		FileNames: fileNames,
		Language:  language,
		Content:   content,
	})
	if err != nil {
		return nil, fmt.Errorf("build summary prompt: %w", err)
	}

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: 0.3,
	})
	if err != nil {
		return nil, fmt.Errorf("LLM API call: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("LLM returned no choices")
	}

	raw := resp.Choices[0].Message.Content
	slog.Debug("LLM response", "raw", raw)

	result, err := parseSummary(raw)
	if err != nil {
		return nil, err
	}
	return result, nil
}

func parseSummary(raw string) (*SummaryResult, error) {
	var result SummaryResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil, fmt.Errorf("parse LLM response: %w (raw: %s)", err, raw)
	}
	result.Summary = strings.TrimSpace(result.Summary)
	if result.Summary == "" {
		return nil, ErrEmptySummary
	}
	result.Coverage = min(max(result.Coverage, 0), 100)
	return &result, nil
}
