package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"unicode/utf8"

	openai "github.com/sashabaranov/go-openai"

	"github.com/opendossier/docsearch/internal/domain"
)

// Content windows sent to the chat model per analysis type.
const (
	summaryInputLimit  = 12000
	entitiesInputLimit = 8000
)

// Analyzer derives summaries and entity lists from document content via
// chat completions.
type Analyzer struct {
	client *openai.Client
	model  string
}

// NewAnalyzer creates a chat-based document analyzer.
func NewAnalyzer(cfg *Config, chatModel string) *Analyzer {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &Analyzer{client: openai.NewClientWithConfig(clientCfg), model: chatModel}
}

// Model returns the configured chat model identifier.
func (a *Analyzer) Model() string { return a.model }

// Summarize produces a short factual summary of the document content.
func (a *Analyzer) Summarize(ctx context.Context, text string) (string, error) {
	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "Write a precise, factual summary (max 3 sentences).",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: truncate(text, summaryInputLimit),
			},
		},
		Temperature: 0.1,
		MaxTokens:   300,
	})
	if err != nil {
		return "", fmt.Errorf("summarize: %w: %w", domain.ErrEmbeddingProvider, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("summarize: empty response: %w", domain.ErrEmbeddingProvider)
	}
	return resp.Choices[0].Message.Content, nil
}

// ExtractEntities pulls typed entities out of the document content.
func (a *Analyzer) ExtractEntities(ctx context.Context, text string) ([]domain.Entity, error) {
	prompt := "Extract the entities mentioned in the text. Categories: PERSON, ORGANIZATION, " +
		"LOCATION, DATE, LEGAL_REFERENCE. Respond with JSON " +
		`{"entities":[{"name":"","type":"","context":"","confidence":0.0}]}.` +
		"\n\nText:\n" + truncate(text, entitiesInputLimit)

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: 0.1,
		MaxTokens:   800,
	})
	if err != nil {
		return nil, fmt.Errorf("extract entities: %w: %w", domain.ErrEmbeddingProvider, err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("extract entities: empty response: %w", domain.ErrEmbeddingProvider)
	}

	var parsed struct {
		Entities []domain.Entity `json:"entities"`
	}
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &parsed); err != nil {
		// Model returned non-conforming JSON; treat as no entities found.
		// Must be an empty slice, not nil: storage serializes the list to
		// jsonb and a scalar null would break the entity-match predicate.
		return []domain.Entity{}, nil
	}
	if parsed.Entities == nil {
		return []domain.Entity{}, nil
	}
	return parsed.Entities, nil
}

// truncate cuts s to at most n bytes without splitting a UTF-8 rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
