package openai

import (
	"context"
	"errors"
	"strings"

	"github.com/apex/log"
	"github.com/sashabaranov/go-openai"

	"github.com/bryanwahyu/lenscan/internal/domain/analysis"
	"github.com/bryanwahyu/lenscan/internal/infra/ai/prompt"
)

const maxTokens = 1024

// Client implements the analysis.Analyzer port on OpenAI chat completions.
// Analyze never returns an error: every failure mode degrades to a valid
// Analysis with safety unknown.
type Client struct {
	api   *openai.Client
	Model string
}

// NewClient builds a client. An empty apiKey is allowed and produces a
// client that answers with a Configuration Error result without touching
// the network.
func NewClient(apiKey, model string) *Client {
	c := &Client{Model: model}
	if apiKey != "" {
		c.api = openai.NewClient(apiKey)
	}
	return c
}

func (c *Client) Analyze(ctx context.Context, data, format string) *analysis.Analysis {
	if c.api == nil {
		log.Warnf("analysis skipped: %v", analysis.ErrMissingCredential)
		return analysis.Degraded("Configuration Error",
			"Content analysis is not configured. Set the AI API key to enable safety lookups.")
	}

	model := c.Model
	if model == "" {
		model = "gpt-4o-mini"
	}
	req := openai.ChatCompletionRequest{
		Model: model,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompt.GetSystemPrompt()},
			{Role: openai.ChatMessageRoleUser, Content: prompt.GetUserPrompt(data, format)},
		},
	}
	// For reasoning models (o1/o3/o4/gpt-5*) use MaxCompletionTokens instead of MaxTokens
	if strings.HasPrefix(model, "o1") || strings.HasPrefix(model, "o3") || strings.HasPrefix(model, "o4") || strings.HasPrefix(model, "gpt-5") {
		req.MaxCompletionTokens = maxTokens
	} else {
		req.MaxTokens = maxTokens
	}

	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == 429 {
			log.Errorf("analysis failed: %v: %v", analysis.ErrQuotaExceeded, err)
			return analysis.Degraded("Quota Exceeded",
				"The analysis quota is exhausted. Try again later.")
		}
		log.Errorf("analysis failed: %v", err)
		return analysis.Degraded("Analysis Error",
			"Content analysis is temporarily unavailable.")
	}
	if len(resp.Choices) == 0 {
		return analysis.Degraded("Analysis Error",
			"The analysis service returned no answer.")
	}

	return prompt.Parse(resp.Choices[0].Message.Content)
}
