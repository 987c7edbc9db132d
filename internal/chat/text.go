package chat

// text.go asks a Gemini text model to write the day's image prompt.

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"
)

// TextRequest is one prompt-writing request.
type TextRequest struct {
	System           string
	User             string
	Temperature      float64
	PresencePenalty  float64
	FrequencyPenalty float64
	MaxOutputTokens  int
	Seed             uint32
}

// TextClient generates text through the genai SDK.
type TextClient struct {
	client *genai.Client
	model  string
}

// NewGeminiClient creates a genai client for the Gemini API.
func NewGeminiClient(ctx context.Context, apiKey string) (*genai.Client, error) {
	return genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
}

// NewTextClient wraps client for the given model.
func NewTextClient(client *genai.Client, model string) *TextClient {
	if model == "" {
		model = DefaultTextModel
	}
	return &TextClient{client: client, model: model}
}

// GenerateText sends req and returns the concatenated text of the response.
func (c *TextClient) GenerateText(ctx context.Context, req TextRequest) (string, error) {
	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: req.System}},
		},
		Temperature:      genai.Ptr(float32(req.Temperature)),
		PresencePenalty:  genai.Ptr(float32(req.PresencePenalty)),
		FrequencyPenalty: genai.Ptr(float32(req.FrequencyPenalty)),
		MaxOutputTokens:  int32(req.MaxOutputTokens),
		Seed:             genai.Ptr(int32(req.Seed)),
	}

	log.Debug().
		Str("model", c.model).
		Float64("temperature", req.Temperature).
		Float64("presence_penalty", req.PresencePenalty).
		Float64("frequency_penalty", req.FrequencyPenalty).
		Uint32("seed", req.Seed).
		Int("prompt_length", len(req.User)).
		Msg("Starting Gemini API call for prompt generation")

	callStart := time.Now()
	contents := []*genai.Content{{Role: "user", Parts: []*genai.Part{{Text: req.User}}}}
	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, config)
	duration := time.Since(callStart)
	if err != nil {
		log.Error().Err(err).Dur("duration", duration).Msg("Failed to generate prompt from Gemini")
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	if resp == nil || len(resp.Candidates) == 0 {
		log.Warn().Msg("Received empty response from Gemini")
		return "", fmt.Errorf("received empty response from Gemini API")
	}

	text := resp.Text()
	log.Info().
		Int("response_length", len(text)).
		Dur("duration", duration).
		Msg("Prompt text received from Gemini")
	log.Debug().Str("raw_prompt", text).Msg("Raw prompt")

	return text, nil
}
