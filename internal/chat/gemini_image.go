package chat

// gemini_image.go provides a REST API client for Gemini image generation.
// Direct HTTP calls are used so the inline base64 payload and its MIME type can
// be decoded and checked before anything is written to disk.

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

// geminiBaseURL is the Gemini REST API base URL.
const geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// squareAspectRatio requests a single square image.
const squareAspectRatio = "1:1"

// GeminiImageClient calls a Gemini image model via REST API.
type GeminiImageClient struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// NewGeminiImageClient creates a new client for Gemini image generation.
func NewGeminiImageClient(apiKey, model string) *GeminiImageClient {
	if model == "" {
		model = ModelGemini25FlashImage
	}
	return &GeminiImageClient{
		apiKey:  apiKey,
		model:   model,
		baseURL: geminiBaseURL,
		httpClient: &http.Client{
			Timeout: 120 * time.Second, // Image generation can take 10-30s
		},
	}
}

// WithBaseURL points the client at a different API root.
func (c *GeminiImageClient) WithBaseURL(baseURL string) *GeminiImageClient {
	c.baseURL = baseURL
	return c
}

// --- REST API request/response types ---

type geminiRequest struct {
	Contents         []geminiContent         `json:"contents"`
	GenerationConfig *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text       string          `json:"text,omitempty"`
	InlineData *geminiBlobData `json:"inlineData,omitempty"`
}

type geminiGenerationConfig struct {
	ResponseModalities []string           `json:"responseModalities,omitempty"`
	CandidateCount     int                `json:"candidateCount,omitempty"`
	ImageConfig        *geminiImageConfig `json:"imageConfig,omitempty"`
}

type geminiImageConfig struct {
	AspectRatio string `json:"aspectRatio,omitempty"`
}

type geminiBlobData struct {
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"` // base64 encoded
}

type geminiResponse struct {
	Candidates []geminiCandidate `json:"candidates"`
	Error      *geminiError      `json:"error,omitempty"`
}

type geminiCandidate struct {
	Content      geminiContent `json:"content"`
	FinishReason string        `json:"finishReason,omitempty"`
}

type geminiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

// GenerateImage renders prompt as one square image and returns PNG bytes.
// A response without image data is an error.
func (c *GeminiImageClient) GenerateImage(ctx context.Context, prompt string) ([]byte, error) {
	startTime := time.Now()
	log.Info().
		Str("model", c.model).
		Int("prompt_length", len(prompt)).
		Msg("Sending prompt to Gemini for image generation")

	req := geminiRequest{
		Contents: []geminiContent{{
			Role:  "user",
			Parts: []geminiPart{{Text: prompt}},
		}},
		GenerationConfig: &geminiGenerationConfig{
			ResponseModalities: []string{"IMAGE"},
			CandidateCount:     1,
			ImageConfig:        &geminiImageConfig{AspectRatio: squareAspectRatio},
		},
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, c.model)
	respBody, err := postJSON(ctx, c.httpClient, url, c.apiKey, body)
	if err != nil {
		return nil, err
	}

	var geminiResp geminiResponse
	if err := json.Unmarshal(respBody, &geminiResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if geminiResp.Error != nil {
		return nil, fmt.Errorf("API error: %s (code: %d)", geminiResp.Error.Message, geminiResp.Error.Code)
	}

	// The first inline image wins; any text is kept for the error message.
	var data, mimeType, text string
	for _, candidate := range geminiResp.Candidates {
		for _, part := range candidate.Content.Parts {
			if part.InlineData != nil && part.InlineData.Data != "" && data == "" {
				data = part.InlineData.Data
				mimeType = part.InlineData.MIMEType
			}
			text += part.Text
		}
	}

	if data == "" {
		return nil, fmt.Errorf("no image data returned from the API (text: %s)", truncateString(text, 200))
	}

	decoded, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image data: %w", err)
	}

	pngData, err := EnsurePNG(decoded, mimeType)
	if err != nil {
		return nil, err
	}

	log.Info().
		Int("output_bytes", len(pngData)).
		Str("source_mime", mimeType).
		Dur("duration", time.Since(startTime)).
		Msg("Gemini image generation complete")

	return pngData, nil
}

// postJSON sends body with the API key header and returns the body of a 200
// reply. Shared by the Gemini and Imagen clients.
func postJSON(ctx context.Context, httpClient *http.Client, url, apiKey string, body []byte) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", apiKey)

	resp, err := httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		log.Error().
			Int("status", resp.StatusCode).
			Str("body", truncateString(string(respBody), 500)).
			Msg("Image generation API returned error")
		return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, truncateString(string(respBody), 200))
	}

	return respBody, nil
}
