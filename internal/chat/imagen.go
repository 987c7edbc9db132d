package chat

// imagen.go provides a REST API client for Imagen text-to-image generation
// through the Gemini API predict endpoint.

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

// ImagenClient calls an Imagen model via the predict REST API.
type ImagenClient struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// NewImagenClient creates a new client for Imagen generation.
func NewImagenClient(apiKey, model string) *ImagenClient {
	if model == "" {
		model = ModelImagen4
	}
	return &ImagenClient{
		apiKey:  apiKey,
		model:   model,
		baseURL: geminiBaseURL,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

// WithBaseURL points the client at a different API root.
func (c *ImagenClient) WithBaseURL(baseURL string) *ImagenClient {
	c.baseURL = baseURL
	return c
}

// --- Imagen predict request/response types ---

type imagenRequest struct {
	Instances  []imagenInstance `json:"instances"`
	Parameters imagenParameters `json:"parameters"`
}

type imagenInstance struct {
	Prompt string `json:"prompt"`
}

type imagenParameters struct {
	SampleCount int    `json:"sampleCount"`
	AspectRatio string `json:"aspectRatio,omitempty"`
}

type imagenResponse struct {
	Predictions []imagenPrediction `json:"predictions"`
	Error       *imagenError       `json:"error,omitempty"`
}

type imagenPrediction struct {
	BytesBase64Encoded string `json:"bytesBase64Encoded"`
	MimeType           string `json:"mimeType"`
}

type imagenError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// GenerateImage renders prompt as one square image and returns PNG bytes.
func (c *ImagenClient) GenerateImage(ctx context.Context, prompt string) ([]byte, error) {
	log.Debug().
		Str("model", c.model).
		Str("prompt", truncateString(prompt, 100)).
		Msg("GenerateImage: Starting Imagen API call")

	startTime := time.Now()

	req := imagenRequest{
		Instances: []imagenInstance{{Prompt: prompt}},
		Parameters: imagenParameters{
			SampleCount: 1,
			AspectRatio: squareAspectRatio,
		},
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:predict", c.baseURL, c.model)
	respBody, err := postJSON(ctx, c.httpClient, url, c.apiKey, body)
	if err != nil {
		return nil, err
	}

	var imagenResp imagenResponse
	if err := json.Unmarshal(respBody, &imagenResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if imagenResp.Error != nil {
		return nil, fmt.Errorf("API error: %s (code: %d)", imagenResp.Error.Message, imagenResp.Error.Code)
	}

	if len(imagenResp.Predictions) == 0 || imagenResp.Predictions[0].BytesBase64Encoded == "" {
		return nil, fmt.Errorf("no image data returned from Imagen")
	}

	prediction := imagenResp.Predictions[0]
	decoded, err := base64.StdEncoding.DecodeString(prediction.BytesBase64Encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to decode response image: %w", err)
	}

	pngData, err := EnsurePNG(decoded, prediction.MimeType)
	if err != nil {
		return nil, err
	}

	log.Debug().
		Int("output_bytes", len(pngData)).
		Dur("duration", time.Since(startTime)).
		Msg("GenerateImage: Imagen API call completed successfully")

	return pngData, nil
}
