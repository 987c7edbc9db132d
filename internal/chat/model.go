package chat

import (
	"context"
	"fmt"
)

// Gemini Model IDs
//
// | Model Name              | API Model ID             | Use Case                          |
// |-------------------------|--------------------------|-----------------------------------|
// | Gemini 2.5 Flash-Lite   | gemini-2.5-flash-lite    | Short prompt writing, no thinking |
// | Gemini 2.5 Flash        | gemini-2.5-flash         | Stable, balanced performance      |
// | Gemini 2.5 Flash Image  | gemini-2.5-flash-image   | Image generation (generateContent)|
// | Imagen 4                | imagen-4.0-generate-001  | Image generation (predict)        |
const (
	// ModelGemini25FlashLite is cheap and does not spend the small output
	// budget on thinking tokens.
	ModelGemini25FlashLite = "gemini-2.5-flash-lite"

	// ModelGemini25Flash is stable, balanced performance.
	ModelGemini25Flash = "gemini-2.5-flash"

	// ModelGemini25FlashImage generates images through generateContent.
	ModelGemini25FlashImage = "gemini-2.5-flash-image"

	// ModelImagen4 generates images through the predict endpoint.
	ModelImagen4 = "imagen-4.0-generate-001"
)

// Image backends selectable in configuration.
const (
	BackendGemini = "gemini"
	BackendImagen = "imagen"
)

// DefaultTextModel is the model that writes the image prompt.
const DefaultTextModel = ModelGemini25FlashLite

// DefaultImageModel returns the default model for an image backend.
func DefaultImageModel(backend string) string {
	if backend == BackendImagen {
		return ModelImagen4
	}
	return ModelGemini25FlashImage
}

// ImageClient renders a prompt as PNG bytes.
type ImageClient interface {
	GenerateImage(ctx context.Context, prompt string) ([]byte, error)
}

// NewImageClient returns the client for backend. An empty model selects the
// backend default.
func NewImageClient(backend, apiKey, model string) (ImageClient, error) {
	if model == "" {
		model = DefaultImageModel(backend)
	}
	switch backend {
	case BackendGemini:
		return NewGeminiImageClient(apiKey, model), nil
	case BackendImagen:
		return NewImagenClient(apiKey, model), nil
	default:
		return nil, fmt.Errorf("unknown image backend %q", backend)
	}
}

// truncateString truncates a string to maxLen, appending "..." if truncated.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
