package chat

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"google.golang.org/genai"
)

func testImage(t *testing.T) image.Image {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, color.RGBA{R: 20, G: 200, B: 20, A: 255})
		}
	}
	return img
}

func testPNG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, testImage(t)); err != nil {
		t.Fatalf("failed to encode test PNG: %v", err)
	}
	return buf.Bytes()
}

func testJPEG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, testImage(t), nil); err != nil {
		t.Fatalf("failed to encode test JPEG: %v", err)
	}
	return buf.Bytes()
}

func TestEnsurePNG(t *testing.T) {
	pngData := testPNG(t)
	out, err := EnsurePNG(pngData, "image/png")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(out, pngData) {
		t.Error("PNG input should be returned unchanged")
	}

	out, err = EnsurePNG(testJPEG(t), "image/jpeg")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.HasPrefix(out, pngSignature) {
		t.Error("JPEG input should be re-encoded as PNG")
	}

	if _, err := EnsurePNG([]byte("not an image"), "image/png"); err == nil {
		t.Error("expected error for garbage payload")
	}
	if _, err := EnsurePNG(nil, "image/png"); err == nil {
		t.Error("expected error for empty payload")
	}
}

func TestGeminiImageClientGenerateImage(t *testing.T) {
	pngData := testPNG(t)
	var gotReq geminiRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models/gemini-2.5-flash-image:generateContent" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("x-goog-api-key") != "test-key" {
			t.Errorf("missing API key header")
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		json.NewEncoder(w).Encode(geminiResponse{
			Candidates: []geminiCandidate{{
				Content: geminiContent{
					Role: "model",
					Parts: []geminiPart{
						{Text: "Here is your panda."},
						{InlineData: &geminiBlobData{
							MIMEType: "image/png",
							Data:     base64.StdEncoding.EncodeToString(pngData),
						}},
					},
				},
			}},
		})
	}))
	defer server.Close()

	client := NewGeminiImageClient("test-key", "").WithBaseURL(server.URL)
	out, err := client.GenerateImage(context.Background(), "A whimsical watercolor painting of a panda.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(out, pngData) {
		t.Error("unexpected image bytes")
	}

	if len(gotReq.Contents) != 1 || gotReq.Contents[0].Parts[0].Text != "A whimsical watercolor painting of a panda." {
		t.Errorf("unexpected request contents: %+v", gotReq.Contents)
	}
	if gotReq.GenerationConfig == nil || gotReq.GenerationConfig.ImageConfig == nil ||
		gotReq.GenerationConfig.ImageConfig.AspectRatio != "1:1" {
		t.Errorf("expected square aspect ratio, got %+v", gotReq.GenerationConfig)
	}
}

func TestGeminiImageClientNoImage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"candidates":[{"content":{"role":"model","parts":[{"text":"I cannot draw that."}]}}]}`)
	}))
	defer server.Close()

	_, err := NewGeminiImageClient("k", "").WithBaseURL(server.URL).GenerateImage(context.Background(), "p")
	if err == nil {
		t.Fatal("expected error when no image is returned")
	}
	if !strings.Contains(err.Error(), "I cannot draw that.") {
		t.Errorf("expected model text in error, got %v", err)
	}
}

func TestGeminiImageClientHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		io.WriteString(w, `{"error":{"code":429,"message":"quota"}}`)
	}))
	defer server.Close()

	_, err := NewGeminiImageClient("k", "").WithBaseURL(server.URL).GenerateImage(context.Background(), "p")
	if err == nil || !strings.Contains(err.Error(), "429") {
		t.Errorf("expected status error, got %v", err)
	}
}

func TestImagenClientGenerateImage(t *testing.T) {
	jpegData := testJPEG(t)
	var gotReq imagenRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models/imagen-4.0-generate-001:predict" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&gotReq)
		json.NewEncoder(w).Encode(imagenResponse{
			Predictions: []imagenPrediction{{
				BytesBase64Encoded: base64.StdEncoding.EncodeToString(jpegData),
				MimeType:           "image/jpeg",
			}},
		})
	}))
	defer server.Close()

	out, err := NewImagenClient("k", "").WithBaseURL(server.URL).GenerateImage(context.Background(), "panda")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.HasPrefix(out, pngSignature) {
		t.Error("expected PNG output")
	}
	if gotReq.Parameters.SampleCount != 1 || gotReq.Parameters.AspectRatio != "1:1" {
		t.Errorf("unexpected parameters %+v", gotReq.Parameters)
	}
	if len(gotReq.Instances) != 1 || gotReq.Instances[0].Prompt != "panda" {
		t.Errorf("unexpected instances %+v", gotReq.Instances)
	}
}

func TestImagenClientEmptyPredictions(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"predictions":[]}`)
	}))
	defer server.Close()

	if _, err := NewImagenClient("k", "").WithBaseURL(server.URL).GenerateImage(context.Background(), "p"); err == nil {
		t.Error("expected error for empty predictions")
	}
}

func TestImagenClientBadBase64(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"predictions":[{"bytesBase64Encoded":"!!!not-base64!!!","mimeType":"image/png"}]}`)
	}))
	defer server.Close()

	if _, err := NewImagenClient("k", "").WithBaseURL(server.URL).GenerateImage(context.Background(), "p"); err == nil {
		t.Error("expected decode error")
	}
}

func TestTextClientGenerateText(t *testing.T) {
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "models/gemini-2.5-flash-lite:generateContent") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"candidates":[{"content":{"role":"model","parts":[{"text":"[1995: The Soup Nazi, New York]\nA whimsical watercolor painting of a panda."}]}}]}`)
	}))
	defer server.Close()

	ctx := context.Background()
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      "test-key",
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  server.Client(),
		HTTPOptions: genai.HTTPOptions{BaseURL: server.URL},
	})
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	text, err := NewTextClient(client, "").GenerateText(ctx, TextRequest{
		System:           "You are a creative prompt engineer.",
		User:             "Write a prompt.",
		Temperature:      0.8,
		PresencePenalty:  0.6,
		FrequencyPenalty: 0.4,
		MaxOutputTokens:  100,
		Seed:             12345,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "[1995: The Soup Nazi, New York]\nA whimsical watercolor painting of a panda." {
		t.Errorf("unexpected text %q", text)
	}

	config, _ := gotBody["generationConfig"].(map[string]any)
	if config == nil {
		t.Fatalf("missing generationConfig in request: %v", gotBody)
	}
	if config["maxOutputTokens"] != float64(100) {
		t.Errorf("expected maxOutputTokens 100, got %v", config["maxOutputTokens"])
	}
	if config["seed"] != float64(12345) {
		t.Errorf("expected seed 12345, got %v", config["seed"])
	}
	if _, ok := gotBody["systemInstruction"]; !ok {
		t.Error("expected systemInstruction in request")
	}
}

func TestDefaultImageModel(t *testing.T) {
	if DefaultImageModel(BackendImagen) != ModelImagen4 {
		t.Error("imagen backend should default to Imagen 4")
	}
	if DefaultImageModel(BackendGemini) != ModelGemini25FlashImage {
		t.Error("gemini backend should default to Gemini image model")
	}
}

func TestNewImageClient(t *testing.T) {
	c, err := NewImageClient(BackendGemini, "key", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g, ok := c.(*GeminiImageClient); !ok || g.model != ModelGemini25FlashImage {
		t.Errorf("expected Gemini image client with default model, got %#v", c)
	}

	c, err = NewImageClient(BackendImagen, "key", "imagen-custom")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if im, ok := c.(*ImagenClient); !ok || im.model != "imagen-custom" {
		t.Errorf("expected Imagen client with custom model, got %#v", c)
	}

	if _, err := NewImageClient("dall-e", "key", ""); err == nil {
		t.Error("expected error for unknown backend")
	}
}
