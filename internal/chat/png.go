package chat

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"

	_ "golang.org/x/image/webp"
)

var pngSignature = []byte("\x89PNG\r\n\x1a\n")

// EnsurePNG returns data as PNG. PNG input is returned untouched; JPEG and
// WebP payloads are decoded and re-encoded. Anything else is an error.
func EnsurePNG(data []byte, mimeType string) ([]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty image payload")
	}
	if bytes.HasPrefix(data, pngSignature) {
		return data, nil
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s image payload: %w", mimeType, err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to re-encode %s image as PNG: %w", format, err)
	}
	return buf.Bytes(), nil
}
