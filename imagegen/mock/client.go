package mock

import (
	"context"
	"encoding/base64"
	"log/slog"
)

// onePixelPNG is a valid 1x1 transparent PNG.
const onePixelPNG = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAQAAAC1HAwCAAAAC0lEQVR42mNkYAAAAAYAAjCB0C8AAAAASUVORK5CYII="

type ImageClient struct {
	image []byte
}

func NewImageClient() *ImageClient {
	img, _ := base64.StdEncoding.DecodeString(onePixelPNG)
	return &ImageClient{image: img}
}

// GenerateImage ignores the prompt and always returns the same tiny PNG. It
// lets the server run end to end without a credential or network access.
func (m *ImageClient) GenerateImage(_ context.Context, prompt string) ([]byte, error) {
	slog.Info("IMAGE_CLIENT: Invoked", "provider", "mock", "prompt_len", len(prompt))
	out := make([]byte, len(m.image))
	copy(out, m.image)
	return out, nil
}
