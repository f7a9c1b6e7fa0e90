package tools

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/google/uuid"

	"mcpserver/tools/storage"
)

const (
	ImageMIMEType = "image/png"

	defaultCredentialHint = "check that HF_TOKEN is set to a valid Hugging Face access token"
)

// ImageGenerator turns a text prompt into encoded image bytes.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt string) ([]byte, error)
}

type GenerateImageInput struct {
	Prompt string `json:"prompt"`
}

type GenerateImageOpts struct {
	// NewGenerator builds the shared client on first successful use. It should
	// return an error wrapping ErrMissingCredential when no credential is
	// configured.
	NewGenerator func() (ImageGenerator, error)
	// Store optionally archives every generated image.
	Store          storage.ImageStore
	CredentialHint string
}

type GenerateImage struct {
	generator *lazyGenerator
	store     storage.ImageStore
	hint      string
}

// lazyGenerator builds the backend on first use. A failed build is not
// cached, so the next call tries again.
type lazyGenerator struct {
	mu  sync.Mutex
	new func() (ImageGenerator, error)
	gen ImageGenerator
}

func (l *lazyGenerator) get() (ImageGenerator, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.gen != nil {
		return l.gen, nil
	}
	gen, err := l.new()
	if err != nil {
		return nil, err
	}
	l.gen = gen
	return gen, nil
}

func NewGenerateImage(opts GenerateImageOpts) *GenerateImage {
	newGenerator := opts.NewGenerator
	if newGenerator == nil {
		newGenerator = func() (ImageGenerator, error) {
			return nil, fmt.Errorf("%w: no image generator configured", ErrMissingCredential)
		}
	}
	if opts.CredentialHint == "" {
		opts.CredentialHint = defaultCredentialHint
	}
	return &GenerateImage{
		generator: &lazyGenerator{new: newGenerator},
		store:     opts.Store,
		hint:      opts.CredentialHint,
	}
}

func (t *GenerateImage) Name() string  { return "generate_image" }
func (t *GenerateImage) Title() string { return "Generate Image" }
func (t *GenerateImage) Description() string {
	return "Generates a PNG image from a text prompt using a text-to-image model."
}

func (t *GenerateImage) InputSchema() *jsonschema.Schema {
	minLen := 1
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"prompt": {
				Type:        "string",
				Description: "Text description of the image to generate",
				MinLength:   &minLen,
			},
		},
		Required: []string{"prompt"},
	}
}

func (t *GenerateImage) OutputSchema() *jsonschema.Schema { return nil }

func (t *GenerateImage) Run(ctx context.Context, input map[string]any) (*Result, error) {
	in, err := decodeInput[GenerateImageInput](input)
	if err != nil {
		return nil, err
	}

	gen, err := t.generator.get()
	if err != nil {
		if errors.Is(err, ErrMissingCredential) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v (%s)", ErrImageGeneration, err, t.hint)
	}

	data, err := gen.GenerateImage(ctx, in.Prompt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v (%s)", ErrImageGeneration, err, t.hint)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty image returned (%s)", ErrImageGeneration, t.hint)
	}

	result := &Result{Content: []Content{ImageContent(data, ImageMIMEType)}}
	if t.store != nil {
		key := uuid.NewString() + ".png"
		location, err := t.store.Save(ctx, key, data, ImageMIMEType)
		if err != nil {
			slog.Error("IMAGE: Failed to archive generated image", "key", key, "error", err)
		} else {
			result.Content = append(result.Content, TextContent("Saved image to "+location))
		}
	}
	return result, nil
}
