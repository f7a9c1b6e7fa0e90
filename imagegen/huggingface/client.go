package huggingface

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"mcpserver"
	"mcpserver/tools"
)

const (
	DefaultBaseEndpoint = "https://router.huggingface.co/hf-inference/models"
	DefaultModelID      = "black-forest-labs/FLUX.1-schnell"

	// FLUX.1-schnell is distilled for very few denoising steps.
	defaultInferenceSteps = 4

	maxErrorBody = 512
)

type parameters struct {
	NumInferenceSteps int `json:"num_inference_steps"`
}

type wireRequest struct {
	Inputs     string     `json:"inputs"`
	Parameters parameters `json:"parameters"`
}

type wireError struct {
	Error string `json:"error"`
}

type Client struct {
	endpoint   string
	token      string
	httpClient mcpserver.HTTPClient
	params     parameters
}

type ClientOpts struct {
	BaseEndpoint   string
	ModelID        string
	Token          string
	InferenceSteps int
	HTTPClient     mcpserver.HTTPClient
}

// NewClient returns an error wrapping tools.ErrMissingCredential when no
// access token is supplied.
func NewClient(opts ClientOpts) (*Client, error) {
	if strings.TrimSpace(opts.Token) == "" {
		return nil, fmt.Errorf("%w: set the HF_TOKEN environment variable or pass --hf-token with a Hugging Face access token", tools.ErrMissingCredential)
	}
	if opts.BaseEndpoint == "" {
		opts.BaseEndpoint = DefaultBaseEndpoint
	}
	if opts.ModelID == "" {
		opts.ModelID = DefaultModelID
	}
	if opts.InferenceSteps <= 0 {
		opts.InferenceSteps = defaultInferenceSteps
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	return &Client{
		endpoint:   strings.TrimRight(opts.BaseEndpoint, "/") + "/" + opts.ModelID,
		token:      opts.Token,
		httpClient: opts.HTTPClient,
		params:     parameters{NumInferenceSteps: opts.InferenceSteps},
	}, nil
}

// GenerateImage posts the prompt to the inference endpoint and returns the
// raw image bytes from the response body.
func (c *Client) GenerateImage(ctx context.Context, prompt string) ([]byte, error) {
	slog.Info("IMAGE_CLIENT: Invoked", "provider", "huggingface", "prompt_len", len(prompt))

	reqBytes, err := json.Marshal(wireRequest{Inputs: prompt, Parameters: c.params})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewBuffer(reqBytes))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "image/png")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read image response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("huggingface: %s: %s", resp.Status, errorMessage(body))
	}
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		return nil, fmt.Errorf("huggingface: unexpected JSON response: %s", errorMessage(body))
	}

	slog.Info("IMAGE_CLIENT: Image received", "provider", "huggingface", "bytes", len(body))
	return body, nil
}

func errorMessage(body []byte) string {
	var we wireError
	if err := json.Unmarshal(body, &we); err == nil && we.Error != "" {
		return we.Error
	}
	s := strings.TrimSpace(string(body))
	if len(s) > maxErrorBody {
		s = s[:maxErrorBody] + "..."
	}
	return s
}
