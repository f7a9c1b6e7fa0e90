package bedrock

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
)

const (
	// defaultModelID is the Titan text-to-image foundation model.
	// See https://docs.aws.amazon.com/bedrock/latest/userguide/model-parameters-titan-image.html.
	defaultModelID = "amazon.titan-image-generator-v2:0"

	defaultWidth    = 1024
	defaultHeight   = 1024
	defaultCfgScale = 8.0
)

type bedrockRuntimeClient interface {
	InvokeModel(context.Context, *bedrockruntime.InvokeModelInput, ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

type ImageOptions struct {
	ModelID  string
	Width    int
	Height   int
	CfgScale float64
}

type textToImageParams struct {
	Text string `json:"text"`
}

type imageGenerationConfig struct {
	NumberOfImages int     `json:"numberOfImages"`
	Width          int     `json:"width"`
	Height         int     `json:"height"`
	CfgScale       float64 `json:"cfgScale"`
}

type titanRequest struct {
	TaskType              string                `json:"taskType"`
	TextToImageParams     textToImageParams     `json:"textToImageParams"`
	ImageGenerationConfig imageGenerationConfig `json:"imageGenerationConfig"`
}

type titanResponse struct {
	Images []string `json:"images"`
	Error  *string  `json:"error"`
}

type ImageClient struct {
	brc  bedrockRuntimeClient
	opts ImageOptions
}

func NewImageClient(brc bedrockRuntimeClient, opts ImageOptions) *ImageClient {
	if opts.ModelID == "" {
		opts.ModelID = defaultModelID
	}
	if opts.Width == 0 {
		opts.Width = defaultWidth
	}
	if opts.Height == 0 {
		opts.Height = defaultHeight
	}
	if opts.CfgScale == 0 {
		opts.CfgScale = defaultCfgScale
	}
	return &ImageClient{brc: brc, opts: opts}
}

func (c *ImageClient) GenerateImage(ctx context.Context, prompt string) ([]byte, error) {
	slog.Info("IMAGE_CLIENT: Invoked", "provider", "bedrock", "model", c.opts.ModelID, "prompt_len", len(prompt))

	body, err := json.Marshal(titanRequest{
		TaskType:          "TEXT_IMAGE",
		TextToImageParams: textToImageParams{Text: prompt},
		ImageGenerationConfig: imageGenerationConfig{
			NumberOfImages: 1,
			Width:          c.opts.Width,
			Height:         c.opts.Height,
			CfgScale:       c.opts.CfgScale,
		},
	})
	if err != nil {
		return nil, err
	}

	out, err := c.brc.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(c.opts.ModelID),
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
		Body:        body,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to invoke model: %w", err)
	}

	var resp titanResponse
	if err := json.Unmarshal(out.Body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode model response: %w", err)
	}
	if resp.Error != nil && *resp.Error != "" {
		return nil, errors.New(*resp.Error)
	}
	if len(resp.Images) == 0 {
		return nil, errors.New("model returned no images")
	}

	img, err := base64.StdEncoding.DecodeString(resp.Images[0])
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	slog.Info("IMAGE_CLIENT: Image received", "provider", "bedrock", "bytes", len(img))
	return img, nil
}
