// Package ai generates scene and character artwork.
package ai

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"

	"github.com/WingsGames/Neve-Or/internal/errors"
	"github.com/sashabaranov/go-openai"
)

var (
	ErrNoAPIKey      = errors.NewSentinel("image generation is not configured")
	ErrEmptyResponse = errors.NewSentinel("image generation returned no image")
)

type Aspect string

const (
	Landscape Aspect = "16:9"
	Square    Aspect = "1:1"
)

func (a Aspect) size() string {
	if a == Landscape {
		return openai.CreateImageSize1792x1024
	}
	return openai.CreateImageSize1024x1024
}

// ImageGenerator returns a data URL of a generated image.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt string, aspect Aspect) (string, error)
}

type Client struct {
	client *openai.Client
	logger *slog.Logger
}

// NewClient returns nil when apiKey is empty so that callers can run without image generation.
func NewClient(apiKey string, logger *slog.Logger) *Client {
	if apiKey == "" {
		return nil
	}
	return NewClientWithConfig(openai.DefaultConfig(apiKey), logger)
}

func NewClientWithConfig(config openai.ClientConfig, logger *slog.Logger) *Client {
	return &Client{
		client: openai.NewClientWithConfig(config),
		logger: logger.With("source", "ImageClient"),
	}
}

// Image generates a PNG image.
func (c *Client) Image(ctx context.Context, prompt string, aspect Aspect) ([]byte, error) {
	if c == nil {
		return nil, ErrNoAPIKey
	}
	var (
		response openai.ImageResponse
		err      error
	)
	response, err = c.client.CreateImage(ctx, openai.ImageRequest{ //nolint:exhaustruct // this is better for readability
		Model:          openai.CreateImageModelDallE3,
		Prompt:         prompt,
		Size:           aspect.size(),
		ResponseFormat: openai.CreateImageResponseFormatB64JSON,
		N:              1,
	})
	if err != nil {
		return nil, errors.Wrap(err, "create image", slog.String("aspect", string(aspect)))
	}
	if len(response.Data) == 0 || response.Data[0].B64JSON == "" {
		return nil, ErrEmptyResponse
	}
	var img []byte
	if img, err = base64.StdEncoding.DecodeString(response.Data[0].B64JSON); err != nil {
		return nil, errors.Wrap(err, "decode image")
	}
	c.logger.LogAttrs(ctx, slog.LevelInfo, "generated image",
		slog.String("aspect", string(aspect)), slog.Int("bytes", len(img)))
	return img, nil
}

func (c *Client) GenerateImage(ctx context.Context, prompt string, aspect Aspect) (string, error) {
	img, err := c.Image(ctx, prompt, aspect)
	if err != nil {
		return "", err
	}
	return DataURL("image/png", img), nil
}

func DataURL(contentType string, data []byte) string {
	return fmt.Sprintf("data:%s;base64,%s", contentType, base64.StdEncoding.EncodeToString(data))
}
