// Package image adapts image model clients to the concept pipeline.
package image

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"smartstudio/internal/providers/genai"
)

// Request describes one image to render.
type Request struct {
	Prompt      string
	AspectRatio string
	ImageSize   string
}

// Image is rendered image bytes.
type Image struct {
	MimeType string
	Data     []byte
}

// DataURI encodes the image as a data: URL.
func (i Image) DataURI() string {
	mime := i.MimeType
	if mime == "" {
		mime = "image/png"
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(i.Data)
}

// Generator is the contract implemented by image providers.
type Generator interface {
	Generate(ctx context.Context, req Request) (*Image, error)
}

// BuildPrompt wraps a concept prompt with the aspect ratio and the Hebrew
// rendering instruction sent to the image model.
func BuildPrompt(prompt, aspectRatio string) string {
	return fmt.Sprintf("Generate an image: %s. Aspect ratio: %s. Make sure any Hebrew text is rendered clearly and accurately.",
		strings.TrimSpace(prompt), aspectRatio)
}

type GeminiGenerator struct {
	client *genai.Client
}

func NewGeminiGenerator(client *genai.Client) *GeminiGenerator {
	return &GeminiGenerator{client: client}
}

func (g *GeminiGenerator) Generate(ctx context.Context, req Request) (*Image, error) {
	img, err := g.client.GenerateImage(ctx, genai.ImageRequest{
		Prompt:      BuildPrompt(req.Prompt, req.AspectRatio),
		AspectRatio: req.AspectRatio,
		ImageSize:   req.ImageSize,
	})
	if err != nil {
		return nil, err
	}
	return &Image{MimeType: img.MimeType, Data: img.Data}, nil
}

var _ Generator = (*GeminiGenerator)(nil)
