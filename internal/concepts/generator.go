// Package concepts turns design briefs into illustrated concepts and revises
// them one edit at a time.
package concepts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"smartstudio/internal/domain"
	"smartstudio/internal/infra"
	"smartstudio/internal/providers/image"
	"smartstudio/internal/providers/prompt"
)

// ConceptCount is the number of concepts requested per brief.
const ConceptCount = 4

const (
	DefaultTextTimeout  = 120 * time.Second
	DefaultImageTimeout = 180 * time.Second

	msgConceptTimeout = "Concept generation timed out"
	msgImageTimeout   = "Image generation timed out"
)

// Generator plans concepts with a text model and renders one image per concept.
type Generator struct {
	text         prompt.Generator
	images       image.Generator
	textTimeout  time.Duration
	imageTimeout time.Duration
}

type GeneratorOption func(*Generator)

func WithTextTimeout(d time.Duration) GeneratorOption {
	return func(g *Generator) { g.textTimeout = d }
}

func WithImageTimeout(d time.Duration) GeneratorOption {
	return func(g *Generator) { g.imageTimeout = d }
}

func NewGenerator(text prompt.Generator, images image.Generator, opts ...GeneratorOption) *Generator {
	g := &Generator{
		text:         text,
		images:       images,
		textTimeout:  DefaultTextTimeout,
		imageTimeout: DefaultImageTimeout,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate returns the parsed concepts. A concept whose image failed is
// returned without ImageURL; any failure before the image step fails the call.
func (g *Generator) Generate(ctx context.Context, brief *domain.DesignBrief) ([]domain.AIConcept, error) {
	if brief == nil {
		return nil, &domain.ValidationError{Field: "brief"}
	}
	logger := zerolog.Ctx(ctx)

	textCtx, cancel := context.WithTimeout(ctx, g.textTimeout)
	raw, err := g.text.GenerateText(textCtx, prompt.TextRequest{
		Prompt: buildConceptPrompt(brief),
		Schema: conceptSchema,
	})
	timedOut := deadlineHit(textCtx, ctx)
	cancel()
	if err != nil {
		if timedOut {
			return nil, &domain.TimeoutError{Message: msgConceptTimeout}
		}
		return nil, fmt.Errorf("generate concepts: %w", err)
	}

	concepts, err := parseConcepts(raw)
	if err != nil {
		logger.Warn().Err(err).Int("raw_len", len(raw)).Msg("concept response rejected")
		return nil, err
	}

	ratio := DeriveAspectRatio(brief.Platforms)
	g.renderAll(ctx, concepts, ratio)

	infra.ConceptsGenerated.Add(float64(len(concepts)))
	logger.Info().Int("concepts", len(concepts)).Str("aspect_ratio", ratio).Msg("concepts generated")
	return concepts, nil
}

// renderAll renders every concept concurrently and waits for all of them.
// Errors stay with their concept and never cancel siblings.
func (g *Generator) renderAll(ctx context.Context, concepts []domain.AIConcept, ratio string) {
	logger := zerolog.Ctx(ctx)
	var eg errgroup.Group
	for i := range concepts {
		eg.Go(func() error {
			c := &concepts[i]
			uri, err := g.renderOne(ctx, c.ImageGenerationPrompt, ratio)
			if err != nil {
				logger.Warn().Err(err).Int("index", i).Str("title", c.Title).Msg("concept image failed")
				return nil
			}
			c.ImageURL = uri
			return nil
		})
	}
	_ = eg.Wait()
}

func (g *Generator) renderOne(ctx context.Context, p, ratio string) (string, error) {
	if strings.TrimSpace(p) == "" {
		infra.ImageGenerations.WithLabelValues("generate", "error").Inc()
		return "", &domain.ValidationError{Field: "imageGenerationPrompt"}
	}
	imgCtx, cancel := context.WithTimeout(ctx, g.imageTimeout)
	defer cancel()
	img, err := g.images.Generate(imgCtx, image.Request{Prompt: p, AspectRatio: ratio})
	if err != nil && deadlineHit(imgCtx, ctx) {
		infra.ImageGenerations.WithLabelValues("generate", "timeout").Inc()
		return "", &domain.TimeoutError{Message: msgImageTimeout}
	}
	if err == nil && (img == nil || len(img.Data) == 0) {
		err = domain.ErrImageGenerationFailed
	}
	if err != nil {
		infra.ImageGenerations.WithLabelValues("generate", "error").Inc()
		return "", err
	}
	infra.ImageGenerations.WithLabelValues("generate", "ok").Inc()
	return img.DataURI(), nil
}

// deadlineHit reports whether child expired on its own deadline while parent
// is still live.
func deadlineHit(child, parent context.Context) bool {
	return errors.Is(child.Err(), context.DeadlineExceeded) && parent.Err() == nil
}

func parseConcepts(raw string) ([]domain.AIConcept, error) {
	concepts, err := prompt.DecodeJSON[[]domain.AIConcept](raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidConcepts, err)
	}
	if len(concepts) == 0 {
		return nil, fmt.Errorf("%w: empty array", domain.ErrInvalidConcepts)
	}
	for i := range concepts {
		concepts[i].ImageURL = ""
	}
	return concepts, nil
}
