package concepts

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"smartstudio/internal/domain"
	"smartstudio/internal/infra"
	"smartstudio/internal/providers/image"
	"smartstudio/internal/providers/prompt"
)

const (
	DefaultRewriteTimeout = 60 * time.Second
	StandardImageTimeout  = 120 * time.Second
	LargeImageTimeout     = 180 * time.Second
	largeImageSize        = "4K"
)

// Reviser applies one edit to a concept: rewrite the prompt, then re-render.
type Reviser struct {
	text           prompt.Generator
	images         image.Generator
	rewriteTimeout time.Duration
	imageTimeout   func(size string) time.Duration
}

func NewReviser(text prompt.Generator, images image.Generator) *Reviser {
	return &Reviser{
		text:           text,
		images:         images,
		rewriteTimeout: DefaultRewriteTimeout,
		imageTimeout:   ImageTimeoutForSize,
	}
}

// ImageTimeoutForSize returns the render budget for a size tier.
func ImageTimeoutForSize(size string) time.Duration {
	if strings.EqualFold(strings.TrimSpace(size), largeImageSize) {
		return LargeImageTimeout
	}
	return StandardImageTimeout
}

// Revise derives a new prompt from the concept's current one and renders it.
func (r *Reviser) Revise(ctx context.Context, concept domain.AIConcept, edits *domain.ConceptEdits, attachments []domain.ReferenceAttachment) (*domain.Revision, error) {
	if strings.TrimSpace(concept.ImageGenerationPrompt) == "" {
		return nil, &domain.ValidationError{Field: "concept.imageGenerationPrompt"}
	}
	if edits == nil {
		return nil, &domain.ValidationError{Field: "edits"}
	}
	logger := zerolog.Ctx(ctx)

	newPrompt := r.RewritePrompt(ctx, concept.ImageGenerationPrompt, *edits, attachments)
	ratio := NormalizeAspectRatio(edits.AspectRatio)

	imgCtx, cancel := context.WithTimeout(ctx, r.imageTimeout(edits.ImageSize))
	defer cancel()
	img, err := r.images.Generate(imgCtx, image.Request{
		Prompt:      newPrompt,
		AspectRatio: ratio,
		ImageSize:   edits.ImageSize,
	})
	if err != nil && deadlineHit(imgCtx, ctx) {
		infra.ImageGenerations.WithLabelValues("revise", "timeout").Inc()
		return nil, &domain.TimeoutError{Message: msgImageTimeout}
	}
	if err != nil {
		infra.ImageGenerations.WithLabelValues("revise", "error").Inc()
		if errors.Is(err, domain.ErrImageGenerationFailed) {
			return nil, err
		}
		return nil, errors.Join(domain.ErrImageGenerationFailed, err)
	}
	if img == nil || len(img.Data) == 0 {
		infra.ImageGenerations.WithLabelValues("revise", "error").Inc()
		return nil, domain.ErrImageGenerationFailed
	}
	infra.ImageGenerations.WithLabelValues("revise", "ok").Inc()
	logger.Info().Str("aspect_ratio", ratio).Str("image_size", edits.ImageSize).Msg("concept revised")

	return &domain.Revision{ImageURL: img.DataURI(), UpdatedPrompt: newPrompt}, nil
}

// RewritePrompt folds the edits into the current prompt. It always returns a
// usable prompt, falling back to plain concatenation when the model fails.
func (r *Reviser) RewritePrompt(ctx context.Context, current string, edits domain.ConceptEdits, attachments []domain.ReferenceAttachment) string {
	rewriteCtx, cancel := context.WithTimeout(ctx, r.rewriteTimeout)
	defer cancel()
	raw, err := r.text.GenerateText(rewriteCtx, prompt.TextRequest{
		Prompt: buildRewritePrompt(current, edits, attachments),
	})
	if err == nil {
		if rewritten := prompt.CleanText(raw); rewritten != "" {
			return rewritten
		}
		err = errors.New("empty rewrite")
	}
	zerolog.Ctx(ctx).Warn().Err(err).Msg("prompt rewrite failed, using fallback")
	infra.PromptRewriteFallbacks.Inc()
	return fallbackRewrite(current, edits)
}
