package concepts

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"smartstudio/internal/domain"
	"smartstudio/internal/providers/prompt"
)

const DefaultAutoFillTimeout = 60 * time.Second

// AutoFiller suggests a value for one brief field.
type AutoFiller struct {
	text    prompt.Generator
	timeout time.Duration
}

func NewAutoFiller(text prompt.Generator) *AutoFiller {
	return &AutoFiller{text: text, timeout: DefaultAutoFillTimeout}
}

// Suggest returns a Hebrew suggestion, or "" when the model fails.
func (a *AutoFiller) Suggest(ctx context.Context, field string, c domain.AutoFillContext) string {
	ctx2, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()
	raw, err := a.text.GenerateText(ctx2, prompt.TextRequest{Prompt: buildAutoFillPrompt(field, c)})
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("field", field).Msg("auto-fill failed")
		return ""
	}
	return strings.TrimSpace(prompt.CleanText(raw))
}
