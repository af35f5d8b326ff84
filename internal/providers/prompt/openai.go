package prompt

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"smartstudio/internal/domain"
)

const defaultOpenAIModel = "gpt-4o-mini"

var openAIModelCanonical = map[string]string{
	"gpt-4o":        "gpt-4o",
	"gpt-4o-mini":   "gpt-4o-mini",
	"gpt-3.5-turbo": "gpt-3.5-turbo",
}

var openAIModelAliases = map[string]string{
	"gpt4o":        "gpt-4o",
	"gpt4o-mini":   "gpt-4o-mini",
	"gpt4omini":    "gpt-4o-mini",
	"gpt-3.5":      "gpt-3.5-turbo",
	"gpt3.5":       "gpt-3.5-turbo",
	"gpt-35-turbo": "gpt-3.5-turbo",
}

type OpenAIOptions struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
	OnWarning  func(reason, detail string)
}

// OpenAIGenerator is the alternate text provider, selected by PROMPT_PROVIDER=openai.
type OpenAIGenerator struct {
	client *openai.Client
	model  string
}

func NewOpenAIGenerator(opts OpenAIOptions) (*OpenAIGenerator, error) {
	key := strings.TrimSpace(opts.APIKey)
	if key == "" {
		return nil, fmt.Errorf("openai api key: %w", domain.ErrNotConfigured)
	}
	requested := strings.TrimSpace(opts.Model)
	model, reason := normalizeOpenAIModel(requested)
	if reason != "" && opts.OnWarning != nil {
		opts.OnWarning("model_"+reason, fmt.Sprintf("requested=%s resolved=%s", requested, model))
	}
	cfg := openai.DefaultConfig(key)
	if base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/"); base != "" {
		cfg.BaseURL = base
	}
	if opts.HTTPClient != nil {
		cfg.HTTPClient = opts.HTTPClient
	}
	return &OpenAIGenerator{client: openai.NewClientWithConfig(cfg), model: model}, nil
}

func (o *OpenAIGenerator) Name() string { return ProviderOpenAI }

func (o *OpenAIGenerator) GenerateText(ctx context.Context, req TextRequest) (string, error) {
	content := req.Prompt
	chat := openai.ChatCompletionRequest{Model: o.model}
	if req.Schema != nil {
		content += "\n\nRespond strictly with JSON matching this shape: " + describeSchema(req.Schema)
		chat.ResponseFormat = &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject}
	}
	if req.Temperature != nil {
		chat.Temperature = *req.Temperature
	}
	chat.Messages = []openai.ChatCompletionMessage{{Role: openai.ChatMessageRoleUser, Content: content}}

	resp, err := o.client.CreateChatCompletion(ctx, chat)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return "", err
		}
		return "", fmt.Errorf("%w: openai: %v", domain.ErrProviderFailure, err)
	}
	for _, choice := range resp.Choices {
		if text := strings.TrimSpace(choice.Message.Content); text != "" {
			return text, nil
		}
	}
	return "", fmt.Errorf("%w: openai returned no text", domain.ErrProviderFailure)
}

func normalizeOpenAIModel(input string) (string, string) {
	trimmed := strings.ToLower(strings.TrimSpace(input))
	if trimmed == "" {
		return defaultOpenAIModel, ""
	}
	if m, ok := openAIModelCanonical[trimmed]; ok {
		return m, ""
	}
	key := strings.ReplaceAll(trimmed, " ", "-")
	if m, ok := openAIModelAliases[key]; ok {
		return m, "alias"
	}
	return defaultOpenAIModel, "defaulted"
}

var _ Generator = (*OpenAIGenerator)(nil)
