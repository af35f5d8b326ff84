package concepts

import (
	"context"
	"sync"

	"smartstudio/internal/providers/image"
	"smartstudio/internal/providers/prompt"
)

type fakeText struct {
	mu       sync.Mutex
	requests []prompt.TextRequest
	respond  func(ctx context.Context, req prompt.TextRequest) (string, error)
}

func (f *fakeText) GenerateText(ctx context.Context, req prompt.TextRequest) (string, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()
	return f.respond(ctx, req)
}

func (f *fakeText) Name() string { return "fake" }

func (f *fakeText) lastPrompt() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.requests) == 0 {
		return ""
	}
	return f.requests[len(f.requests)-1].Prompt
}

type fakeImages struct {
	mu       sync.Mutex
	requests []image.Request
	respond  func(ctx context.Context, req image.Request) (*image.Image, error)
}

func (f *fakeImages) Generate(ctx context.Context, req image.Request) (*image.Image, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()
	return f.respond(ctx, req)
}

func staticText(text string) *fakeText {
	return &fakeText{respond: func(context.Context, prompt.TextRequest) (string, error) { return text, nil }}
}

func blockUntilDone(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}

var pngBytes = []byte{0x89, 'P', 'N', 'G', '\r', '\n'}

func pngImages() *fakeImages {
	return &fakeImages{respond: func(context.Context, image.Request) (*image.Image, error) {
		return &image.Image{MimeType: "image/png", Data: pngBytes}, nil
	}}
}
