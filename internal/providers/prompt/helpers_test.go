package prompt

import (
	"testing"

	"github.com/google/generative-ai-go/genai"
)

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Suggestion string `json:"suggestion"`
	}
	cases := []struct {
		name string
		raw  string
		want string
		ok   bool
	}{
		{name: "plain", raw: `{"suggestion":"a"}`, want: "a", ok: true},
		{name: "fenced", raw: "```json\n{\"suggestion\":\"b\"}\n```", want: "b", ok: true},
		{name: "prose around", raw: "Here you go: {\"suggestion\":\"c\"} enjoy", want: "c", ok: true},
		{name: "empty", raw: "   ", ok: false},
		{name: "broken", raw: `{"suggestion":`, ok: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := DecodeJSON[payload](tc.raw)
			if tc.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tc.ok && err == nil {
				t.Fatalf("expected error")
			}
			if got.Suggestion != tc.want {
				t.Fatalf("suggestion = %q, want %q", got.Suggestion, tc.want)
			}
		})
	}
}

func TestCleanText(t *testing.T) {
	if got := CleanText("```\nA bright poster\n```"); got != "A bright poster" {
		t.Fatalf("CleanText = %q", got)
	}
}

func TestToGenaiSchema(t *testing.T) {
	s := &Schema{
		Type: TypeArray,
		Items: &Schema{
			Type:     TypeObject,
			Required: []string{"headline"},
			Properties: map[string]*Schema{
				"headline": {Type: TypeString},
				"score":    {Type: TypeInteger},
			},
		},
	}
	got := toGenaiSchema(s)
	if got.Type != genai.TypeArray || got.Items == nil || got.Items.Type != genai.TypeObject {
		t.Fatalf("unexpected schema: %+v", got)
	}
	if got.Items.Properties["score"].Type != genai.TypeInteger {
		t.Fatalf("score type = %v", got.Items.Properties["score"].Type)
	}
	if len(got.Items.Required) != 1 || got.Items.Required[0] != "headline" {
		t.Fatalf("required = %v", got.Items.Required)
	}
}

func TestResponseText(t *testing.T) {
	resp := &genai.GenerateContentResponse{Candidates: []*genai.Candidate{
		{Content: nil},
		{Content: &genai.Content{Parts: []genai.Part{genai.Text("[{\"a\":"), genai.Text("1}]")}}},
	}}
	if got := responseText(resp); got != `[{"a":1}]` {
		t.Fatalf("responseText = %q", got)
	}
	if responseText(nil) != "" {
		t.Fatalf("expected empty text for nil response")
	}
}
