package prompt

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// DecodeJSON extracts the first JSON document from model output, tolerating
// markdown fences and surrounding prose.
func DecodeJSON[T any](raw string) (T, error) {
	var zero T
	cleaned := extractJSONFragment(raw)
	if cleaned == "" {
		return zero, errors.New("empty payload")
	}
	var decoded T
	if err := json.Unmarshal([]byte(cleaned), &decoded); err != nil {
		return zero, err
	}
	return decoded, nil
}

// CleanText strips markdown fences and whitespace from free-text output.
func CleanText(raw string) string {
	return trimCodeFence(raw)
}

func extractJSONFragment(raw string) string {
	text := strings.TrimSpace(raw)
	if text == "" {
		return ""
	}
	text = trimCodeFence(text)
	start := strings.IndexAny(text, "{[")
	end := strings.LastIndexAny(text, "]}")
	if start >= 0 && end >= start {
		text = text[start : end+1]
	}
	return strings.TrimSpace(text)
}

func trimCodeFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```JSON")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSpace(trimmed)
	if idx := strings.LastIndex(trimmed, "```"); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	return strings.TrimSpace(trimmed)
}

// describeSchema renders s as a compact JSON-like shape for providers that
// cannot take a schema natively.
func describeSchema(s *Schema) string {
	if s == nil {
		return ""
	}
	sb := &strings.Builder{}
	writeSchema(sb, s)
	return sb.String()
}

func writeSchema(sb *strings.Builder, s *Schema) {
	switch s.Type {
	case TypeObject:
		keys := make([]string, 0, len(s.Properties))
		for k := range s.Properties {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		sb.WriteString("{")
		for i, k := range keys {
			if i > 0 {
				sb.WriteString(",")
			}
			fmt.Fprintf(sb, "%q:", k)
			writeSchema(sb, s.Properties[k])
		}
		sb.WriteString("}")
	case TypeArray:
		sb.WriteString("[")
		if s.Items != nil {
			writeSchema(sb, s.Items)
		}
		sb.WriteString("]")
	default:
		sb.WriteString(string(s.Type))
	}
}
