package concepts

import "strings"

// DefaultAspectRatio is used when no supported ratio is found.
const DefaultAspectRatio = "3:4"

// aspectPriority is checked in order and the first substring hit wins.
var aspectPriority = []string{"1:1", "9:16", "16:9", "4:3", "3:4"}

// DeriveAspectRatio picks one target ratio from a brief's platform tags.
func DeriveAspectRatio(platforms []string) string {
	joined := strings.Join(platforms, " ")
	for _, ratio := range aspectPriority {
		if strings.Contains(joined, ratio) {
			return ratio
		}
	}
	return DefaultAspectRatio
}

// NormalizeAspectRatio maps a requested ratio onto the supported set.
func NormalizeAspectRatio(requested string) string {
	requested = strings.TrimSpace(requested)
	if requested == "" {
		return DefaultAspectRatio
	}
	for _, ratio := range aspectPriority {
		if strings.Contains(requested, ratio) {
			return ratio
		}
	}
	return DefaultAspectRatio
}
