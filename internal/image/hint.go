package image

import "strings"

var hints = []struct {
	needles []string
	tip     string
}{
	{
		needles: []string{"timeout", "timed out", "deadline exceeded"},
		tip:     "The model took too long. Try a smaller size, a simpler prompt, or raise SEEDREAM_REQUEST_TIMEOUT.",
	},
	{
		needles: []string{"401", "403", "unauthorized", "unauthenticated", "authentication", "invalid token"},
		tip:     "Check that REPLICATE_API_TOKEN is set to a valid Replicate API token.",
	},
	{
		needles: []string{"429", "rate limit", "too many requests"},
		tip:     "Replicate is rate limiting requests. Wait a moment before trying again.",
	},
}

// Hint returns a troubleshooting tip for an upstream failure message. It is
// advisory text only.
func Hint(message string) (string, bool) {
	message = strings.ToLower(message)
	for _, h := range hints {
		for _, needle := range h.needles {
			if strings.Contains(message, needle) {
				return h.tip, true
			}
		}
	}
	return "", false
}
