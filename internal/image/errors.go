package image

import "fmt"

type Kind string

const (
	KindCallFailed      Kind = "CallFailed"
	KindTimeout         Kind = "Timeout"
	KindEmptyOutput     Kind = "EmptyOutput"
	KindMalformedOutput Kind = "MalformedOutput"
)

// UpstreamError is fatal for the call that produced it. Nothing retries it.
type UpstreamError struct {
	Kind Kind
	Err  error
}

func (e *UpstreamError) Error() string {
	switch e.Kind {
	case KindTimeout:
		return fmt.Sprintf("image generation timed out: %v", e.Err)
	case KindEmptyOutput:
		return "model returned no images"
	case KindMalformedOutput:
		return fmt.Sprintf("model returned malformed output: %v", e.Err)
	default:
		return fmt.Sprintf("image generation failed: %v", e.Err)
	}
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}
