package request

import (
	"fmt"
	"strings"
)

type Kind string

const (
	KindMissingPrompt         Kind = "MissingPrompt"
	KindInvalidAspectRatio    Kind = "InvalidAspectRatio"
	KindInvalidSize           Kind = "InvalidSize"
	KindInvalidSequentialMode Kind = "InvalidSequentialMode"
	KindInvalidMaxImages      Kind = "InvalidMaxImages"
	KindTooManyInputImages    Kind = "TooManyInputImages"
	KindInvalidImageInput     Kind = "InvalidImageInput"
	KindInvalidDimensions     Kind = "InvalidDimensions"
)

// ValidationError reports caller input that was rejected before any remote call.
type ValidationError struct {
	Kind    Kind
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(kind Kind, format string, args ...any) error {
	return &ValidationError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func notInSet(kind Kind, field string, value any, set []string) error {
	return invalid(kind, "invalid %s %v: must be one of %s", field, value, strings.Join(set, ", "))
}
