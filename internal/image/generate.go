package image

import (
	"context"

	"github.com/dmorgan81/seedream/internal/request"
)

// Generator runs a hosted model and returns its raw output: a single image
// reference or an ordered list of them.
type Generator interface {
	Generate(ctx context.Context, model string, payload request.Payload) (any, error)
}
