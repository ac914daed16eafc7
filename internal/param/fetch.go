package param

import "context"

// Fetcher reads a single secret parameter by name.
type Fetcher interface {
	Fetch(context.Context, string) (string, error)
}
