package image

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/dmorgan81/seedream/internal/request"
)

type urler interface {
	URL() string
}

// Refs extracts the ordered image URLs from a raw model output. seedream-3
// yields one reference, seedream-4 a list.
func Refs(version request.Version, output any) ([]string, error) {
	if version == request.V3 {
		u, err := ref(output)
		if err != nil {
			return nil, &UpstreamError{Kind: KindMalformedOutput, Err: err}
		}
		return []string{u}, nil
	}

	var items []any
	switch out := output.(type) {
	case []any:
		items = out
	case []string:
		for _, s := range out {
			items = append(items, s)
		}
	case nil:
	default:
		return nil, &UpstreamError{Kind: KindMalformedOutput, Err: fmt.Errorf("expected a list of image URLs, got %T", output)}
	}

	if len(items) == 0 {
		return nil, &UpstreamError{Kind: KindEmptyOutput}
	}

	refs := make([]string, 0, len(items))
	for i, item := range items {
		u, err := ref(item)
		if err != nil {
			return nil, &UpstreamError{Kind: KindMalformedOutput, Err: fmt.Errorf("output[%d]: %w", i, err)}
		}
		refs = append(refs, u)
	}
	return refs, nil
}

func ref(v any) (string, error) {
	var s string
	switch r := v.(type) {
	case string:
		s = r
	case urler:
		s = r.URL()
	case fmt.Stringer:
		s = r.String()
	case nil:
		return "", errors.New("missing image reference")
	default:
		return "", fmt.Errorf("unexpected image reference of type %T", v)
	}

	u, err := url.Parse(s)
	if err != nil {
		return "", err
	}
	if !u.IsAbs() || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return "", fmt.Errorf("%q is not an absolute http(s) URL", s)
	}
	return s, nil
}
