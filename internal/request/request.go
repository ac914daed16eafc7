// Package request turns loosely typed tool arguments into the exact input payload
// a SeeDream model expects. Each model version has its own schema; the version
// picks the Normalizer and nothing else branches on it.
package request

import (
	"fmt"
	"math"
	"strings"

	"github.com/samber/lo"
)

type Version string

const (
	V3 Version = "v3"
	V4 Version = "v4"
)

var models = map[Version]string{
	V3: "bytedance/seedream-3",
	V4: "bytedance/seedream-4",
}

// Model returns the Replicate model identifier for the version.
func (v Version) Model() string {
	return models[v]
}

// Payload is the normalized upstream input. encoding/json sorts map keys, so
// identical payloads always encode to identical bytes.
type Payload map[string]any

type Normalizer interface {
	Normalize(raw map[string]any) (Payload, error)
}

func ForVersion(v Version) (Normalizer, error) {
	switch v {
	case V3:
		return V3Request{}, nil
	case V4:
		return V4Request{}, nil
	default:
		return nil, fmt.Errorf("unknown model version %q: must be one of %s, %s", v, V3, V4)
	}
}

func Normalize(raw map[string]any, v Version) (Payload, error) {
	n, err := ForVersion(v)
	if err != nil {
		return nil, err
	}
	return n.Normalize(raw)
}

func requirePrompt(raw map[string]any) (string, error) {
	prompt, ok := raw["prompt"].(string)
	if !ok || strings.TrimSpace(prompt) == "" {
		return "", invalid(KindMissingPrompt, "prompt is required and must be a non-empty string")
	}
	return prompt, nil
}

// enum returns the value of an optional enumerated field, or def when it is absent.
func enum(raw map[string]any, key string, set []string, def string, kind Kind) (string, error) {
	v, present := raw[key]
	if !present || v == nil {
		return def, nil
	}
	s, ok := v.(string)
	if !ok || !lo.Contains(set, s) {
		return "", notInSet(kind, strings.ReplaceAll(key, "_", " "), v, set)
	}
	return s, nil
}

// integer converts a decoded JSON number (or a Go integer) to an int. Fractional
// values are not integers.
func integer(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case float64:
		if n != math.Trunc(n) || math.IsInf(n, 0) || n > math.MaxInt32 || n < math.MinInt32 {
			return 0, false
		}
		return int(n), true
	case float32:
		return integer(float64(n))
	default:
		return 0, false
	}
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

// dimensions validates width and height in custom sizing mode. Absent values
// take def.
func dimensions(raw map[string]any, minDim, maxDim, def int) (int, int, error) {
	out := [2]int{def, def}
	for i, key := range []string{"width", "height"} {
		v, present := raw[key]
		if !present || v == nil {
			continue
		}
		n, ok := integer(v)
		if !ok || n < minDim || n > maxDim {
			return 0, 0, invalid(KindInvalidDimensions, "%s must be an integer between %d and %d, got %v", key, minDim, maxDim, v)
		}
		out[i] = n
	}
	return out[0], out[1], nil
}
