package request

var (
	V3AspectRatios = []string{"1:1", "3:4", "4:3", "16:9", "9:16", "2:3", "3:2", "21:9", "custom"}
	V3Sizes        = []string{"small", "regular", "big"}
)

const (
	V3DefaultAspectRatio   = "16:9"
	V3DefaultSize          = "regular"
	V3DefaultGuidanceScale = 2.5
	V3MinGuidanceScale     = 1.0
	V3MaxGuidanceScale     = 10.0
	V3MinDimension         = 512
	V3MaxDimension         = 2048
	V3MaxSeed              = 2147483647

	DefaultDimension = 2048
)

// V3Request normalizes input for seedream-3. The "custom" sentinel lives on
// aspect_ratio: it switches sizing from the named size to explicit pixels.
type V3Request struct{}

func (V3Request) Normalize(raw map[string]any) (Payload, error) {
	prompt, err := requirePrompt(raw)
	if err != nil {
		return nil, err
	}
	aspect, err := enum(raw, "aspect_ratio", V3AspectRatios, V3DefaultAspectRatio, KindInvalidAspectRatio)
	if err != nil {
		return nil, err
	}
	size, err := enum(raw, "size", V3Sizes, V3DefaultSize, KindInvalidSize)
	if err != nil {
		return nil, err
	}

	payload := Payload{
		"prompt":         prompt,
		"aspect_ratio":   aspect,
		"guidance_scale": V3DefaultGuidanceScale,
	}

	if aspect == "custom" {
		width, height, err := dimensions(raw, V3MinDimension, V3MaxDimension, DefaultDimension)
		if err != nil {
			return nil, err
		}
		payload["width"] = width
		payload["height"] = height
	} else {
		payload["size"] = size
	}

	// Out of range or mistyped tuning values are dropped, not rejected.
	if g, ok := number(raw["guidance_scale"]); ok && g >= V3MinGuidanceScale && g <= V3MaxGuidanceScale {
		payload["guidance_scale"] = g
	}
	if seed, ok := integer(raw["seed"]); ok && seed >= 0 && seed <= V3MaxSeed {
		payload["seed"] = seed
	}
	return payload, nil
}
