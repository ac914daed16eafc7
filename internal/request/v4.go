package request

var (
	V4AspectRatios  = []string{"match_input_image", "1:1", "3:4", "4:3", "16:9", "9:16", "2:3", "3:2", "21:9"}
	V4Sizes         = []string{"1K", "2K", "4K", "custom"}
	SequentialModes = []string{"disabled", "auto"}
)

const (
	V4DefaultAspectRatio    = "match_input_image"
	V4DefaultSize           = "2K"
	V4DefaultSequentialMode = "disabled"
	V4MinDimension          = 1024
	V4MaxDimension          = 4096
	V4MinImages             = 1
	V4MaxImages             = 15
	V4MaxInputImages        = 10
)

// V4Request normalizes input for seedream-4. Here the "custom" sentinel lives
// on size, and aspect_ratio is always sent.
type V4Request struct{}

func (V4Request) Normalize(raw map[string]any) (Payload, error) {
	prompt, err := requirePrompt(raw)
	if err != nil {
		return nil, err
	}
	aspect, err := enum(raw, "aspect_ratio", V4AspectRatios, V4DefaultAspectRatio, KindInvalidAspectRatio)
	if err != nil {
		return nil, err
	}
	size, err := enum(raw, "size", V4Sizes, V4DefaultSize, KindInvalidSize)
	if err != nil {
		return nil, err
	}
	mode, err := enum(raw, "sequential_image_generation", SequentialModes, V4DefaultSequentialMode, KindInvalidSequentialMode)
	if err != nil {
		return nil, err
	}

	maxImages := V4MinImages
	if v, present := raw["max_images"]; present && v != nil {
		n, ok := integer(v)
		if !ok || n < V4MinImages || n > V4MaxImages {
			return nil, invalid(KindInvalidMaxImages, "max_images must be an integer between %d and %d, got %v", V4MinImages, V4MaxImages, v)
		}
		maxImages = n
	}

	images, err := imageInput(raw["image_input"])
	if err != nil {
		return nil, err
	}

	payload := Payload{
		"prompt":                      prompt,
		"size":                        size,
		"aspect_ratio":                aspect,
		"max_images":                  maxImages,
		"image_input":                 images,
		"sequential_image_generation": mode,
	}

	if size == "custom" {
		width, height, err := dimensions(raw, V4MinDimension, V4MaxDimension, DefaultDimension)
		if err != nil {
			return nil, err
		}
		payload["width"] = width
		payload["height"] = height
	}
	return payload, nil
}

func imageInput(v any) ([]string, error) {
	var items []any
	switch in := v.(type) {
	case nil:
		return []string{}, nil
	case []string:
		items = make([]any, len(in))
		for i, s := range in {
			items[i] = s
		}
	case []any:
		items = in
	default:
		return nil, invalid(KindInvalidImageInput, "image_input must be an array of image URLs")
	}

	if len(items) > V4MaxInputImages {
		return nil, invalid(KindTooManyInputImages, "image_input accepts at most %d images, got %d", V4MaxInputImages, len(items))
	}

	out := make([]string, 0, len(items))
	for i, item := range items {
		s, ok := item.(string)
		if !ok || s == "" {
			return nil, invalid(KindInvalidImageInput, "image_input[%d] must be a non-empty URL string", i)
		}
		out = append(out, s)
	}
	return out, nil
}
