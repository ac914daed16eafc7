package handler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dmorgan81/seedream/internal/image"
	"github.com/dmorgan81/seedream/internal/request"
)

// Format renders a finished call for the tool caller.
func Format(r *Result) string {
	var b strings.Builder
	p := r.Payload

	fmt.Fprintf(&b, "Generated %d image(s) with SeeDream %s (%s)\n\n", len(r.Images), r.Version, r.Version.Model())
	fmt.Fprintf(&b, "Prompt: %s\n", r.Prompt)
	fmt.Fprintf(&b, "Aspect ratio: %v\n", p["aspect_ratio"])

	switch r.Version {
	case request.V3:
		if p["aspect_ratio"] == "custom" {
			fmt.Fprintf(&b, "Dimensions: %vx%v\n", p["width"], p["height"])
		} else {
			fmt.Fprintf(&b, "Size: %v\n", p["size"])
		}
		fmt.Fprintf(&b, "Guidance scale: %v\n", p["guidance_scale"])
		if seed, ok := p["seed"]; ok {
			fmt.Fprintf(&b, "Seed: %v\n", seed)
		} else {
			b.WriteString("Seed: random\n")
		}
	case request.V4:
		if p["size"] == "custom" {
			fmt.Fprintf(&b, "Size: custom (%vx%v)\n", p["width"], p["height"])
		} else {
			fmt.Fprintf(&b, "Size: %v\n", p["size"])
		}
		fmt.Fprintf(&b, "Max images: %v\n", p["max_images"])
		fmt.Fprintf(&b, "Sequential generation: %v\n", p["sequential_image_generation"])
		if inputs, ok := p["image_input"].([]string); ok && len(inputs) > 0 {
			fmt.Fprintf(&b, "Input images: %d\n", len(inputs))
		}
	}
	fmt.Fprintf(&b, "Elapsed: %d ms\n\n", r.Elapsed.Milliseconds())

	b.WriteString("Images:\n")
	for _, img := range r.Images {
		if img.Err != nil {
			fmt.Fprintf(&b, "%d. Download failed: %v\n", img.Index+1, img.Err)
		} else {
			fmt.Fprintf(&b, "%d. Saved to %s\n", img.Index+1, img.LocalPath)
		}
		fmt.Fprintf(&b, "   Source: %s\n", img.SourceURL)
		if img.MirrorKey != "" {
			fmt.Fprintf(&b, "   Mirror: %s\n", img.MirrorKey)
		}
	}

	fmt.Fprintf(&b, "\n%d of %d images saved locally.", r.Saved(), len(r.Images))
	if failed := len(r.Images) - r.Saved(); failed > 0 {
		fmt.Fprintf(&b, " %d download(s) failed; the source URLs above remain valid for a limited time.", failed)
	}
	return b.String()
}

// FormatError renders a failed call. Upstream and unexpected failures get a
// troubleshooting tip when the message matches a known pattern.
func FormatError(err error) string {
	var (
		cerr *ConfigurationError
		verr *request.ValidationError
		uerr *image.UpstreamError
		b    strings.Builder
	)

	switch {
	case errors.As(err, &cerr):
		fmt.Fprintf(&b, "Configuration error: %v", cerr)
		return b.String()
	case errors.As(err, &verr):
		fmt.Fprintf(&b, "Invalid request (%s): %s", verr.Kind, verr.Message)
		return b.String()
	case errors.As(err, &uerr):
		fmt.Fprintf(&b, "Error generating image (%s): %v", uerr.Kind, uerr)
	default:
		fmt.Fprintf(&b, "Error generating image: %v", err)
	}

	if tip, ok := image.Hint(err.Error()); ok {
		fmt.Fprintf(&b, "\n\nTip: %s", tip)
	}
	return b.String()
}
