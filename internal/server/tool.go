package server

import (
	"fmt"
	"strings"

	"github.com/dmorgan81/seedream/internal/request"
	"github.com/mark3labs/mcp-go/mcp"
)

const ToolName = "generate_image"

// Tool declares generate_image with the input schema of the given model version.
func Tool(v request.Version) mcp.Tool {
	if v == request.V3 {
		return v3Tool()
	}
	return v4Tool()
}

func v3Tool() mcp.Tool {
	return mcp.NewTool(ToolName,
		mcp.WithDescription("Generate an image with Bytedance SeeDream 3 on Replicate and save it to the local output directory."),
		mcp.WithString("prompt",
			mcp.Required(),
			mcp.Description("Text description of the image to generate."),
		),
		mcp.WithString("aspect_ratio",
			mcp.Enum(request.V3AspectRatios...),
			mcp.DefaultString(request.V3DefaultAspectRatio),
			mcp.Description("Image aspect ratio. Use custom to set width and height explicitly."),
		),
		mcp.WithString("size",
			mcp.Enum(request.V3Sizes...),
			mcp.DefaultString(request.V3DefaultSize),
			mcp.Description("Image size class. Ignored when aspect_ratio is custom."),
		),
		dimension("width", request.V3MinDimension, request.V3MaxDimension, "aspect_ratio is custom"),
		dimension("height", request.V3MinDimension, request.V3MaxDimension, "aspect_ratio is custom"),
		mcp.WithNumber("guidance_scale",
			mcp.Min(request.V3MinGuidanceScale),
			mcp.Max(request.V3MaxGuidanceScale),
			mcp.DefaultNumber(request.V3DefaultGuidanceScale),
			mcp.Description("How closely the image follows the prompt. Higher is more literal."),
		),
		mcp.WithNumber("seed",
			mcp.Min(0),
			mcp.Max(request.V3MaxSeed),
			mcp.Description("Random seed for reproducible output. Omit for a random seed."),
		),
	)
}

func v4Tool() mcp.Tool {
	return mcp.NewTool(ToolName,
		mcp.WithDescription("Generate or edit images with Bytedance SeeDream 4 on Replicate and save them to the local output directory."),
		mcp.WithString("prompt",
			mcp.Required(),
			mcp.Description("Text description of the image to generate, or of the edit to apply to the input images."),
		),
		mcp.WithString("size",
			mcp.Enum(request.V4Sizes...),
			mcp.DefaultString(request.V4DefaultSize),
			mcp.Description("Output resolution. Use custom to set width and height explicitly."),
		),
		mcp.WithString("aspect_ratio",
			mcp.Enum(request.V4AspectRatios...),
			mcp.DefaultString(request.V4DefaultAspectRatio),
			mcp.Description("Image aspect ratio. match_input_image follows the first input image."),
		),
		dimension("width", request.V4MinDimension, request.V4MaxDimension, "size is custom"),
		dimension("height", request.V4MinDimension, request.V4MaxDimension, "size is custom"),
		mcp.WithArray("image_input",
			mcp.Items(map[string]any{"type": "string", "format": "uri"}),
			mcp.Description(fmt.Sprintf("Up to %d input image URLs for editing or reference.", request.V4MaxInputImages)),
		),
		mcp.WithNumber("max_images",
			mcp.Min(request.V4MinImages),
			mcp.Max(request.V4MaxImages),
			mcp.DefaultNumber(request.V4MinImages),
			mcp.Description("Maximum number of images to generate when sequential generation is auto."),
		),
		mcp.WithString("sequential_image_generation",
			mcp.Enum(request.SequentialModes...),
			mcp.DefaultString(request.V4DefaultSequentialMode),
			mcp.Description(fmt.Sprintf("Set to auto to let the model produce a related series of images (%s).", strings.Join(request.SequentialModes, ", "))),
		),
	)
}

func dimension(name string, lower, upper int, when string) mcp.ToolOption {
	return mcp.WithNumber(name,
		mcp.Min(float64(lower)),
		mcp.Max(float64(upper)),
		mcp.DefaultNumber(request.DefaultDimension),
		mcp.Description(fmt.Sprintf("Image %s in pixels (%d-%d). Only used when %s.", name, lower, upper, when)),
	)
}
