package schema

// ImageRequest is a provider-neutral image generation request handed to
// the generation queue.
type ImageRequest struct {
	Prompt   string `json:"prompt"`
	Negative string `json:"negative_prompt,omitempty"`
	Width    int    `json:"width,omitempty"`
	Height   int    `json:"height,omitempty"`
	Count    int    `json:"count,omitempty"`
}

// DefaultImageRequest returns the standard full-body portrait canvas.
func DefaultImageRequest() *ImageRequest {
	return &ImageRequest{
		Negative: "lowres, bad anatomy, bad hands, missing fingers, extra digit, fewer digits, cropped",
		Width:    832,
		Height:   1216,
		Count:    1,
	}
}
