package generator

import (
	"bytes"
	"image/png"
	"testing"
)

func TestRenderPlaceholder(t *testing.T) {
	rendered := RenderPlaceholder("any prompt")
	if len(rendered) == 0 {
		t.Fatal("RenderPlaceholder() returned no bytes")
	}

	img, err := png.Decode(bytes.NewReader(rendered))
	if err != nil {
		t.Fatalf("placeholder is not a valid PNG: %v", err)
	}

	bounds := img.Bounds()
	if bounds.Dx() != placeholderSize || bounds.Dy() != placeholderSize {
		t.Errorf("placeholder size = %dx%d, want %dx%d",
			bounds.Dx(), bounds.Dy(), placeholderSize, placeholderSize)
	}
}

func TestRenderPlaceholderIgnoresPrompt(t *testing.T) {
	// Different prompts must both yield usable placeholders; content is
	// not derived from the prompt.
	for _, prompt := range []string{"", "beach scene", "totally different"} {
		if rendered := RenderPlaceholder(prompt); len(rendered) == 0 {
			t.Errorf("RenderPlaceholder(%q) returned no bytes", prompt)
		}
	}
}
