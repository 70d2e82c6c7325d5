package testsupport

import (
	"testing"

	"fluxcal/internal/imageio"
)

// Uniform builds a frame with every pixel set to value.
func Uniform(value float32, axes ...int) *imageio.Frame {
	frame := imageio.NewFrame(axes...)
	for i := range frame.Pixels {
		frame.Pixels[i] = value
	}
	return frame
}

// WriteFrame persists a frame with the given header cards, failing the test
// on error.
func WriteFrame(t *testing.T, path string, frame *imageio.Frame, cards ...imageio.Card) {
	t.Helper()

	hdr := imageio.NewHeader()
	for _, card := range cards {
		hdr.Set(card.Name, card.Value, card.Comment)
	}
	if err := imageio.WriteFrame(path, frame, hdr); err != nil {
		t.Fatalf("write frame %s: %v", path, err)
	}
}

// ReadFrame loads a frame, failing the test on error.
func ReadFrame(t *testing.T, path string) (*imageio.Frame, *imageio.Header) {
	t.Helper()

	frame, hdr, err := imageio.ReadFrame(path)
	if err != nil {
		t.Fatalf("read frame %s: %v", path, err)
	}
	return frame, hdr
}
