package imageio

import (
	"fmt"
	"os"
	"strings"

	"github.com/astrogo/fitsio"
)

// reserved keywords managed by the FITS codec itself; never copied into or
// out of the portable Header representation.
func reservedKeyword(name string) bool {
	switch name {
	case "SIMPLE", "BITPIX", "NAXIS", "EXTEND", "BSCALE", "BZERO", "END":
		return true
	}
	return strings.HasPrefix(name, "NAXIS")
}

// ReadFrame loads the primary HDU of a FITS file as a float32 frame plus its
// header cards.
func ReadFrame(path string) (*Frame, *Header, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open image %s: %w", path, err)
	}
	defer file.Close()

	fits, err := fitsio.Open(file)
	if err != nil {
		return nil, nil, fmt.Errorf("parse image %s: %w", path, err)
	}
	defer fits.Close()

	hdu := fits.HDU(0)
	img, ok := hdu.(fitsio.Image)
	if !ok {
		return nil, nil, fmt.Errorf("image %s: primary HDU is not an image", path)
	}

	fitsHdr := img.Header()
	axes := append([]int(nil), fitsHdr.Axes()...)
	n := 1
	for _, axis := range axes {
		n *= axis
	}

	pixels, err := readPixels(img, fitsHdr.Bitpix(), n)
	if err != nil {
		return nil, nil, fmt.Errorf("read image %s: %w", path, err)
	}

	hdr := NewHeader()
	for _, key := range fitsHdr.Keys() {
		if reservedKeyword(key) {
			continue
		}
		if card := fitsHdr.Get(key); card != nil {
			hdr.Set(card.Name, card.Value, card.Comment)
		}
	}

	return &Frame{Axes: axes, Pixels: pixels}, hdr, nil
}

func readPixels(img fitsio.Image, bitpix, n int) ([]float32, error) {
	out := make([]float32, n)
	switch bitpix {
	case 8:
		raw := make([]int8, n)
		if err := img.Read(&raw); err != nil {
			return nil, err
		}
		for i, v := range raw {
			out[i] = float32(v)
		}
	case 16:
		raw := make([]int16, n)
		if err := img.Read(&raw); err != nil {
			return nil, err
		}
		for i, v := range raw {
			out[i] = float32(v)
		}
	case 32:
		raw := make([]int32, n)
		if err := img.Read(&raw); err != nil {
			return nil, err
		}
		for i, v := range raw {
			out[i] = float32(v)
		}
	case 64:
		raw := make([]int64, n)
		if err := img.Read(&raw); err != nil {
			return nil, err
		}
		for i, v := range raw {
			out[i] = float32(v)
		}
	case -32:
		if err := img.Read(&out); err != nil {
			return nil, err
		}
	case -64:
		raw := make([]float64, n)
		if err := img.Read(&raw); err != nil {
			return nil, err
		}
		for i, v := range raw {
			out[i] = float32(v)
		}
	default:
		return nil, fmt.Errorf("unsupported BITPIX %d", bitpix)
	}
	return out, nil
}

// WriteFrame writes a frame as a single-HDU float32 FITS file. Failures
// propagate; a partially written destination is removed.
func WriteFrame(path string, frame *Frame, hdr *Header) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create image %s: %w", path, err)
	}

	if err := writeFrame(file, frame, hdr); err != nil {
		_ = file.Close()
		_ = os.Remove(path)
		return fmt.Errorf("write image %s: %w", path, err)
	}
	if err := file.Close(); err != nil {
		_ = os.Remove(path)
		return fmt.Errorf("close image %s: %w", path, err)
	}
	return nil
}

func writeFrame(file *os.File, frame *Frame, hdr *Header) error {
	fits, err := fitsio.Create(file)
	if err != nil {
		return err
	}
	defer fits.Close()

	img := fitsio.NewImage(-32, frame.Axes)
	defer img.Close()

	for _, card := range hdr.Cards() {
		if reservedKeyword(card.Name) {
			continue
		}
		if err := img.Header().Append(fitsio.Card{
			Name:    card.Name,
			Value:   card.Value,
			Comment: card.Comment,
		}); err != nil {
			return err
		}
	}

	if err := img.Write(&frame.Pixels); err != nil {
		return err
	}
	return fits.Write(img)
}
