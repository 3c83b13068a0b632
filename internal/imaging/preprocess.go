package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"github.com/anthonynsimon/bild/segment"
	imgproc "github.com/disintegration/imaging"
)

// PrepareOptions controls OCR preprocessing.
type PrepareOptions struct {
	// MinWidth is the width narrower scans are upscaled to. Tesseract reads
	// small card photos far better at roughly 300 DPI. Zero disables scaling.
	MinWidth int

	// Contrast is the percentage passed to the contrast adjustment
	// (-100..100). Zero leaves contrast alone.
	Contrast float64

	// TrimTolerance is the lightness difference from the background that
	// counts as content when trimming margins. Zero disables trimming.
	TrimTolerance float64
	TrimPadding   int

	// DarkThreshold is the mean CIE L* lightness (0..1) below which the card
	// is treated as light text on a dark background and inverted.
	DarkThreshold float64

	// Binarize applies a global threshold at Level after the other steps.
	Binarize bool
	Level    uint8
}

// DefaultPrepareOptions returns the settings used by the service.
func DefaultPrepareOptions() PrepareOptions {
	return PrepareOptions{
		MinWidth:      1200,
		Contrast:      20,
		TrimTolerance: 0.1,
		TrimPadding:   12,
		DarkThreshold: 0.45,
		Level:         128,
	}
}

// Prepare returns a grayscale copy of img tuned for OCR. The input is not
// modified.
//
// Steps, in order: grayscale, margin trim, upscale to MinWidth (Lanczos),
// invert when the card is dark, contrast boost, optional binarization.
func Prepare(img image.Image, opts PrepareOptions) image.Image {
	out := imgproc.Grayscale(img)

	if opts.TrimTolerance > 0 {
		out = TrimBorder(out, opts.TrimTolerance, opts.TrimPadding)
	}

	if w := out.Bounds().Dx(); opts.MinWidth > 0 && w > 0 && w < opts.MinWidth {
		out = imgproc.Resize(out, opts.MinWidth, 0, imgproc.Lanczos)
	}

	if opts.DarkThreshold > 0 && MeanLightness(out) < opts.DarkThreshold {
		out = imgproc.Invert(out)
	}

	if opts.Contrast != 0 {
		out = imgproc.AdjustContrast(out, opts.Contrast)
	}

	if opts.Binarize {
		return segment.Threshold(out, opts.Level)
	}
	return out
}

// lightnessSamples caps the grid used by MeanLightness per axis.
const lightnessSamples = 64

// MeanLightness returns the average CIE L* lightness (0 = black, 1 = white)
// over an evenly spaced sample grid. Fully transparent pixels are skipped.
// An empty image reports 1.
func MeanLightness(img image.Image) float64 {
	b := img.Bounds()
	if b.Empty() {
		return 1
	}

	stepX := max(1, b.Dx()/lightnessSamples)
	stepY := max(1, b.Dy()/lightnessSamples)

	var sum float64
	var n int
	for y := b.Min.Y; y < b.Max.Y; y += stepY {
		for x := b.Min.X; x < b.Max.X; x += stepX {
			l, ok := lightness(img.At(x, y))
			if !ok {
				continue
			}
			sum += l
			n++
		}
	}
	if n == 0 {
		return 1
	}
	return sum / float64(n)
}

// EncodePNG encodes img as PNG bytes for engines that take a buffer.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode png: %w", err)
	}
	return buf.Bytes(), nil
}
