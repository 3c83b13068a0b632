package imaging

import (
	"image"
	"image/color"
	"math"

	imgproc "github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
)

// ContentBounds returns the smallest rectangle holding every pixel whose
// CIE L* lightness differs from the background by more than tolerance
// (0..1). The top-left pixel is taken as the background. ok is false when
// nothing stands out.
func ContentBounds(img image.Image, tolerance float64) (r image.Rectangle, ok bool) {
	b := img.Bounds()
	if b.Empty() {
		return image.Rectangle{}, false
	}
	bg, _ := lightness(img.At(b.Min.X, b.Min.Y))

	minX, minY := b.Max.X, b.Max.Y
	maxX, maxY := b.Min.X-1, b.Min.Y-1
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			l, opaque := lightness(img.At(x, y))
			if !opaque || math.Abs(l-bg) <= tolerance {
				continue
			}
			minX, maxX = min(minX, x), max(maxX, x)
			minY, maxY = min(minY, y), max(maxY, y)
		}
	}
	if maxX < minX {
		return image.Rectangle{}, false
	}
	return image.Rect(minX, minY, maxX+1, maxY+1), true
}

// TrimBorder crops the uniform margin around a card's content, keeping pad
// pixels of background on each side. Blank images come back uncropped.
func TrimBorder(img image.Image, tolerance float64, pad int) *image.NRGBA {
	r, ok := ContentBounds(img, tolerance)
	if !ok {
		return imgproc.Clone(img)
	}
	r = image.Rect(r.Min.X-pad, r.Min.Y-pad, r.Max.X+pad, r.Max.Y+pad).Intersect(img.Bounds())
	return imgproc.Crop(img, r)
}

// lightness returns the CIE L* lightness of c (0..1). Fully transparent
// colors report false.
func lightness(c color.Color) (float64, bool) {
	cf, ok := colorful.MakeColor(c)
	if !ok {
		return 0, false
	}
	l, _, _ := cf.Lab()
	return l, true
}
