package ocr

import (
	"errors"
	"fmt"
	"image"

	"github.com/ironsheep/card-extract/internal/imaging"
)

// ErrUnavailable is returned when the binary was built without Tesseract
// support.
var ErrUnavailable = errors.New("ocr engine not available (build with -tags tesseract)")

// DefaultLanguage is the Tesseract language code used when none is set.
const DefaultLanguage = "eng"

// Options configures an Engine.
type Options struct {
	// Language is a Tesseract language code such as "eng".
	Language string

	// TessdataPrefix overrides the directory holding *.traineddata files.
	TessdataPrefix string

	// Prepare controls image preprocessing before recognition.
	Prepare imaging.PrepareOptions
}

// Engine recognizes text on card images. It holds no Tesseract state between
// calls and is safe for concurrent use; each call gets its own client.
type Engine struct {
	opts Options
}

// New returns an Engine. An empty Language falls back to DefaultLanguage.
func New(opts Options) *Engine {
	if opts.Language == "" {
		opts.Language = DefaultLanguage
	}
	return &Engine{opts: opts}
}

// Language reports the configured Tesseract language.
func (e *Engine) Language() string {
	return e.opts.Language
}

// Text preprocesses img and returns the text Tesseract recognizes on it.
func (e *Engine) Text(img image.Image) (string, error) {
	if !Available() {
		return "", ErrUnavailable
	}
	if img == nil {
		return "", errors.New("ocr: nil image")
	}

	data, err := imaging.EncodePNG(imaging.Prepare(img, e.opts.Prepare))
	if err != nil {
		return "", err
	}

	text, err := recognize(data, e.opts.Language, e.opts.TessdataPrefix)
	if err != nil {
		return "", fmt.Errorf("ocr failed: %w", err)
	}
	return text, nil
}
