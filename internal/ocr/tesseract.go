//go:build tesseract

package ocr

import (
	"fmt"

	"github.com/otiai10/gosseract/v2"
)

// Available reports whether Tesseract support is compiled in.
func Available() bool { return true }

// Version returns the linked Tesseract version.
func Version() string {
	client := gosseract.NewClient()
	defer client.Close()
	return client.Version()
}

// recognize runs Tesseract on PNG bytes.
//
// gosseract clients are not safe for concurrent use, so every call creates
// and closes its own.
func recognize(png []byte, language, tessdataPrefix string) (string, error) {
	client := gosseract.NewClient()
	defer client.Close()

	if tessdataPrefix != "" {
		if err := client.SetTessdataPrefix(tessdataPrefix); err != nil {
			return "", fmt.Errorf("failed to set tessdata path: %w", err)
		}
	}

	if err := client.SetLanguage(language); err != nil {
		return "", fmt.Errorf("failed to set language: %w", err)
	}

	// Cards are short, scattered blocks of text rather than paragraphs.
	if err := client.SetPageSegMode(gosseract.PSM_SPARSE_TEXT); err != nil {
		return "", fmt.Errorf("failed to set page segmentation mode: %w", err)
	}

	if err := client.SetImageFromBytes(png); err != nil {
		return "", fmt.Errorf("failed to set image: %w", err)
	}

	return client.Text()
}
