//go:build !tesseract

package ocr

// Available reports whether Tesseract support is compiled in.
func Available() bool { return false }

// Version returns the linked Tesseract version, or "" without Tesseract.
func Version() string { return "" }

func recognize(_ []byte, _, _ string) (string, error) {
	return "", ErrUnavailable
}
