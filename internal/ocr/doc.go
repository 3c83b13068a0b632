// Package ocr turns business-card images into text using Tesseract.
//
// Tesseract is reached through gosseract/v2, which needs libtesseract and
// its headers at build time. Those bindings are only compiled with the
// "tesseract" build tag:
//
//	go build -tags tesseract ./cmd/card-extract
//
// Without the tag the package still builds; Available reports false and
// Engine.Text returns ErrUnavailable, so text-only deployments need no C
// toolchain.
//
// # Prerequisites
//
// With the tag, Tesseract and its language data must be installed:
//   - Ubuntu/Debian: apt-get install libtesseract-dev tesseract-ocr-eng
//   - macOS: brew install tesseract
//
// Set Options.TessdataPrefix when the traineddata files live outside the
// default search path.
//
// # Preprocessing
//
// Engine.Text runs imaging.Prepare before recognition, so callers pass the
// decoded photo or scan as-is.
package ocr
