// Package imaging loads business-card images and prepares them for OCR.
//
// Cards arrive either as a file path (MCP tool calls) or as base64 bytes
// (HTTP uploads). Paths go through ImageCache, a bounded LRU that decodes a
// file again once its size or modification time changes; bytes go through
// Decode or DecodeBase64. PNG, JPEG and GIF are supported.
//
// # Preprocessing
//
// Prepare turns a photo or scan into a grayscale image Tesseract reads well:
//
//   - Grayscale conversion
//   - Margin trimming to the content bounds plus PrepareOptions.TrimPadding,
//     skipped when PrepareOptions.TrimTolerance is zero
//   - Upscaling of narrow images to PrepareOptions.MinWidth
//   - Inversion of dark cards, detected by mean CIE L* lightness
//   - Contrast boost
//   - Optional global threshold (binarization)
//
// Prepare never mutates its input, so images held in ImageCache can be
// prepared concurrently with different options.
//
// # Errors
//
// Undecodable input is reported as ErrDecode so transports can map it to a
// client error.
package imaging
