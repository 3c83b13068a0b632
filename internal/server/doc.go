// Package server exposes business-card extraction over two transports.
//
// # MCP
//
// Run (or Serve, for arbitrary streams) speaks JSON-RPC 2.0 over stdio,
// one request per line. Supported methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// Tools:
//   - card_extract: Extract fields from card text
//   - card_extract_image: OCR a card image file, then extract
//   - card_health: Liveness, version and OCR availability
//
// Tool arguments are validated against the tool's inputSchema before
// dispatch; violations return -32602. Tool failures return -32000 with the
// Go error string in data.
//
// # HTTP
//
// Handler returns the JSON API (POST /extract, POST /extract/image,
// GET /health). Every response carries an X-Request-ID header. Error
// bodies are {"error": "..."}; status codes follow the error kind:
//   - 400: body is not a JSON object, wrong field types, undecodable image
//   - 413: body over the configured limit
//   - 500: recognizer fault or panic
//   - 503: OCR not compiled in
//
// # Image Caching
//
// card_extract_image decodes files through an imaging.ImageCache shared
// for the server's lifetime, so re-running extraction on the same path
// skips decoding. Results are never cached.
package server
