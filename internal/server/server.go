package server

import (
	"bufio"
	"encoding/json"
	"fmt"
	"image"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/ironsheep/card-extract/internal/card"
	"github.com/ironsheep/card-extract/internal/imaging"
	"github.com/ironsheep/card-extract/internal/ocr"
)

// Extractor turns raw card text into a record. *card.Pipeline implements it.
type Extractor interface {
	Extract(raw string) (card.Record, error)
}

// TextRecognizer reads the text printed on a card image. *ocr.Engine
// implements it.
type TextRecognizer interface {
	Text(img image.Image) (string, error)
}

// ImageExtraction is the result of extracting a card from an image: the
// record plus the OCR text it was built from.
type ImageExtraction struct {
	card.Record
	OCRText string `json:"ocr_text"`
}

// Server serves card extraction over MCP (stdio) and HTTP. Both transports
// share the same extractor, OCR engine and image cache.
type Server struct {
	extractor Extractor
	ocr       TextRecognizer
	cache     *imaging.ImageCache
	logger    *zap.Logger
	version   string
}

// Option configures a Server.
type Option func(*Server)

// WithOCR enables image extraction. Without it image requests fail with
// ocr.ErrUnavailable.
func WithOCR(r TextRecognizer) Option {
	return func(s *Server) { s.ocr = r }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithVersion sets the version reported by initialize and card_health.
func WithVersion(v string) Option {
	return func(s *Server) { s.version = v }
}

// MCPRequest represents an incoming JSON-RPC request
type MCPRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// MCPResponse represents an outgoing JSON-RPC response
type MCPResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *MCPError   `json:"error,omitempty"`
}

// MCPError represents a JSON-RPC error
type MCPError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// JSON-RPC error codes.
const (
	codeParseError     = -32700
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeInternalError  = -32603
	codeToolFailed     = -32000
)

// New creates a server backed by extractor.
func New(extractor Extractor, opts ...Option) *Server {
	s := &Server{
		extractor: extractor,
		cache:     imaging.NewImageCache(),
		logger:    zap.NewNop(),
		version:   "dev",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run serves MCP over stdin and stdout.
func (s *Server) Run() error {
	return s.Serve(os.Stdin, os.Stdout)
}

// Serve reads newline-delimited JSON-RPC requests from r and writes
// responses to w until r is exhausted.
func (s *Server) Serve(r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	// Increase buffer size for large requests
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	encoder := json.NewEncoder(w)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var resp *MCPResponse
		var req MCPRequest
		if err := json.Unmarshal(line, &req); err != nil {
			s.logger.Warn("failed to parse request", zap.Error(err))
			resp = s.errorResponse(nil, codeParseError, "Parse error", err.Error())
		} else {
			resp = s.handleRequest(&req)
		}

		if resp != nil {
			if err := encoder.Encode(resp); err != nil {
				return fmt.Errorf("encode response: %w", err)
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scanner error: %w", err)
	}

	return nil
}

// handleRequest routes requests to appropriate handlers
func (s *Server) handleRequest(req *MCPRequest) (resp *MCPResponse) {
	defer func() {
		if p := recover(); p != nil {
			s.logger.Error("panic handling request", zap.String("method", req.Method), zap.Any("panic", p))
			resp = s.errorResponse(req.ID, codeInternalError, "Internal error", fmt.Sprint(p))
		}
	}()

	s.logger.Debug("mcp request", zap.String("method", req.Method), zap.Any("id", req.ID))

	switch req.Method {
	case "initialize":
		return s.handleInitialize(req)
	case "notifications/initialized":
		// Client acknowledgment, no response needed
		return nil
	case "tools/list":
		return s.handleToolsList(req)
	case "tools/call":
		return s.handleToolsCall(req)
	case "ping":
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Result:  map[string]interface{}{},
		}
	default:
		return s.errorResponse(req.ID, codeMethodNotFound, fmt.Sprintf("Method not found: %s", req.Method), "")
	}
}

// handleInitialize responds to the initialize request
func (s *Server) handleInitialize(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"protocolVersion": "2024-11-05",
			"capabilities": map[string]interface{}{
				"tools": map[string]interface{}{},
			},
			"serverInfo": map[string]interface{}{
				"name":    "card-extract",
				"version": s.version,
			},
		},
	}
}

// extractImage OCRs img and runs the recognized text through the extractor.
func (s *Server) extractImage(img image.Image) (*ImageExtraction, error) {
	if s.ocr == nil {
		return nil, ocr.ErrUnavailable
	}
	text, err := s.ocr.Text(img)
	if err != nil {
		return nil, err
	}
	record, err := s.extractor.Extract(text)
	if err != nil {
		return nil, err
	}
	return &ImageExtraction{Record: record, OCRText: text}, nil
}
