package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/ironsheep/card-extract/internal/ocr"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "card_extract").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// errInvalidArguments marks tool arguments that fail their inputSchema.
var errInvalidArguments = errors.New("invalid arguments")

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Arguments that fail the tool's inputSchema return -32602; tool execution
// errors return -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, codeInvalidParams, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		if errors.Is(err, errInvalidArguments) {
			return s.errorResponse(req.ID, codeInvalidParams, "Invalid params", err.Error())
		}
		s.logger.Warn("tool failed", zap.String("tool", params.Name), zap.Error(err))
		return s.errorResponse(req.ID, codeToolFailed, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool validates args against the tool's schema and dispatches it.
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	schema, ok := toolSchemas[name]
	if !ok {
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
	if err := validateJSON(schema, args); err != nil {
		return nil, fmt.Errorf("%w for %s: %v", errInvalidArguments, name, err)
	}

	switch name {
	case toolExtract:
		return s.handleCardExtract(args)
	case toolExtractImage:
		return s.handleCardExtractImage(args)
	case toolHealth:
		return s.handleCardHealth()
	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
// An empty data string is left out of the response.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	e := &MCPError{
		Code:    code,
		Message: message,
	}
	if data != "" {
		e.Data = data
	}
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error:   e,
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure it returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// decodeArgs unmarshals tool arguments into v. Omitted arguments leave v at
// its zero value, as validateJSON treats them as an empty object.
func decodeArgs(args json.RawMessage, v interface{}) error {
	if len(bytes.TrimSpace(args)) == 0 {
		return nil
	}
	return json.Unmarshal(args, v)
}

type cardExtractArgs struct {
	Text string `json:"text"`
}

func (s *Server) handleCardExtract(args json.RawMessage) (interface{}, error) {
	var a cardExtractArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	record, err := s.extractor.Extract(a.Text)
	if err != nil {
		return nil, err
	}
	return record, nil
}

type cardExtractImageArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleCardExtractImage(args json.RawMessage) (interface{}, error) {
	var a cardExtractImageArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if s.ocr == nil {
		return nil, ocr.ErrUnavailable
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	return s.extractImage(img)
}

// HealthStatus is the card_health tool result and the GET /health body.
type HealthStatus struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
	OCR     *bool  `json:"ocr,omitempty"`
}

func (s *Server) handleCardHealth() (interface{}, error) {
	available := s.ocr != nil
	return HealthStatus{Status: "healthy", Version: s.version, OCR: &available}, nil
}
