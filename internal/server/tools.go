package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// Tool names.
const (
	toolExtract      = "card_extract"
	toolExtractImage = "card_extract_image"
	toolHealth       = "card_health"
)

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		{
			Name: toolExtract,
			Description: "Extract contact fields (Name, company_name, Address, Designation, Email, Cell, Tel, Fax, Website) " +
				"from the raw text of a business card. Fields with no match are returned as \"nil\"; " +
				"multiple matches are joined with \", \".",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"text": map[string]interface{}{
						"type":        "string",
						"description": "Raw card text, e.g. OCR output. Line breaks are significant for Designation. Omitted text is treated as empty.",
					},
				},
			},
		},
		{
			Name: toolExtractImage,
			Description: "OCR a business card image (PNG, JPEG or GIF) and extract its contact fields. " +
				"The result also carries ocr_text, the text the fields were extracted from.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"minLength":   1,
						"description": "Absolute path to the card image file",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        toolHealth,
			Description: "Report service liveness, version and whether OCR is available.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
