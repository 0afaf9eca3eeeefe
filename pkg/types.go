package pkg

// Wire types for the /chat HTTP surface

// ChatRequest is the body of POST /chat
type ChatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id,omitempty"`
	// DialogContext, when present, wins over any context stored for the session
	DialogContext map[string]any `json:"dialog_context,omitempty"`
}

// ChatResponse carries one assistant turn
type ChatResponse struct {
	Reply         string         `json:"reply"`
	Intent        string         `json:"intent"`
	SessionID     string         `json:"session_id"`
	DialogContext map[string]any `json:"dialog_context,omitempty"`
	AIGenerated   bool           `json:"ai_generated,omitempty"`
}

type HealthResponse struct {
	OK    bool   `json:"ok"`
	Redis string `json:"redis"`
}

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    int    `json:"code"`
	Message string `json:"message,omitempty"`
}
