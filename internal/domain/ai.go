package domain

import "context"

// ChatMessage is one turn of a conversation sent by the client.
type ChatMessage struct {
	Role    string `json:"role"` // user, model
	Content string `json:"content"`
}

// ChatRequest carries a chat turn plus prior history. ClientRequestID is an
// optional UUID used to deduplicate retried requests in the ledger.
type ChatRequest struct {
	Prompt          string        `json:"prompt"`
	History         []ChatMessage `json:"history,omitempty"`
	Language        string        `json:"language,omitempty"` // BCP 47 tag, falls back to Accept-Language
	ClientRequestID string        `json:"client_request_id,omitempty"`
}

// ChatResponse is the assistant's answer for one turn.
type ChatResponse struct {
	Message    string `json:"message"`
	PlainText  string `json:"plain_text,omitempty"` // markdown stripped
	Language   string `json:"language,omitempty"`
	TokenCount int    `json:"token_count,omitempty"`
}

// ImageAnalysisRequest carries an uploaded image for analysis.
type ImageAnalysisRequest struct {
	ImageData       []byte `json:"-"`
	MimeType        string `json:"mime_type"`
	Prompt          string `json:"prompt,omitempty"`
	Language        string `json:"language,omitempty"`
	ClientRequestID string `json:"client_request_id,omitempty"`
}

// HealthReportRequest carries extracted report text for analysis.
type HealthReportRequest struct {
	ReportText      string `json:"report_text"`
	Language        string `json:"language,omitempty"`
	ClientRequestID string `json:"client_request_id,omitempty"`
}

// HealthReportAnalysis is the structured summary returned for a report.
type HealthReportAnalysis struct {
	Summary         string   `json:"summary"`
	KeyFindings     []string `json:"key_findings,omitempty"`
	Recommendations []string `json:"recommendations,omitempty"`
	Language        string   `json:"language,omitempty"`
}

// AIService defines the generation operations behind the gated endpoints.
type AIService interface {
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)
	AnalyzeImage(ctx context.Context, req ImageAnalysisRequest) (*ChatResponse, error)
	AnalyzeHealthReport(ctx context.Context, req HealthReportRequest) (*HealthReportAnalysis, error)
}
