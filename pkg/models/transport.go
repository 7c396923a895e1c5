package models

// Input types recorded in metadata
const (
	InputTypeUpload = "upload"
	InputTypeBase64 = "base64"
	InputTypeURL    = "url"
)

// Base64AnalysisRequest is the body of POST /api/analyze/base64
type Base64AnalysisRequest struct {
	ImageData string          `json:"imageData"`
	Options   AnalysisOptions `json:"options"`
}

// URLAnalysisRequest is the body of POST /api/analyze/url
type URLAnalysisRequest struct {
	ImageURL string          `json:"imageUrl"`
	Options  AnalysisOptions `json:"options"`
}

// Metadata describes how an analysis was produced
type Metadata struct {
	Model          string        `json:"model"`
	Provider       string        `json:"provider"`
	TokensUsed     int           `json:"tokensUsed"`
	Attempts       int           `json:"attempts"`
	ProcessingTime int64         `json:"processingTime"`
	ImageSize      int64         `json:"imageSize,omitempty"`
	ImageFormat    string        `json:"imageFormat,omitempty"`
	InputType      string        `json:"inputType"`
	AnalysisType   string        `json:"analysisType"`
	PhotoQuality   *PhotoQuality `json:"photoQuality,omitempty"`
	Timestamp      string        `json:"timestamp"`
}

// AnalysisData is the data member of a successful analysis response
type AnalysisData struct {
	EnrichedAnalysis
	Metadata Metadata `json:"metadata"`
}

// AnalysisResult is the successful response of every analyze route
type AnalysisResult struct {
	Success    bool         `json:"success"`
	AnalysisID string       `json:"analysisId"`
	Data       AnalysisData `json:"data"`
	Timestamp  string       `json:"timestamp"`
}

// ErrorResponse is the failure payload of every route
type ErrorResponse struct {
	Success        bool     `json:"success"`
	AnalysisID     string   `json:"analysisId,omitempty"`
	Error          string   `json:"error"`
	Code           string   `json:"code"`
	Details        []string `json:"details,omitempty"`
	RetryAfter     string   `json:"retryAfter,omitempty"`
	Timestamp      string   `json:"timestamp"`
	ProcessingTime *int64   `json:"processingTime,omitempty"`
}

// ConnectionResult reports a provider connectivity probe
type ConnectionResult struct {
	Connected bool   `json:"connected"`
	Model     string `json:"model,omitempty"`
	Response  string `json:"response,omitempty"`
	Error     string `json:"error,omitempty"`
	Timestamp string `json:"timestamp"`
}

// TestAIResponse is the body of GET /api/test-ai
type TestAIResponse struct {
	Success bool   `json:"success"`
	Service string `json:"service"`
	ConnectionResult
}

// FormatsResponse is the body of GET /api/analyze/formats
type FormatsResponse struct {
	Success          bool     `json:"success"`
	SupportedFormats []string `json:"supportedFormats"`
	MaxFileSize      int64    `json:"maxFileSize"`
	MaxFileSizeMB    int64    `json:"maxFileSizeMB"`
	Recommendations  []string `json:"recommendations"`
	Timestamp        string   `json:"timestamp"`
}

// LimitsResponse is the body of GET /api/analyze/limits
type LimitsResponse struct {
	Success         bool   `json:"success"`
	AnalysisPerHour int    `json:"analysisPerHour"`
	RequestsPerHour int    `json:"requestsPerHour"`
	BurstPerMinute  int    `json:"burstPerMinute"`
	MaxFileSize     string `json:"maxFileSize"`
	Timestamp       string `json:"timestamp"`
}

// HealthResponse is the body of GET /health
type HealthResponse struct {
	Status      string  `json:"status"`
	Timestamp   string  `json:"timestamp"`
	Uptime      float64 `json:"uptime"`
	Environment string  `json:"environment"`
}
