package models

// CaptureResponse is the response for POST /api/v1/capture.
type CaptureResponse struct {
	// Success indicates whether the capture completed without errors.
	Success bool `json:"success"`

	// Article describes what was stored. Nil on failure.
	Article *ArticleSummary `json:"article,omitempty"`

	// CacheStatus is "hit", "miss", or empty when max_age was not requested.
	CacheStatus string `json:"cache_status,omitempty"`

	Timing TimingInfo `json:"timing"`

	// Error is populated only when Success is false.
	Error *ErrorDetail `json:"error,omitempty"`
}

// TimingInfo breaks down the time spent in each phase.
type TimingInfo struct {
	// TotalMs is the end-to-end duration in milliseconds.
	TotalMs int64 `json:"total_ms"`

	// FetchMs covers session setup, navigation, content wait and the image race.
	FetchMs int64 `json:"fetch_ms"`

	// StoreMs is the time spent writing the article directory.
	StoreMs int64 `json:"store_ms"`
}

// CodeResponse is the response for POST /api/v1/code.
type CodeResponse struct {
	Success  bool                `json:"success"`
	Rows     []map[string]string `json:"rows,omitempty"`
	CSVPath  string              `json:"csv_path,omitempty"`
	LLMUsage *LLMUsage           `json:"llm_usage,omitempty"`
	Error    *ErrorDetail        `json:"error,omitempty"`
}

// LLMUsage reports token consumption from LLM calls.
type LLMUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Add accumulates u into the receiver.
func (l *LLMUsage) Add(u *LLMUsage) {
	if u == nil {
		return
	}
	l.PromptTokens += u.PromptTokens
	l.CompletionTokens += u.CompletionTokens
	l.TotalTokens += u.TotalTokens
}

// HealthResponse is the response for GET /api/v1/health.
type HealthResponse struct {
	Status  string `json:"status"` // "healthy" or "busy"
	Uptime  string `json:"uptime"`
	Busy    bool   `json:"busy"`
	Version string `json:"version"`
}

// ErrorResponse is the body of requests rejected before any work starts.
type ErrorResponse struct {
	Success bool         `json:"success"`
	Error   *ErrorDetail `json:"error"`
}
