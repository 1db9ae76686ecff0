package models

// BatchResponse is the immediate response for POST /api/v1/batch.
type BatchResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Total  int    `json:"total"`
}

// BatchItem is the outcome for one URL of a batch.
type BatchItem struct {
	URL     string          `json:"url"`
	Success bool            `json:"success"`
	Article *ArticleSummary `json:"article,omitempty"`
	Error   *ErrorDetail    `json:"error,omitempty"`
}

// BatchStatusResponse is the response for GET /api/v1/batch/:id.
type BatchStatusResponse struct {
	ID        string       `json:"id"`
	Status    string       `json:"status"`
	Completed int          `json:"completed"`
	Total     int          `json:"total"`
	Results   []*BatchItem `json:"results,omitempty"`
}

// BatchJob tracks a batch capture. Its fields are guarded by the job
// store that owns it.
type BatchJob struct {
	ID        string
	Status    string // "processing", "completed", "failed", "partial"
	Total     int
	Completed int
	Results   []*BatchItem
	CreatedAt int64 // unix timestamp
}
