package models

// CaptureRequest is the payload for POST /api/v1/capture.
type CaptureRequest struct {
	// URL is the article page to capture. Required.
	URL string `json:"url" binding:"required,url"`

	// MaxAge lets a caller accept a previous capture of the same URL
	// younger than this many milliseconds. Zero always captures afresh.
	MaxAge int `json:"max_age,omitempty" binding:"omitempty,min=0"`
}

// BatchRequest is the payload for POST /api/v1/batch.
type BatchRequest struct {
	// URLs are captured one after another. Required.
	URLs []string `json:"urls" binding:"required,min=1,max=200,dive,url"`

	// WebhookURL receives a batch.completed event when the job ends.
	WebhookURL string `json:"webhook_url,omitempty" binding:"omitempty,url"`

	// WebhookSecret signs the webhook body when set.
	WebhookSecret string `json:"webhook_secret,omitempty"`
}

// CodeRequest is the payload for POST /api/v1/code.
type CodeRequest struct {
	// Prompt overrides the configured coding prompt.
	Prompt string `json:"prompt,omitempty"`

	// LLMModel overrides the configured model.
	LLMModel string `json:"llm_model,omitempty"`
}
