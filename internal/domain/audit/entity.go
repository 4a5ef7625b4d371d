package audit

import "time"

// RecordID identifier type
type RecordID string

// Status of one analysis attempt
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// Record is the operator-facing trace of one analysis attempt. ErrorDetail
// holds the upstream error text that users never see.
type Record struct {
	ID            RecordID  `json:"id"`
	SessionID     string    `json:"session_id"`
	Provider      string    `json:"provider"`
	Model         string    `json:"model"`
	PromptVersion string    `json:"prompt_version"`
	Status        Status    `json:"status"`
	ErrorKind     string    `json:"error_kind,omitempty"`
	ErrorDetail   string    `json:"error_detail,omitempty"`
	Emoji         string    `json:"emoji,omitempty"`
	Comment       string    `json:"comment,omitempty"`
	Confidence    *float64  `json:"confidence,omitempty"`
	PhotoMIME     string    `json:"photo_mime"`
	PhotoBytes    int       `json:"photo_bytes"`
	PhotoURL      string    `json:"photo_url,omitempty"`
	DurationMS    int64     `json:"duration_ms"`
	CreatedAt     time.Time `json:"created_at"`
}
