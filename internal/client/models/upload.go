package models

import "time"

// UploadStatus is the backend-side processing state of an upload.
type UploadStatus string

const (
	UploadStatusPending    UploadStatus = "pending"
	UploadStatusProcessing UploadStatus = "processing"
	UploadStatusCompleted  UploadStatus = "completed"
	UploadStatusFailed     UploadStatus = "failed"
)

// IsTerminal reports whether polling can stop on this status.
func (s UploadStatus) IsTerminal() bool {
	return s == UploadStatusCompleted || s == UploadStatusFailed
}

// rank orders statuses along pending -> processing -> {completed|failed}.
func (s UploadStatus) rank() int {
	switch s {
	case UploadStatusPending:
		return 0
	case UploadStatusProcessing:
		return 1
	case UploadStatusCompleted, UploadStatusFailed:
		return 2
	default:
		return -1
	}
}

// CanAdvanceTo reports whether moving from s to next keeps the status
// monotonic. failed -> pending is a retry and only happens on an explicit
// re-trigger, so it is not an automatic advance.
func (s UploadStatus) CanAdvanceTo(next UploadStatus) bool {
	if s == next {
		return true
	}
	if s.IsTerminal() {
		return false
	}
	return next.rank() > s.rank()
}

// Upload is one submitted document tracked through analysis.
type Upload struct {
	ID               string       `json:"id"`
	OriginalFilename string       `json:"original_filename"`
	FileSize         int64        `json:"file_size"`
	Status           UploadStatus `json:"status"`
	ErrorMessage     string       `json:"error_message,omitempty"`
	CreatedAt        time.Time    `json:"created_at"`
	UpdatedAt        *time.Time   `json:"updated_at,omitempty"`
}

// ProcessFileRequest starts asynchronous analysis of an upload.
type ProcessFileRequest struct {
	UploadID  string `json:"upload_id"`
	ModelName string `json:"model_name,omitempty"`
}

type FileProcessingResponse struct {
	UploadID string `json:"upload_id"`
	Status   string `json:"status"`
	Message  string `json:"message"`
	ResultID string `json:"result_id,omitempty"`
}

// MessageResponse is the body of endpoints that only acknowledge.
type MessageResponse struct {
	Message string `json:"message"`
}
