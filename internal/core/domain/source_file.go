package domain

import "time"

type FileStatus string

const (
	StatusUploaded   FileStatus = "uploaded"
	StatusProcessing FileStatus = "processing"
	StatusReady      FileStatus = "ready"
	StatusFailed     FileStatus = "failed"
)

// SourceFile is an uploaded file tracked through the ingestion pipeline.
type SourceFile struct {
	ID          string     `json:"id"`
	Filename    string     `json:"filename"`
	MimeType    string     `json:"mime_type"`
	StoragePath string     `json:"storage_path"`
	ContentType string     `json:"content_type,omitempty"`
	Pages       int        `json:"pages,omitempty"`
	Status      FileStatus `json:"status"`
	Error       string     `json:"error,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
