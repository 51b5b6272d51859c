package dto

import "time"

// ExportFormat enumerates supported export artifact kinds.
type ExportFormat string

const (
	ExportCSV ExportFormat = "csv"
	ExportPDF ExportFormat = "pdf"
)

// CreateExportRequest enqueues an export job for a template.
type CreateExportRequest struct {
	Format ExportFormat `json:"format" validate:"required,oneof=csv pdf"`
}

// ExportJobStatus reports an export job's progress.
type ExportJobStatus struct {
	ID          string       `json:"id"`
	FormID      string       `json:"formId"`
	Format      ExportFormat `json:"format"`
	Status      string       `json:"status"`
	DownloadURL string       `json:"downloadUrl,omitempty"`
	ExpiresAt   *time.Time   `json:"expiresAt,omitempty"`
	Error       string       `json:"error,omitempty"`
	CreatedAt   time.Time    `json:"createdAt"`
}
