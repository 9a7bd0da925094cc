package dto

import "time"

// ExportFormat selects the report renderer.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

// ClassExportRequest describes a class report export.
type ClassExportRequest struct {
	ClassID string
	Format  ExportFormat
	Year    int
}

// ExportResult is returned once the report is stored.
type ExportResult struct {
	ID        string    `json:"id"`
	FileName  string    `json:"file_name"`
	Format    string    `json:"format"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}
