package domain

// ExportResult is the outcome of a CSV export.
type ExportResult struct {
	// CSV is the rendered file content.
	CSV []byte

	// ArchivePath is the object store key the export was archived under.
	// Empty when archival is disabled or failed.
	ArchivePath string
}
