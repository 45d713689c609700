package service

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"propscout/internal/domain"
	"propscout/internal/export"
)

// ExportService renders stored properties to CSV and archives each export to
// the object store under exports/YYYY/MM/DD/<uuid>.csv. Archival is best
// effort: the export succeeds even when the upload does not.
type ExportService struct {
	store  domain.PropertyStore
	blob   domain.BlobWriter // may be nil
	logger *slog.Logger

	now func() time.Time
}

// NewExportService creates an ExportService. blob may be nil, in which case
// exports are returned to the caller without archival.
func NewExportService(store domain.PropertyStore, blob domain.BlobWriter, logger *slog.Logger) *ExportService {
	return &ExportService{
		store:  store,
		blob:   blob,
		logger: logger.With(slog.String("component", "export_service")),
		now:    time.Now,
	}
}

// Export renders the properties with the given IDs to CSV, ordered by
// motivation score descending.
func (s *ExportService) Export(ctx context.Context, ids []string) (domain.ExportResult, error) {
	if len(ids) == 0 {
		return domain.ExportResult{}, fmt.Errorf("service: export: no property ids given")
	}

	listings, err := s.store.ListByIDs(ctx, ids)
	if err != nil {
		return domain.ExportResult{}, fmt.Errorf("service: export: %w", err)
	}

	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, listings); err != nil {
		return domain.ExportResult{}, fmt.Errorf("service: export: %w", err)
	}

	result := domain.ExportResult{CSV: buf.Bytes()}

	if s.blob != nil {
		path := exportPath(s.now().UTC())
		if err := s.blob.Put(ctx, path, bytes.NewReader(result.CSV), "text/csv"); err != nil {
			s.logger.WarnContext(ctx, "export archival failed",
				slog.String("path", path),
				slog.String("error", err.Error()),
			)
		} else {
			result.ArchivePath = path
			s.logger.InfoContext(ctx, "export archived",
				slog.String("path", path),
				slog.Int("listings", len(listings)),
			)
		}
	}

	return result, nil
}

// exportPath builds the object key for an export, partitioned by date.
//
//	exports/2026/08/29/8f14e45f-....csv
func exportPath(t time.Time) string {
	return fmt.Sprintf("exports/%s/%s.csv", t.Format("2006/01/02"), uuid.NewString())
}
