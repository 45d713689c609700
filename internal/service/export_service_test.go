package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"propscout/internal/domain"
)

// fakeBlob records uploaded objects.
type fakeBlob struct {
	putErr      error
	paths       []string
	contentType string
	body        []byte
}

func (f *fakeBlob) Put(ctx context.Context, path string, data io.Reader, contentType string) error {
	if f.putErr != nil {
		return f.putErr
	}
	body, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	f.paths = append(f.paths, path)
	f.contentType = contentType
	f.body = body
	return nil
}

func exportStore() *fakeStore {
	return &fakeStore{byID: map[string]domain.ScoredListing{
		"p1": {
			MergedListing: domain.MergedListing{
				Address: "123 Main St", ZipCode: "90210", Price: 300_000,
			},
			MotivationScore: 60,
		},
	}}
}

func TestExportArchivesCSV(t *testing.T) {
	blob := &fakeBlob{}
	svc := NewExportService(exportStore(), blob, testLogger())
	svc.now = func() time.Time {
		return time.Date(2026, time.August, 29, 12, 0, 0, 0, time.UTC)
	}

	result, err := svc.Export(context.Background(), []string{"p1"})
	require.NoError(t, err)

	assert.Contains(t, string(result.CSV), "123 Main St")
	assert.Equal(t, result.ArchivePath, blob.paths[0])
	assert.True(t, strings.HasPrefix(result.ArchivePath, "exports/2026/08/29/"))
	assert.True(t, strings.HasSuffix(result.ArchivePath, ".csv"))
	assert.Equal(t, "text/csv", blob.contentType)
	assert.Equal(t, result.CSV, blob.body)
}

func TestExportSucceedsWhenArchivalFails(t *testing.T) {
	blob := &fakeBlob{putErr: errors.New("bucket unavailable")}
	svc := NewExportService(exportStore(), blob, testLogger())

	result, err := svc.Export(context.Background(), []string{"p1"})
	require.NoError(t, err, "archival is best effort")
	assert.NotEmpty(t, result.CSV)
	assert.Empty(t, result.ArchivePath)
}

func TestExportWithoutBlobWriter(t *testing.T) {
	svc := NewExportService(exportStore(), nil, testLogger())

	result, err := svc.Export(context.Background(), []string{"p1"})
	require.NoError(t, err)
	assert.NotEmpty(t, result.CSV)
	assert.Empty(t, result.ArchivePath)
}

func TestExportRejectsEmptyIDList(t *testing.T) {
	svc := NewExportService(exportStore(), nil, testLogger())

	_, err := svc.Export(context.Background(), nil)
	assert.Error(t, err)
}
