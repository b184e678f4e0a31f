package etl

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/BartekS5/ytetl/pkg/models"
)

type stubSearchClient struct {
	records []models.SearchResultRecord
	err     error
}

func (s *stubSearchClient) Search(ctx context.Context, keyword string, max int) ([]models.SearchResultRecord, error) {
	if s.err != nil {
		return nil, s.err
	}
	if len(s.records) > max {
		return s.records[:max], nil
	}
	return s.records, nil
}

type capturingArchiver struct {
	runID   string
	records []models.SearchResultRecord
	err     error
}

func (a *capturingArchiver) Archive(ctx context.Context, runID string, records []models.SearchResultRecord) error {
	a.runID = runID
	a.records = records
	return a.err
}

func sampleRecords() []models.SearchResultRecord {
	return []models.SearchResultRecord{
		{VideoID: "A1", Title: "first", ChannelTitle: "chan-a", PublishedAt: "2024-03-01T12:00:00Z", QueryTag: "lofi"},
		{VideoID: "A2", Title: "second", ChannelTitle: "chan-b", PublishedAt: "2024-03-02T12:00:00Z", Description: "desc", QueryTag: "lofi"},
	}
}

func TestExtractorWritesArtifact(t *testing.T) {
	out := filepath.Join(t.TempDir(), "raw", "lofi.json")
	archiver := &capturingArchiver{}
	stage := &SearchExtractor{
		Client:   &stubSearchClient{records: sampleRecords()},
		Archiver: archiver,
		Keyword:  "lofi",
		Max:      50,
		OutPath:  out,
		RunID:    "run-1",
	}

	if err := stage.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("reading artifact: %v", err)
	}
	var got []models.SearchResultRecord
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("artifact is not a JSON array: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("artifact has %d records, want 2", len(got))
	}
	if got[0].VideoID != "A1" || got[1].VideoID != "A2" {
		t.Errorf("unexpected ids: %s, %s", got[0].VideoID, got[1].VideoID)
	}

	if archiver.runID != "run-1" || len(archiver.records) != 2 {
		t.Errorf("archiver saw runID=%q with %d records", archiver.runID, len(archiver.records))
	}
}

func TestExtractorEmptyResultIsAnArray(t *testing.T) {
	out := filepath.Join(t.TempDir(), "empty.json")
	stage := &SearchExtractor{
		Client:  &stubSearchClient{},
		Keyword: "obscure",
		Max:     10,
		OutPath: out,
	}

	if err := stage.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("reading artifact: %v", err)
	}
	var got []models.SearchResultRecord
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("artifact is not a JSON array: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty array, got %d records", len(got))
	}
}

func TestExtractorPropagatesAPIError(t *testing.T) {
	out := filepath.Join(t.TempDir(), "never.json")
	stage := &SearchExtractor{
		Client:  &stubSearchClient{err: &APIError{StatusCode: 403, Reason: "quotaExceeded"}},
		Keyword: "lofi",
		Max:     10,
		OutPath: out,
	}

	err := stage.Run(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T: %v", err, err)
	}
	if _, statErr := os.Stat(out); !os.IsNotExist(statErr) {
		t.Error("artifact must not be written when the API call fails")
	}
}

func TestExtractorArchiveFailureDoesNotFailRun(t *testing.T) {
	out := filepath.Join(t.TempDir(), "lofi.json")
	stage := &SearchExtractor{
		Client:   &stubSearchClient{records: sampleRecords()},
		Archiver: &capturingArchiver{err: errors.New("archive down")},
		Keyword:  "lofi",
		Max:      10,
		OutPath:  out,
	}

	if err := stage.Run(context.Background()); err != nil {
		t.Fatalf("Run should succeed when only the archive sink fails, got: %v", err)
	}
	if _, err := os.Stat(out); err != nil {
		t.Errorf("artifact missing: %v", err)
	}
}
