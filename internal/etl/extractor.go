package etl

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/BartekS5/ytetl/pkg/models"
)

// SearchExtractor fetches search results for one keyword and writes them as
// a JSON array artifact. When an Archiver is configured the raw records are
// additionally copied to the archive sink; archive trouble is logged but
// does not fail the run, since the artifact is the stage's contract.
type SearchExtractor struct {
	Client   SearchClient
	Archiver Archiver
	Keyword  string
	Max      int
	OutPath  string
	RunID    string
}

func (e *SearchExtractor) Name() string { return "extract" }

func (e *SearchExtractor) Run(ctx context.Context) error {
	records, err := e.Client.Search(ctx, e.Keyword, e.Max)
	if err != nil {
		return err
	}

	if err := writeJSONArtifact(e.OutPath, records); err != nil {
		return err
	}
	slog.Info("wrote raw artifact",
		slog.String("stage", e.Name()),
		slog.String("keyword", e.Keyword),
		slog.Int("records", len(records)),
		slog.String("path", e.OutPath))

	if e.Archiver != nil {
		if err := e.Archiver.Archive(ctx, e.RunID, records); err != nil {
			slog.Warn("raw archive failed",
				slog.String("keyword", e.Keyword), slog.String("error", err.Error()))
		}
	}
	return nil
}

func writeJSONArtifact(path string, records []models.SearchResultRecord) error {
	if records == nil {
		// An empty result set is still a valid artifact: an array, not null.
		records = []models.SearchResultRecord{}
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return &IOError{Op: "encoding", Path: path, Err: err}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return &IOError{Op: "creating directory for", Path: path, Err: err}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return &IOError{Op: "writing", Path: path, Err: err}
	}
	return nil
}
