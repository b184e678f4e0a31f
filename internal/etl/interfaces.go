package etl

import (
	"context"

	"github.com/BartekS5/ytetl/pkg/models"
)

// Stage is one step of the pipeline. Stages are stateless between runs and
// hand data to each other through artifacts on disk, never in memory.
type Stage interface {
	Name() string
	Run(ctx context.Context) error
}

// SearchClient fetches search results for a keyword, capped at max.
type SearchClient interface {
	Search(ctx context.Context, keyword string, max int) ([]models.SearchResultRecord, error)
}

// Archiver persists raw records outside the artifact lifecycle, for audit.
type Archiver interface {
	Archive(ctx context.Context, runID string, records []models.SearchResultRecord) error
}
