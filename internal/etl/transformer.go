package etl

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/BartekS5/ytetl/pkg/models"
	"github.com/BartekS5/ytetl/pkg/utils"
)

// CSVTransformer reads the raw JSON artifact, projects each record onto the
// fixed column set and writes the CSV artifact. Records missing required
// fields (or carrying an unparseable timestamp) are skipped and counted,
// never aborting the run; the count is reported in the stage summary.
type CSVTransformer struct {
	InPath  string
	OutPath string

	// Skipped holds the number of records dropped during the last Run.
	Skipped int
}

func (t *CSVTransformer) Name() string { return "transform" }

func (t *CSVTransformer) Run(ctx context.Context) error {
	data, err := os.ReadFile(t.InPath)
	if err != nil {
		return &IOError{Op: "reading", Path: t.InPath, Err: err}
	}

	var records []models.SearchResultRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return &FormatError{Path: t.InPath, Err: err}
	}

	t.Skipped = 0
	rows := make([]models.TransformedRow, 0, len(records))
	for i, rec := range records {
		row, err := transformRecord(rec)
		if err != nil {
			t.Skipped++
			slog.Warn("skipping malformed record",
				slog.Int("index", i),
				slog.String("video_id", rec.VideoID),
				slog.String("error", err.Error()))
			continue
		}
		rows = append(rows, row)
	}

	if err := writeCSVArtifact(t.OutPath, rows); err != nil {
		return err
	}
	slog.Info("wrote processed artifact",
		slog.String("stage", t.Name()),
		slog.Int("rows", len(rows)),
		slog.Int("skipped", t.Skipped),
		slog.String("path", t.OutPath))
	return nil
}

func transformRecord(rec models.SearchResultRecord) (models.TransformedRow, error) {
	if err := ValidateRecord(rec); err != nil {
		return models.TransformedRow{}, err
	}

	ts, err := utils.ParseTimestamp(rec.PublishedAt)
	if err != nil {
		return models.TransformedRow{}, err
	}

	return models.TransformedRow{
		VideoID:      rec.VideoID,
		Title:        rec.Title,
		ChannelTitle: rec.ChannelTitle,
		PublishedAt:  ts.UTC(),
		Description:  rec.Description,
		QueryTag:     rec.QueryTag,
	}, nil
}

func writeCSVArtifact(path string, rows []models.TransformedRow) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return &IOError{Op: "creating directory for", Path: path, Err: err}
	}

	f, err := os.Create(path)
	if err != nil {
		return &IOError{Op: "creating", Path: path, Err: err}
	}

	w := csv.NewWriter(f)
	if err := w.Write(models.CSVColumns); err != nil {
		f.Close()
		return &IOError{Op: "writing header to", Path: path, Err: err}
	}
	for _, row := range rows {
		if err := w.Write(row.CSVRecord()); err != nil {
			f.Close()
			return &IOError{Op: "writing row to", Path: path, Err: err}
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return &IOError{Op: "flushing", Path: path, Err: err}
	}

	if err := f.Close(); err != nil {
		return &IOError{Op: "closing", Path: path, Err: err}
	}
	return nil
}

// readCSVArtifact parses the processed artifact back into rows, verifying
// the header against the column contract first.
func readCSVArtifact(path string) ([]models.TransformedRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &IOError{Op: "opening", Path: path, Err: err}
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, &FormatError{Path: path, Err: fmt.Errorf("reading header: %w", err)}
	}
	if len(header) != len(models.CSVColumns) {
		return nil, &FormatError{Path: path, Err: fmt.Errorf("expected %d columns, got %d", len(models.CSVColumns), len(header))}
	}
	for i, col := range models.CSVColumns {
		if header[i] != col {
			return nil, &FormatError{Path: path, Err: fmt.Errorf("header column %d is %q, want %q", i, header[i], col)}
		}
	}

	var rows []models.TransformedRow
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &FormatError{Path: path, Err: err}
		}

		ts, err := utils.ParseTimestamp(record[3])
		if err != nil {
			return nil, &FormatError{Path: path, Err: err}
		}
		rows = append(rows, models.TransformedRow{
			VideoID:      record[0],
			Title:        record[1],
			ChannelTitle: record[2],
			PublishedAt:  ts.UTC(),
			Description:  record[4],
			QueryTag:     record[5],
		})
	}
	return rows, nil
}
