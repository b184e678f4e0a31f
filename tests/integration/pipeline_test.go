package integration

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/BartekS5/ytetl/internal/etl"
	"github.com/BartekS5/ytetl/pkg/database"
	"github.com/BartekS5/ytetl/pkg/models"
)

const integrationTable = "youtube_videos_integration"

// Runs transform and load against a live database. Set DB_URL to enable,
// e.g. DB_URL=postgres://user:pw@localhost:5432/yt go test ./tests/...
func TestTransformLoadRoundTrip(t *testing.T) {
	connString := os.Getenv("DB_URL")
	if connString == "" {
		t.Skip("DB_URL not set, skipping integration test")
	}

	db, dialect, err := database.ConnectSQL(connString)
	if err != nil {
		t.Fatalf("Failed to connect to SQL store: %v", err)
	}
	defer db.Close()

	cleanupRows(t, db)
	defer cleanupRows(t, db)

	// Stage the raw artifact the extractor would have produced.
	dir := t.TempDir()
	rawPath := filepath.Join(dir, "raw", "lofi.json")
	csvPath := filepath.Join(dir, "processed", "lofi.csv")
	records := []models.SearchResultRecord{
		{VideoID: "it-A1", Title: "integration first", ChannelTitle: "chan-a", PublishedAt: "2024-03-01T12:00:00Z", QueryTag: "integration"},
		{VideoID: "it-A2", Title: "integration second", ChannelTitle: "chan-b", PublishedAt: "2024-03-02T12:00:00Z", Description: "desc", QueryTag: "integration"},
	}
	writeRawArtifact(t, rawPath, records)

	transformer := &etl.CSVTransformer{InPath: rawPath, OutPath: csvPath}
	if err := transformer.Run(context.Background()); err != nil {
		t.Fatalf("Transform failed: %v", err)
	}

	loader := &etl.SQLLoader{DB: db, Dialect: dialect, Table: integrationTable, InPath: csvPath}
	if err := loader.Run(context.Background()); err != nil {
		t.Fatalf("First load failed: %v", err)
	}
	first := countRows(t, db, dialect)
	if first != 2 {
		t.Fatalf("Expected 2 rows after first load, got %d", first)
	}

	// Loading the same artifact again must not duplicate rows.
	if err := loader.Run(context.Background()); err != nil {
		t.Fatalf("Second load failed: %v", err)
	}
	if second := countRows(t, db, dialect); second != first {
		t.Errorf("Row count changed on re-load: %d -> %d", first, second)
	}
}

func writeRawArtifact(t *testing.T, path string, records []models.SearchResultRecord) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	data, err := json.Marshal(records)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func countRows(t *testing.T, db *sql.DB, dialect string) int {
	t.Helper()
	placeholder := "$1"
	if dialect == database.DialectSQLServer {
		placeholder = "@p1"
	}
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE query_tag = %s", integrationTable, placeholder)

	var count int
	if err := db.QueryRow(query, "integration").Scan(&count); err != nil {
		t.Fatalf("counting rows: %v", err)
	}
	return count
}

func cleanupRows(t *testing.T, db *sql.DB) {
	t.Helper()
	db.Exec(fmt.Sprintf("DROP TABLE IF EXISTS %s", integrationTable))
}
