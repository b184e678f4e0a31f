package etl

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/BartekS5/ytetl/pkg/database"
	"github.com/BartekS5/ytetl/pkg/models"
)

// SQLLoader reads the CSV artifact and upserts every row into the target
// table, keyed on video_id, inside a single transaction. Any row failure
// rolls the whole run back, so a failed load leaves the table untouched.
type SQLLoader struct {
	DB      *sql.DB
	Dialect string
	Table   string
	InPath  string

	// Loaded holds the number of rows upserted during the last Run.
	Loaded int
}

func (l *SQLLoader) Name() string { return "load" }

func (l *SQLLoader) Run(ctx context.Context) error {
	rows, err := readCSVArtifact(l.InPath)
	if err != nil {
		return err
	}

	if err := l.DB.PingContext(ctx); err != nil {
		return &ConnectionError{Err: err}
	}
	if err := l.ensureTable(ctx); err != nil {
		return err
	}
	if err := l.checkSchema(ctx); err != nil {
		return err
	}

	tx, err := l.DB.BeginTx(ctx, nil)
	if err != nil {
		return &ConnectionError{Err: err}
	}

	query := l.upsertQuery()
	for _, row := range rows {
		description := sql.NullString{String: row.Description, Valid: row.Description != ""}
		_, err := tx.ExecContext(ctx, query,
			row.VideoID, row.Title, row.ChannelTitle, row.PublishedAt, description, row.QueryTag)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("upserting video %s: %w", row.VideoID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return &ConnectionError{Err: err}
	}

	l.Loaded = len(rows)
	slog.Info("loaded rows into target table",
		slog.String("stage", l.Name()),
		slog.String("table", l.Table),
		slog.Int("rows", l.Loaded),
		slog.String("path", l.InPath))
	return nil
}

// ensureTable creates the target table on first use, mirroring the column
// contract plus a load timestamp the database fills in.
func (l *SQLLoader) ensureTable(ctx context.Context) error {
	var ddl string
	if l.Dialect == database.DialectSQLServer {
		ddl = fmt.Sprintf(`
IF OBJECT_ID(N'%[1]s', N'U') IS NULL
CREATE TABLE %[1]s (
	video_id      NVARCHAR(64) PRIMARY KEY,
	title         NVARCHAR(MAX) NOT NULL,
	channel_title NVARCHAR(400) NOT NULL,
	published_at  DATETIMEOFFSET NOT NULL,
	description   NVARCHAR(MAX),
	query_tag     NVARCHAR(200),
	loaded_at     DATETIMEOFFSET NOT NULL DEFAULT SYSDATETIMEOFFSET()
)`, l.Table)
	} else {
		ddl = fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
	video_id      TEXT PRIMARY KEY,
	title         TEXT NOT NULL,
	channel_title TEXT NOT NULL,
	published_at  TIMESTAMPTZ NOT NULL,
	description   TEXT,
	query_tag     TEXT,
	loaded_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`, l.Table)
	}

	if _, err := l.DB.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("ensuring table %s exists: %w", l.Table, err)
	}
	return nil
}

// checkSchema verifies the live table carries every expected column.
// Extra columns are tolerated; missing ones are a SchemaError.
func (l *SQLLoader) checkSchema(ctx context.Context) error {
	query := "SELECT column_name FROM information_schema.columns WHERE table_name = $1"
	if l.Dialect == database.DialectSQLServer {
		query = "SELECT column_name FROM information_schema.columns WHERE table_name = @p1"
	}

	rows, err := l.DB.QueryContext(ctx, query, l.Table)
	if err != nil {
		return fmt.Errorf("inspecting schema of %s: %w", l.Table, err)
	}
	defer rows.Close()

	present := make(map[string]bool)
	for rows.Next() {
		var col string
		if err := rows.Scan(&col); err != nil {
			return fmt.Errorf("inspecting schema of %s: %w", l.Table, err)
		}
		present[col] = true
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("inspecting schema of %s: %w", l.Table, err)
	}

	var missing []string
	for _, col := range models.CSVColumns {
		if !present[col] {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return &SchemaError{Table: l.Table, Missing: missing}
	}
	return nil
}

func (l *SQLLoader) upsertQuery() string {
	if l.Dialect == database.DialectSQLServer {
		return fmt.Sprintf(`
MERGE %s AS target
USING (VALUES (@p1, @p2, @p3, @p4, @p5, @p6))
	AS src (video_id, title, channel_title, published_at, description, query_tag)
ON target.video_id = src.video_id
WHEN MATCHED THEN UPDATE SET
	title = src.title,
	channel_title = src.channel_title,
	published_at = src.published_at,
	description = src.description,
	query_tag = src.query_tag
WHEN NOT MATCHED THEN INSERT (video_id, title, channel_title, published_at, description, query_tag)
	VALUES (src.video_id, src.title, src.channel_title, src.published_at, src.description, src.query_tag);`, l.Table)
	}

	return fmt.Sprintf(`
INSERT INTO %s (video_id, title, channel_title, published_at, description, query_tag)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (video_id) DO UPDATE SET
	title = EXCLUDED.title,
	channel_title = EXCLUDED.channel_title,
	published_at = EXCLUDED.published_at,
	description = EXCLUDED.description,
	query_tag = EXCLUDED.query_tag`, l.Table)
}
