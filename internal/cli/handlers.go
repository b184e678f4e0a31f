package cli

import (
	"context"
	"errors"
	"time"

	"github.com/BartekS5/ytetl/internal/config"
	"github.com/BartekS5/ytetl/internal/etl"
	"github.com/BartekS5/ytetl/pkg/database"
	"github.com/BartekS5/ytetl/pkg/utils"
	"github.com/google/uuid"
)

func runExtract(ctx context.Context, opts *StageOptions) error {
	cfg := config.Load()
	keywords, err := resolveKeywords(cfg, opts)
	if err != nil {
		return err
	}
	if err := cfg.ValidateExtract(); err != nil {
		return err
	}

	archiver, cleanup, err := newArchiver(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	runID := uuid.NewString()
	client := etl.NewYouTubeClient(cfg.APIKey)
	for _, keyword := range keywords {
		stage := &etl.SearchExtractor{
			Client:   client,
			Archiver: archiver,
			Keyword:  keyword,
			Max:      resolveMaxResults(cfg, opts),
			OutPath:  cfg.RawArtifactPath(keyword),
			RunID:    runID,
		}
		if err := stage.Run(ctx); err != nil {
			return err
		}
	}
	return nil
}

func runTransform(ctx context.Context, opts *StageOptions) error {
	cfg := config.Load()
	keywords, err := resolveKeywords(cfg, opts)
	if err != nil {
		return err
	}

	for _, keyword := range keywords {
		stage := &etl.CSVTransformer{
			InPath:  cfg.RawArtifactPath(keyword),
			OutPath: cfg.ProcessedArtifactPath(keyword),
		}
		if err := stage.Run(ctx); err != nil {
			return err
		}
	}
	return nil
}

func runLoad(ctx context.Context, opts *StageOptions) error {
	cfg := config.Load()
	keywords, err := resolveKeywords(cfg, opts)
	if err != nil {
		return err
	}
	if err := cfg.ValidateLoad(); err != nil {
		return err
	}

	db, dialect, err := database.ConnectSQL(cfg.DBConnString)
	if err != nil {
		return &etl.ConnectionError{Err: err}
	}
	defer db.Close()

	for _, keyword := range keywords {
		stage := &etl.SQLLoader{
			DB:      db,
			Dialect: dialect,
			Table:   cfg.TargetTable,
			InPath:  cfg.ProcessedArtifactPath(keyword),
		}
		if err := stage.Run(ctx); err != nil {
			return err
		}
	}
	return nil
}

// runPipeline wires all three stages per keyword into one ordered run,
// grouped the same way the orchestrator's tasks are: every extract, then
// every transform, then every load.
func runPipeline(ctx context.Context, opts *StageOptions) error {
	cfg := config.Load()
	keywords, err := resolveKeywords(cfg, opts)
	if err != nil {
		return err
	}
	if err := cfg.ValidateExtract(); err != nil {
		return err
	}
	if err := cfg.ValidateLoad(); err != nil {
		return err
	}

	archiver, cleanup, err := newArchiver(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	db, dialect, err := database.ConnectSQL(cfg.DBConnString)
	if err != nil {
		return &etl.ConnectionError{Err: err}
	}
	defer db.Close()

	runID := uuid.NewString()
	client := etl.NewYouTubeClient(cfg.APIKey)

	var stages []etl.Stage
	for _, keyword := range keywords {
		stages = append(stages, &etl.SearchExtractor{
			Client:   client,
			Archiver: archiver,
			Keyword:  keyword,
			Max:      resolveMaxResults(cfg, opts),
			OutPath:  cfg.RawArtifactPath(keyword),
			RunID:    runID,
		})
	}
	for _, keyword := range keywords {
		stages = append(stages, &etl.CSVTransformer{
			InPath:  cfg.RawArtifactPath(keyword),
			OutPath: cfg.ProcessedArtifactPath(keyword),
		})
	}
	for _, keyword := range keywords {
		stages = append(stages, &etl.SQLLoader{
			DB:      db,
			Dialect: dialect,
			Table:   cfg.TargetTable,
			InPath:  cfg.ProcessedArtifactPath(keyword),
		})
	}

	return etl.NewPipeline(runID, stages...).Run(ctx)
}

func resolveKeywords(cfg *config.Config, opts *StageOptions) ([]string, error) {
	raw := opts.Keyword
	if raw == "" {
		raw = cfg.SearchKeyword
	}

	keywords := utils.SplitKeywords(raw)
	if len(keywords) == 0 {
		return nil, errors.New("no search keyword given: pass --keyword or set SEARCH_KEYWORD")
	}
	return keywords, nil
}

func resolveMaxResults(cfg *config.Config, opts *StageOptions) int {
	if opts.MaxResults > 0 {
		return opts.MaxResults
	}
	return cfg.MaxResults
}

// newArchiver connects the optional Mongo archive sink; the no-op path
// returns a nil Archiver and a no-op cleanup.
func newArchiver(cfg *config.Config) (etl.Archiver, func(), error) {
	if cfg.MongoURI == "" {
		return nil, func() {}, nil
	}

	client, err := database.ConnectMongo(cfg.MongoURI)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = client.Disconnect(ctx)
	}
	return etl.NewMongoArchiver(client, cfg.MongoDatabase), cleanup, nil
}
