package etl

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Pipeline runs stages in declaration order and halts on the first failure.
// It mirrors the orchestrator's DAG for local and single-process runs;
// retry and backoff stay with the orchestrator, never here.
type Pipeline struct {
	RunID  string
	Stages []Stage
}

func NewPipeline(runID string, stages ...Stage) *Pipeline {
	if runID == "" {
		runID = uuid.NewString()
	}
	return &Pipeline{RunID: runID, Stages: stages}
}

func (p *Pipeline) Run(ctx context.Context) error {
	start := time.Now()
	slog.Info("starting pipeline run",
		slog.String("run_id", p.RunID), slog.Int("stages", len(p.Stages)))

	for _, stage := range p.Stages {
		stageStart := time.Now()
		if err := stage.Run(ctx); err != nil {
			slog.Error("stage failed, halting run",
				slog.String("run_id", p.RunID),
				slog.String("stage", stage.Name()),
				slog.String("error", err.Error()))
			return fmt.Errorf("stage %s: %w", stage.Name(), err)
		}
		slog.Info("stage finished",
			slog.String("run_id", p.RunID),
			slog.String("stage", stage.Name()),
			slog.Duration("took", time.Since(stageStart)))
	}

	slog.Info("pipeline finished",
		slog.String("run_id", p.RunID), slog.Duration("took", time.Since(start)))
	return nil
}
