package services

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const compensationTimeout = 15 * time.Second

// Stage is one named step of a pipeline. Compensate, when set, undoes the
// stage's side effect if a later stage fails. Stages are never retried.
type Stage struct {
	Name       string
	Run        func(ctx context.Context) error
	Compensate func(ctx context.Context) error
}

// StageObserver receives the outcome of every executed stage.
type StageObserver interface {
	ObserveStage(pipeline, stage string, err error, elapsed time.Duration)
}

// Pipeline runs stages in strict sequence and stops at the first failure.
type Pipeline struct {
	name     string
	stages   []Stage
	observer StageObserver
	logger   *zap.SugaredLogger
}

// NewPipeline builds a pipeline. observer may be nil.
func NewPipeline(name string, observer StageObserver, logger *zap.SugaredLogger, stages ...Stage) *Pipeline {
	return &Pipeline{name: name, stages: stages, observer: observer, logger: logger}
}

// Execute runs every stage. On failure the completed stages are compensated
// in reverse order and the failing stage's error is returned unchanged.
func (p *Pipeline) Execute(ctx context.Context) error {
	completed := make([]Stage, 0, len(p.stages))

	for _, st := range p.stages {
		start := time.Now()
		err := st.Run(ctx)
		if p.observer != nil {
			p.observer.ObserveStage(p.name, st.Name, err, time.Since(start))
		}
		if err != nil {
			p.logger.Errorw("Pipeline stage failed",
				"pipeline", p.name,
				"stage", st.Name,
				"error", err,
			)
			p.compensate(ctx, completed)
			return err
		}
		completed = append(completed, st)
	}
	return nil
}

func (p *Pipeline) compensate(ctx context.Context, completed []Stage) {
	// The request context may already be cancelled; cleanup still runs.
	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), compensationTimeout)
	defer cancel()

	for i := len(completed) - 1; i >= 0; i-- {
		st := completed[i]
		if st.Compensate == nil {
			continue
		}
		if err := st.Compensate(cctx); err != nil {
			p.logger.Warnw("Compensation failed", "pipeline", p.name, "stage", st.Name, "error", err)
			continue
		}
		p.logger.Infow("Stage compensated", "pipeline", p.name, "stage", st.Name)
	}
}
