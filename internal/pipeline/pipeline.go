// Package pipeline runs one tracker generation: collect, aggregate, render,
// write, and notify.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/legislation-tracker/internal/aggregate"
	"github.com/JakeFAU/legislation-tracker/internal/metrics"
	"github.com/JakeFAU/legislation-tracker/internal/snapshot"
	"github.com/JakeFAU/legislation-tracker/internal/tracker"
)

// ErrNoBills is returned when collection yields nothing. No output is written.
var ErrNoBills = errors.New("pipeline: no bills collected")

// Collector gathers relevant bills across jurisdictions.
type Collector interface {
	Collect(ctx context.Context, jurisdictions []tracker.Jurisdiction) ([]tracker.Bill, error)
}

// Renderer produces the published document.
type Renderer interface {
	Render(bills []tracker.Bill, stats tracker.Stats, generatedAt time.Time) ([]byte, error)
}

// Writer persists the snapshot and document.
type Writer interface {
	Write(ctx context.Context, runID string, snap tracker.Snapshot, document []byte) (snapshot.Artifacts, error)
}

// Config holds the optional notification and metrics targets.
type Config struct {
	TopicID        string
	PushgatewayURL string
	MetricsJob     string
}

// Dependencies are the collaborators of one run. Publisher may be nil when
// no topic is configured.
type Dependencies struct {
	Collector Collector
	Renderer  Renderer
	Writer    Writer
	Publisher tracker.Publisher
	Clock     tracker.Clock
}

// Result summarizes a successful run.
type Result struct {
	RunID       string
	GeneratedAt time.Time
	Stats       tracker.Stats
	Artifacts   snapshot.Artifacts
	MessageID   string
}

// Pipeline wires the run stages together.
type Pipeline struct {
	cfg    Config
	deps   Dependencies
	logger *zap.Logger
}

// New validates the dependencies and returns a Pipeline.
func New(cfg Config, deps Dependencies, logger *zap.Logger) (*Pipeline, error) {
	switch {
	case deps.Collector == nil:
		return nil, errors.New("collector is required")
	case deps.Renderer == nil:
		return nil, errors.New("renderer is required")
	case deps.Writer == nil:
		return nil, errors.New("writer is required")
	case deps.Clock == nil:
		return nil, errors.New("clock is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{cfg: cfg, deps: deps, logger: logger.Named("pipeline")}, nil
}

// Run executes one generation for the given jurisdictions.
func (p *Pipeline) Run(ctx context.Context, runID string, jurisdictions []tracker.Jurisdiction) (Result, error) {
	p.logger.Info("run started", zap.Int("jurisdictions", len(jurisdictions)))

	bills, err := p.deps.Collector.Collect(ctx, jurisdictions)
	if err != nil {
		return Result{}, fmt.Errorf("collect bills: %w", err)
	}
	if len(bills) == 0 {
		p.logger.Error("no bills collected; leaving existing output in place")
		return Result{}, ErrNoBills
	}

	sorted, stats := aggregate.Aggregate(bills)
	generatedAt := p.deps.Clock.Now()

	document, err := p.deps.Renderer.Render(sorted, stats, generatedAt)
	if err != nil {
		return Result{}, fmt.Errorf("render document: %w", err)
	}

	// Never replace good output with a partial collection.
	if err := ctx.Err(); err != nil {
		return Result{}, fmt.Errorf("write artifacts: %w", err)
	}
	snap := snapshot.Build(sorted, generatedAt)
	arts, err := p.deps.Writer.Write(ctx, runID, snap, document)
	if err != nil {
		return Result{}, fmt.Errorf("write artifacts: %w", err)
	}

	res := Result{
		RunID:       runID,
		GeneratedAt: generatedAt,
		Stats:       stats,
		Artifacts:   arts,
	}
	res.MessageID = p.notify(ctx, tracker.RunNotification{
		RunID:          runID,
		GeneratedAt:    snap.GeneratedAt,
		TotalCount:     snap.TotalCount,
		DocumentSHA256: arts.DocumentSHA256,
		Artifacts:      arts.URIs,
	})

	metrics.ObserveRun(stats.Total, generatedAt)
	if err := metrics.Push(ctx, p.cfg.PushgatewayURL, p.cfg.MetricsJob); err != nil {
		p.logger.Warn("metrics push failed", zap.Error(err))
	}

	p.logger.Info("run completed",
		zap.Int("bills", stats.Total),
		zap.Int("jurisdictions", stats.JurisdictionCount),
		zap.Int("active", stats.ActiveCount),
		zap.Int("analyzed", stats.AnalyzedCount),
	)
	return res, nil
}

// notify publishes the run notification. A failure is logged, not returned:
// the artifacts are already written.
func (p *Pipeline) notify(ctx context.Context, note tracker.RunNotification) string {
	if p.cfg.TopicID == "" || p.deps.Publisher == nil {
		return ""
	}
	id, err := p.deps.Publisher.Publish(ctx, p.cfg.TopicID, note)
	if err != nil {
		p.logger.Warn("run notification failed", zap.String("topic", p.cfg.TopicID), zap.Error(err))
		return ""
	}
	p.logger.Info("run notification published", zap.String("topic", p.cfg.TopicID), zap.String("message_id", id))
	return id
}
