package transfer

import (
	"context"
	"time"

	"github.com/gdmirror/gdmirror/internal/logging"
	"github.com/gdmirror/gdmirror/internal/types"
)

// Engine is the top-level driver: it holds the two account handles and runs
// the mirroring walk once from root to root.
type Engine struct {
	walker     *Walker
	counters   *Counters
	sourceRoot *types.DriveFile
	targetRoot *types.DriveFile
	logger     logging.Logger
}

// EngineConfig wires an Engine together
type EngineConfig struct {
	Source      Source
	Target      Target
	SourceRoot  *types.DriveFile
	TargetRoot  *types.DriveFile
	Skip        *SkipPolicy
	Ledger      *Ledger
	Logger      logging.Logger
	ErrorLog    logging.Logger
	TempDir     string
	Parallel    int
	CheckExists bool
	BackoffBase time.Duration
	BackoffMax  time.Duration
}

// NewEngine assembles the pipeline and walker
func NewEngine(cfg EngineConfig) *Engine {
	if cfg.Logger == nil {
		cfg.Logger = logging.NewNoOpLogger()
	}
	counters := &Counters{}

	pipeline := NewPipeline(PipelineConfig{
		Source:      cfg.Source,
		Target:      cfg.Target,
		Ledger:      cfg.Ledger,
		Counters:    counters,
		Logger:      cfg.Logger,
		ErrorLog:    cfg.ErrorLog,
		TempDir:     cfg.TempDir,
		CheckExists: cfg.CheckExists,
		BackoffBase: cfg.BackoffBase,
		BackoffMax:  cfg.BackoffMax,
	})

	walker := NewWalker(WalkerConfig{
		Source:   cfg.Source,
		Target:   cfg.Target,
		Pipeline: pipeline,
		Skip:     cfg.Skip,
		Counters: counters,
		Logger:   cfg.Logger,
		Parallel: cfg.Parallel,
	})

	return &Engine{
		walker:     walker,
		counters:   counters,
		sourceRoot: cfg.SourceRoot,
		targetRoot: cfg.TargetRoot,
		logger:     cfg.Logger,
	}
}

// Run mirrors the source root into the target root and returns run totals.
// Per-item failures are absorbed by the pipeline; only structural failures
// (listing or creating folders) abort the run.
func (e *Engine) Run(ctx context.Context) (Summary, error) {
	start := time.Now()
	e.logger.Info("Migration starting")

	err := e.walker.Mirror(ctx, e.sourceRoot, e.targetRoot, "")

	summary := e.counters.Snapshot()
	e.logger.Info("Migration finished",
		logging.F("duration", time.Since(start).Round(time.Second).String()),
		logging.F("transferred", summary.FilesTransferred),
		logging.F("skipped", summary.FilesSkipped),
		logging.F("failed", summary.FilesFailed),
	)
	return summary, err
}
