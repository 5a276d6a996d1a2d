package transfer

import (
	"context"
	"fmt"
	"sync"

	"github.com/gdmirror/gdmirror/internal/logging"
	"github.com/gdmirror/gdmirror/internal/types"
	"github.com/gdmirror/gdmirror/internal/utils"
)

// Walker mirrors a source folder tree into the target account. Files at one
// folder level are dispatched to the pipeline through a bounded worker pool;
// sub-folders are processed sequentially in listing order, depth-first, so a
// crash mid-run leaves a valid prefix of the target structure that a re-run
// can resume into.
type Walker struct {
	source   Source
	target   Target
	pipeline *Pipeline
	skip     *SkipPolicy
	counters *Counters
	logger   logging.Logger
	parallel int
	maxDepth int
}

// WalkerConfig assembles a Walker
type WalkerConfig struct {
	Source   Source
	Target   Target
	Pipeline *Pipeline
	Skip     *SkipPolicy
	Counters *Counters
	Logger   logging.Logger
	Parallel int
	MaxDepth int
}

// NewWalker creates a tree walker
func NewWalker(cfg WalkerConfig) *Walker {
	if cfg.Logger == nil {
		cfg.Logger = logging.NewNoOpLogger()
	}
	if cfg.Skip == nil {
		cfg.Skip = NewSkipPolicy(nil)
	}
	if cfg.Counters == nil {
		cfg.Counters = &Counters{}
	}
	if cfg.Parallel <= 0 {
		cfg.Parallel = utils.DefaultParallel
	}
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = utils.MaxWalkDepth
	}
	return &Walker{
		source:   cfg.Source,
		target:   cfg.Target,
		pipeline: cfg.Pipeline,
		skip:     cfg.Skip,
		counters: cfg.Counters,
		logger:   cfg.Logger,
		parallel: cfg.Parallel,
		maxDepth: cfg.MaxDepth,
	}
}

// Mirror recursively copies the source folder's subtree into the target
// folder. path is the human-readable ancestry used for logging.
func (w *Walker) Mirror(ctx context.Context, src, dst *types.DriveFile, path string) error {
	return w.mirror(ctx, src, dst, path, 0)
}

func (w *Walker) mirror(ctx context.Context, src, dst *types.DriveFile, path string, depth int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if depth > w.maxDepth {
		return fmt.Errorf("folder nesting exceeds %d levels at %s", w.maxDepth, path)
	}

	children, err := w.source.ListChildren(ctx, src.ID)
	if err != nil {
		return fmt.Errorf("failed to list source folder %s: %w", path, err)
	}

	targetChildren, err := w.target.ListChildren(ctx, dst.ID)
	if err != nil {
		return fmt.Errorf("failed to list target folder %s: %w", path, err)
	}

	existingFiles := make(map[string]*types.DriveFile)
	existingFolders := make(map[string]*types.DriveFile)
	for _, child := range targetChildren {
		if child.Trashed {
			continue
		}
		if ClassifyItem(child) == KindFolder {
			existingFolders[child.Name] = child
		} else {
			existingFiles[NormalizeTitle(child.Name)] = child
		}
	}

	var plainItems []*types.DriveFile
	var subFolders []*types.DriveFile
	for _, child := range children {
		if ClassifyItem(child) == KindFolder {
			subFolders = append(subFolders, child)
		} else {
			plainItems = append(plainItems, child)
		}
	}

	w.runConcurrent(ctx, plainItems, func(item *types.DriveFile) {
		w.pipeline.Transfer(ctx, item, dst, existingFiles, path)
	})

	for _, folder := range subFolders {
		if err := ctx.Err(); err != nil {
			return err
		}

		if folder.Trashed {
			w.logger.Debug("Skipping trashed folder", logging.F("path", path+folder.Name+"/"))
			continue
		}

		if w.skip.ShouldSkip(folder.Name) {
			w.logger.Info("Skipping excluded folder", logging.F("path", path+folder.Name+"/"))
			w.counters.FoldersSkipped.Add(1)
			continue
		}

		dstFolder, ok := existingFolders[folder.Name]
		if ok {
			w.logger.Info("Reusing existing folder", logging.F("path", path+folder.Name+"/"))
			w.counters.FoldersReused.Add(1)
		} else {
			w.logger.Info("Creating folder", logging.F("path", path+folder.Name+"/"))
			dstFolder, err = w.target.CreateFolder(ctx, folder.Name, dst.ID)
			if err != nil {
				return fmt.Errorf("failed to create target folder %s: %w", path+folder.Name+"/", err)
			}
			w.counters.FoldersCreated.Add(1)
		}

		if err := w.mirror(ctx, folder, dstFolder, path+folder.Name+"/", depth+1); err != nil {
			return err
		}
	}

	return nil
}

// runConcurrent feeds items through a bounded worker pool. The pipeline
// swallows per-item failures, so there is no error fan-in here; a dead
// context just drains the remaining jobs.
func (w *Walker) runConcurrent(ctx context.Context, items []*types.DriveFile, handler func(*types.DriveFile)) {
	if len(items) == 0 {
		return
	}
	width := w.parallel
	if width > len(items) {
		width = len(items)
	}

	jobs := make(chan *types.DriveFile)
	var wg sync.WaitGroup

	for i := 0; i < width; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range jobs {
				if ctx.Err() != nil {
					continue
				}
				handler(item)
			}
		}()
	}

	for _, item := range items {
		jobs <- item
	}
	close(jobs)
	wg.Wait()
}
