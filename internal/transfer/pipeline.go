package transfer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gdmirror/gdmirror/internal/logging"
	"github.com/gdmirror/gdmirror/internal/types"
	"github.com/gdmirror/gdmirror/internal/utils"
)

// Pipeline executes one item transfer at a time: classify, check the target
// for an existing copy, fetch from source, push to target, record the
// correspondence, clean up the temp file. Transient provider failures are
// retried with exponential backoff local to the item; permanent failures are
// written to the error log and the walk moves on.
type Pipeline struct {
	source   Source
	target   Target
	ledger   *Ledger
	counters *Counters
	logger   logging.Logger
	errlog   logging.Logger
	tempDir  string

	// checkExists skips items whose normalized title already exists in the
	// destination folder, making re-runs idempotent.
	checkExists bool

	backoffBase time.Duration
	backoffMax  time.Duration

	// sleep is swappable in tests; it returns false if the context died
	sleep func(ctx context.Context, d time.Duration) bool
}

// PipelineConfig assembles a Pipeline
type PipelineConfig struct {
	Source      Source
	Target      Target
	Ledger      *Ledger
	Counters    *Counters
	Logger      logging.Logger
	ErrorLog    logging.Logger
	TempDir     string
	CheckExists bool
	BackoffBase time.Duration
	BackoffMax  time.Duration
}

// NewPipeline creates a transfer pipeline
func NewPipeline(cfg PipelineConfig) *Pipeline {
	if cfg.Logger == nil {
		cfg.Logger = logging.NewNoOpLogger()
	}
	if cfg.ErrorLog == nil {
		cfg.ErrorLog = logging.NewNoOpLogger()
	}
	if cfg.Counters == nil {
		cfg.Counters = &Counters{}
	}
	if cfg.TempDir == "" {
		cfg.TempDir = "tmp"
	}
	if cfg.BackoffBase <= 0 {
		cfg.BackoffBase = time.Duration(utils.TransferBackoffBaseMs) * time.Millisecond
	}
	if cfg.BackoffMax <= 0 {
		cfg.BackoffMax = time.Duration(utils.TransferBackoffMaxMs) * time.Millisecond
	}
	return &Pipeline{
		source:      cfg.Source,
		target:      cfg.Target,
		ledger:      cfg.Ledger,
		counters:    cfg.Counters,
		logger:      cfg.Logger,
		errlog:      cfg.ErrorLog,
		tempDir:     cfg.TempDir,
		checkExists: cfg.CheckExists,
		backoffBase: cfg.BackoffBase,
		backoffMax:  cfg.BackoffMax,
		sleep:       sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}

// newItemBackoff returns a fresh backoff for one item's retry chain. The
// wait doubles from the base on every transient failure and is never shared
// between items.
func (p *Pipeline) newItemBackoff() backoff.BackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = p.backoffBase
	bo.RandomizationFactor = 0
	bo.Multiplier = 2
	bo.MaxInterval = p.backoffMax
	bo.MaxElapsedTime = 0
	bo.Reset()
	return bo
}

// Transfer migrates one item into the destination folder. It returns true
// only when the item was newly transferred; skips and failures return false.
// existing holds the destination folder's current children keyed by
// normalized title.
func (p *Pipeline) Transfer(ctx context.Context, item *types.DriveFile, dest *types.DriveFile, existing map[string]*types.DriveFile, path string) bool {
	if ClassifyItem(item) == KindFolder {
		return false
	}

	bo := p.newItemBackoff()
	for {
		transferred, err := p.attempt(ctx, item, dest, existing, path)
		if err == nil {
			return transferred
		}

		if !utils.IsRetryable(err) || ctx.Err() != nil {
			p.recordFailure(path, item, err)
			return false
		}

		wait := bo.NextBackOff()
		p.logger.Warn("Transfer failed, retrying",
			logging.F("path", path+NormalizeTitle(item.Name)),
			logging.F("wait", wait.String()),
			logging.F("error", err.Error()),
		)
		if !p.sleep(ctx, wait) {
			p.recordFailure(path, item, ctx.Err())
			return false
		}
	}
}

// attempt runs one pass of the transfer state machine
func (p *Pipeline) attempt(ctx context.Context, item *types.DriveFile, dest *types.DriveFile, existing map[string]*types.DriveFile, path string) (bool, error) {
	title := NormalizeTitle(item.Name)
	display := path + title

	if p.checkExists {
		if _, ok := existing[title]; ok {
			p.logger.Info("Already present on target, skipping", logging.F("path", display))
			p.counters.FilesSkipped.Add(1)
			return false, nil
		}
	}

	kind := ClassifyItem(item)

	var created *types.DriveFile
	var err error
	switch kind {
	case KindIgnored:
		return false, nil
	case KindUnsupported:
		return false, utils.NewAppError(utils.NewCLIError(utils.ErrCodeUnsupportedKind,
			fmt.Sprintf("No transferable representation for %s", item.MimeType)).Build())
	case KindDocument, KindSpreadsheet, KindPresentation:
		created, err = p.transferConvertible(ctx, item, dest, kind, title, display)
	case KindPlainFile:
		created, err = p.transferBlob(ctx, item, dest, title, display)
	default:
		return false, nil
	}
	if err != nil {
		return false, err
	}

	// The source item may sit in the trash. The copy is still created and
	// then trashed on the target so the ledger keeps the mapping.
	if item.Trashed {
		p.logger.Info("Propagating trashed state", logging.F("path", display))
		if err := p.target.Trash(ctx, created.ID); err != nil {
			return false, err
		}
	}

	if err := p.ledger.Record(item.ID, created.ID); err != nil {
		// Not retried: the transfer itself landed, only the bookkeeping
		// is incomplete.
		p.logger.Error("Ledger write failed", logging.F("path", display), logging.F("error", err.Error()))
		p.errlog.Error(display, logging.F("error", err.Error()))
		p.counters.FilesFailed.Add(1)
		return false, nil
	}

	p.logger.Info("Transferred", logging.F("path", display))
	p.counters.FilesTransferred.Add(1)
	return true, nil
}

// transferConvertible exports a Workspace document to its interchange format
// and uploads it with provider-side conversion back to the native kind.
func (p *Pipeline) transferConvertible(ctx context.Context, item *types.DriveFile, dest *types.DriveFile, kind ItemKind, title, display string) (*types.DriveFile, error) {
	exportMime, ext, ok := ExportFormat(kind)
	if !ok {
		return nil, utils.NewAppError(utils.NewCLIError(utils.ErrCodeUnsupportedKind,
			fmt.Sprintf("No export format for kind %s", kind)).Build())
	}

	tmpPath, err := p.tempFilePath(item, title, ext)
	if err != nil {
		return nil, err
	}
	defer p.cleanTemp(tmpPath, display)

	p.logger.Info("(from source) Exporting", logging.F("path", display), logging.F("format", ext))
	if err := p.source.ExportToFile(ctx, item, exportMime, tmpPath); err != nil {
		return nil, err
	}

	p.logger.Info("(to target) Uploading", logging.F("path", display))
	created, err := p.target.Upload(ctx, UploadRequest{
		LocalPath:   tmpPath,
		Name:        title,
		ParentID:    dest.ID,
		ContentType: exportMime,
		ConvertTo:   NativeMimeType(kind),
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// transferBlob downloads a plain file and re-uploads it byte-for-byte,
// declining provider-side conversion.
func (p *Pipeline) transferBlob(ctx context.Context, item *types.DriveFile, dest *types.DriveFile, title, display string) (*types.DriveFile, error) {
	tmpPath, err := p.tempFilePath(item, title, "")
	if err != nil {
		return nil, err
	}
	defer p.cleanTemp(tmpPath, display)

	p.logger.Info("(from source) Downloading", logging.F("path", display))
	if err := p.source.DownloadToFile(ctx, item, tmpPath); err != nil {
		return nil, err
	}

	p.logger.Info("(to target) Uploading", logging.F("path", display))
	created, err := p.target.Upload(ctx, UploadRequest{
		LocalPath:   tmpPath,
		Name:        title,
		ParentID:    dest.ID,
		ContentType: item.MimeType,
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// tempFilePath builds the worker-private temp path for an item. Keying by
// item ID keeps concurrent workers off each other's files.
func (p *Pipeline) tempFilePath(item *types.DriveFile, title, ext string) (string, error) {
	if err := os.MkdirAll(p.tempDir, 0755); err != nil {
		return "", utils.NewAppError(utils.NewCLIError(utils.ErrCodeLocalFile,
			fmt.Sprintf("Failed to create temp dir: %s", err)).Build())
	}
	return filepath.Join(p.tempDir, item.ID+"-"+title+ext), nil
}

func (p *Pipeline) cleanTemp(path, display string) {
	p.logger.Debug("Cleaning", logging.F("path", display))
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		p.logger.Warn("Failed to remove temp file", logging.F("tmp", path), logging.F("error", err.Error()))
	}
}

// recordFailure logs a permanent failure against the item's normalized path
func (p *Pipeline) recordFailure(path string, item *types.DriveFile, err error) {
	display := path + NormalizeTitle(item.Name)
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	p.logger.Error("Fail to transfer", logging.F("path", display), logging.F("error", msg))
	p.errlog.Error(display, logging.F("error", msg))
	p.counters.FilesFailed.Add(1)
}
