package transfer

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gdmirror/gdmirror/internal/types"
	"github.com/gdmirror/gdmirror/internal/utils"
)

func retryableErr(msg string) error {
	return utils.NewAppError(utils.NewCLIError(utils.ErrCodeNetworkError, msg).
		WithRetryable(true).Build())
}

func permanentErr(msg string) error {
	return utils.NewAppError(utils.NewCLIError(utils.ErrCodeFileNotFound, msg).Build())
}

type pipelineHarness struct {
	pipeline   *Pipeline
	counters   *Counters
	ledgerPath string
	tempDir    string
	slept      *[]time.Duration
}

func newPipelineHarness(t *testing.T, src Source, tgt Target, checkExists bool) *pipelineHarness {
	t.Helper()

	dir := t.TempDir()
	ledgerPath := filepath.Join(dir, "ledger.txt")
	ledger, err := OpenLedger(ledgerPath)
	if err != nil {
		t.Fatalf("OpenLedger() error = %v", err)
	}
	t.Cleanup(func() { ledger.Close() })

	counters := &Counters{}
	tempDir := filepath.Join(dir, "tmp")

	p := NewPipeline(PipelineConfig{
		Source:      src,
		Target:      tgt,
		Ledger:      ledger,
		Counters:    counters,
		TempDir:     tempDir,
		CheckExists: checkExists,
		BackoffBase: time.Second,
	})

	slept := &[]time.Duration{}
	p.sleep = func(ctx context.Context, d time.Duration) bool {
		*slept = append(*slept, d)
		return ctx.Err() == nil
	}

	return &pipelineHarness{
		pipeline:   p,
		counters:   counters,
		ledgerPath: ledgerPath,
		tempDir:    tempDir,
		slept:      slept,
	}
}

func (h *pipelineHarness) ledgerLines(t *testing.T) []string {
	t.Helper()
	data, err := os.ReadFile(h.ledgerPath)
	if err != nil {
		t.Fatalf("reading ledger: %v", err)
	}
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "\n")
}

func (h *pipelineHarness) tempFiles(t *testing.T) []string {
	t.Helper()
	entries, err := os.ReadDir(h.tempDir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		t.Fatalf("reading temp dir: %v", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestTransferPlainFile(t *testing.T) {
	src := newFakeSource()
	tgt := newFakeTarget()
	h := newPipelineHarness(t, src, tgt, true)

	item := &types.DriveFile{ID: "src1", Name: "report.pdf", MimeType: "application/pdf"}
	dest := &types.DriveFile{ID: "dst", MimeType: utils.MimeTypeFolder}

	ok := h.pipeline.Transfer(context.Background(), item, dest, nil, "/")
	if !ok {
		t.Fatal("Transfer() = false, want true")
	}

	if len(tgt.uploads) != 1 {
		t.Fatalf("uploads = %d, want 1", len(tgt.uploads))
	}
	up := tgt.uploads[0]
	if up.Name != "report.pdf" || up.ParentID != "dst" {
		t.Errorf("upload = %+v, want name report.pdf into dst", up)
	}
	if up.ContentType != "application/pdf" {
		t.Errorf("ContentType = %q, want application/pdf", up.ContentType)
	}
	if up.ConvertTo != "" {
		t.Errorf("ConvertTo = %q, want empty for plain files", up.ConvertTo)
	}

	lines := h.ledgerLines(t)
	if len(lines) != 1 || lines[0] != "src1,t1" {
		t.Errorf("ledger = %v, want [src1,t1]", lines)
	}
	if got := h.counters.FilesTransferred.Load(); got != 1 {
		t.Errorf("FilesTransferred = %d, want 1", got)
	}
	if files := h.tempFiles(t); len(files) != 0 {
		t.Errorf("temp files left behind: %v", files)
	}
}

func TestTransferConvertibleDocument(t *testing.T) {
	tests := []struct {
		name       string
		mimeType   string
		exportMime string
		convertTo  string
	}{
		{"spreadsheet", utils.MimeTypeSpreadsheet, utils.MimeTypeXLSX, utils.MimeTypeSpreadsheet},
		{"document", utils.MimeTypeDocument, utils.MimeTypeDOCX, utils.MimeTypeDocument},
		{"presentation", utils.MimeTypePresentation, utils.MimeTypePPTX, utils.MimeTypePresentation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := newFakeSource()
			tgt := newFakeTarget()
			h := newPipelineHarness(t, src, tgt, true)

			item := &types.DriveFile{ID: "g1", Name: "budget", MimeType: tt.mimeType}
			dest := &types.DriveFile{ID: "dst", MimeType: utils.MimeTypeFolder}

			if ok := h.pipeline.Transfer(context.Background(), item, dest, nil, "/"); !ok {
				t.Fatal("Transfer() = false, want true")
			}

			if len(src.exports) != 1 || src.exports[0] != "g1:"+tt.exportMime {
				t.Errorf("exports = %v, want [g1:%s]", src.exports, tt.exportMime)
			}
			if len(src.downloads) != 0 {
				t.Errorf("downloads = %v, want none for a convertible item", src.downloads)
			}
			if len(tgt.uploads) != 1 {
				t.Fatalf("uploads = %d, want 1", len(tgt.uploads))
			}
			up := tgt.uploads[0]
			if up.ContentType != tt.exportMime {
				t.Errorf("ContentType = %q, want %q", up.ContentType, tt.exportMime)
			}
			if up.ConvertTo != tt.convertTo {
				t.Errorf("ConvertTo = %q, want %q", up.ConvertTo, tt.convertTo)
			}
		})
	}
}

func TestTransferSkipsExistingTitle(t *testing.T) {
	src := newFakeSource()
	tgt := newFakeTarget()
	h := newPipelineHarness(t, src, tgt, true)

	item := &types.DriveFile{ID: "src1", Name: "a/b.txt", MimeType: "text/plain"}
	dest := &types.DriveFile{ID: "dst", MimeType: utils.MimeTypeFolder}
	existing := map[string]*types.DriveFile{
		"a-b.txt": {ID: "old", Name: "a-b.txt", MimeType: "text/plain"},
	}

	if ok := h.pipeline.Transfer(context.Background(), item, dest, existing, "/"); ok {
		t.Fatal("Transfer() = true, want false for an existing title")
	}

	if len(src.downloads) != 0 || len(tgt.uploads) != 0 {
		t.Errorf("skip still touched providers: downloads=%v uploads=%v", src.downloads, tgt.uploads)
	}
	if got := h.counters.FilesSkipped.Load(); got != 1 {
		t.Errorf("FilesSkipped = %d, want 1", got)
	}
	if lines := h.ledgerLines(t); len(lines) != 0 {
		t.Errorf("ledger = %v, want empty", lines)
	}
}

func TestTransferRetriesTransientFailures(t *testing.T) {
	src := newFakeSource()
	src.downloadErrs = []error{
		retryableErr("connection reset by peer"),
		retryableErr("connection reset by peer"),
		nil,
	}
	tgt := newFakeTarget()
	h := newPipelineHarness(t, src, tgt, true)

	item := &types.DriveFile{ID: "src1", Name: "big.bin", MimeType: "application/octet-stream"}
	dest := &types.DriveFile{ID: "dst", MimeType: utils.MimeTypeFolder}

	if ok := h.pipeline.Transfer(context.Background(), item, dest, nil, "/"); !ok {
		t.Fatal("Transfer() = false, want true after retries")
	}

	if len(src.downloads) != 3 {
		t.Errorf("download attempts = %d, want 3", len(src.downloads))
	}
	want := []time.Duration{time.Second, 2 * time.Second}
	if len(*h.slept) != len(want) {
		t.Fatalf("sleeps = %v, want %v", *h.slept, want)
	}
	for i, d := range want {
		if (*h.slept)[i] != d {
			t.Errorf("sleep[%d] = %v, want %v", i, (*h.slept)[i], d)
		}
	}

	if lines := h.ledgerLines(t); len(lines) != 1 {
		t.Errorf("ledger = %v, want exactly one record", lines)
	}
	if got := h.counters.FilesTransferred.Load(); got != 1 {
		t.Errorf("FilesTransferred = %d, want 1", got)
	}
	if got := h.counters.FilesFailed.Load(); got != 0 {
		t.Errorf("FilesFailed = %d, want 0", got)
	}
}

func TestTransferPermanentFailureNotRetried(t *testing.T) {
	src := newFakeSource()
	src.downloadErrs = []error{permanentErr("file not found")}
	tgt := newFakeTarget()
	h := newPipelineHarness(t, src, tgt, true)

	item := &types.DriveFile{ID: "src1", Name: "gone.txt", MimeType: "text/plain"}
	dest := &types.DriveFile{ID: "dst", MimeType: utils.MimeTypeFolder}

	if ok := h.pipeline.Transfer(context.Background(), item, dest, nil, "/"); ok {
		t.Fatal("Transfer() = true, want false")
	}

	if len(src.downloads) != 1 {
		t.Errorf("download attempts = %d, want 1", len(src.downloads))
	}
	if len(*h.slept) != 0 {
		t.Errorf("sleeps = %v, want none", *h.slept)
	}
	if got := h.counters.FilesFailed.Load(); got != 1 {
		t.Errorf("FilesFailed = %d, want 1", got)
	}
	if lines := h.ledgerLines(t); len(lines) != 0 {
		t.Errorf("ledger = %v, want empty", lines)
	}
	if files := h.tempFiles(t); len(files) != 0 {
		t.Errorf("temp files left behind: %v", files)
	}
}

func TestTransferUnsupportedKind(t *testing.T) {
	src := newFakeSource()
	tgt := newFakeTarget()
	h := newPipelineHarness(t, src, tgt, true)

	item := &types.DriveFile{ID: "d1", Name: "sketch", MimeType: utils.MimeTypeDrawing}
	dest := &types.DriveFile{ID: "dst", MimeType: utils.MimeTypeFolder}

	if ok := h.pipeline.Transfer(context.Background(), item, dest, nil, "/"); ok {
		t.Fatal("Transfer() = true, want false for an unsupported kind")
	}

	if len(tgt.uploads) != 0 {
		t.Errorf("uploads = %v, want none", tgt.uploads)
	}
	if got := h.counters.FilesFailed.Load(); got != 1 {
		t.Errorf("FilesFailed = %d, want 1", got)
	}
	if len(*h.slept) != 0 {
		t.Errorf("sleeps = %v, want none", *h.slept)
	}
}

func TestTransferIgnoresShortcuts(t *testing.T) {
	src := newFakeSource()
	tgt := newFakeTarget()
	h := newPipelineHarness(t, src, tgt, true)

	item := &types.DriveFile{ID: "s1", Name: "alias", MimeType: utils.MimeTypeShortcut}
	dest := &types.DriveFile{ID: "dst", MimeType: utils.MimeTypeFolder}

	if ok := h.pipeline.Transfer(context.Background(), item, dest, nil, "/"); ok {
		t.Fatal("Transfer() = true, want false for a shortcut")
	}

	sum := h.counters.Snapshot()
	if sum.FilesTransferred != 0 || sum.FilesSkipped != 0 || sum.FilesFailed != 0 {
		t.Errorf("counters moved for a shortcut: %+v", sum)
	}
}

func TestTransferPropagatesTrashedState(t *testing.T) {
	src := newFakeSource()
	tgt := newFakeTarget()
	h := newPipelineHarness(t, src, tgt, true)

	item := &types.DriveFile{ID: "src1", Name: "old.txt", MimeType: "text/plain", Trashed: true}
	dest := &types.DriveFile{ID: "dst", MimeType: utils.MimeTypeFolder}

	if ok := h.pipeline.Transfer(context.Background(), item, dest, nil, "/"); !ok {
		t.Fatal("Transfer() = false, want true")
	}

	if len(tgt.trashed) != 1 || tgt.trashed[0] != "t1" {
		t.Errorf("trashed = %v, want [t1]", tgt.trashed)
	}
	if lines := h.ledgerLines(t); len(lines) != 1 || lines[0] != "src1,t1" {
		t.Errorf("ledger = %v, want [src1,t1]", lines)
	}
}

func TestTransferRefusesFolders(t *testing.T) {
	src := newFakeSource()
	tgt := newFakeTarget()
	h := newPipelineHarness(t, src, tgt, true)

	item := &types.DriveFile{ID: "f1", Name: "docs", MimeType: utils.MimeTypeFolder}
	dest := &types.DriveFile{ID: "dst", MimeType: utils.MimeTypeFolder}

	if ok := h.pipeline.Transfer(context.Background(), item, dest, nil, "/"); ok {
		t.Fatal("Transfer() = true, want false for a folder")
	}
	if len(tgt.uploads) != 0 {
		t.Errorf("uploads = %v, want none", tgt.uploads)
	}
}

func TestTransferCancelledContext(t *testing.T) {
	src := newFakeSource()
	src.downloadErrs = []error{retryableErr("connection reset by peer")}
	tgt := newFakeTarget()
	h := newPipelineHarness(t, src, tgt, true)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	item := &types.DriveFile{ID: "src1", Name: "x.txt", MimeType: "text/plain"}
	dest := &types.DriveFile{ID: "dst", MimeType: utils.MimeTypeFolder}

	if ok := h.pipeline.Transfer(ctx, item, dest, nil, "/"); ok {
		t.Fatal("Transfer() = true, want false with a dead context")
	}
	if got := h.counters.FilesFailed.Load(); got != 1 {
		t.Errorf("FilesFailed = %d, want 1", got)
	}
}

func TestTransferNormalizesTempFileName(t *testing.T) {
	src := newFakeSource()
	tgt := newFakeTarget()
	h := newPipelineHarness(t, src, tgt, true)

	item := &types.DriveFile{ID: "src1", Name: `q1/report\final.txt`, MimeType: "text/plain"}
	dest := &types.DriveFile{ID: "dst", MimeType: utils.MimeTypeFolder}

	if ok := h.pipeline.Transfer(context.Background(), item, dest, nil, "/"); !ok {
		t.Fatal("Transfer() = false, want true")
	}
	if len(tgt.uploads) != 1 {
		t.Fatalf("uploads = %d, want 1", len(tgt.uploads))
	}
	up := tgt.uploads[0]
	if up.Name != "q1-report-final.txt" {
		t.Errorf("upload name = %q, want q1-report-final.txt", up.Name)
	}
	if base := filepath.Base(up.LocalPath); base != "src1-q1-report-final.txt" {
		t.Errorf("temp file = %q, want src1-q1-report-final.txt", base)
	}
}
