package transfer

import (
	"context"
	"sync/atomic"

	"github.com/gdmirror/gdmirror/internal/types"
)

// Source reads items and content from the source account
type Source interface {
	ListChildren(ctx context.Context, folderID string) ([]*types.DriveFile, error)
	DownloadToFile(ctx context.Context, file *types.DriveFile, localPath string) error
	ExportToFile(ctx context.Context, file *types.DriveFile, mimeType string, localPath string) error
}

// UploadRequest describes one upload into the target account
type UploadRequest struct {
	LocalPath   string
	Name        string
	ParentID    string
	ContentType string
	// ConvertTo, when set, asks the provider to convert the uploaded
	// interchange bytes back into the named native type.
	ConvertTo string
}

// Target creates items in the target account
type Target interface {
	ListChildren(ctx context.Context, folderID string) ([]*types.DriveFile, error)
	CreateFolder(ctx context.Context, name string, parentID string) (*types.DriveFile, error)
	Upload(ctx context.Context, req UploadRequest) (*types.DriveFile, error)
	Trash(ctx context.Context, fileID string) error
}

// Counters accumulates run totals across concurrent workers
type Counters struct {
	FilesTransferred atomic.Int64
	FilesSkipped     atomic.Int64
	FilesFailed      atomic.Int64
	FoldersCreated   atomic.Int64
	FoldersReused    atomic.Int64
	FoldersSkipped   atomic.Int64
}

// Summary is a point-in-time copy of the counters
type Summary struct {
	FilesTransferred int64
	FilesSkipped     int64
	FilesFailed      int64
	FoldersCreated   int64
	FoldersReused    int64
	FoldersSkipped   int64
}

// Snapshot copies the counters into a Summary
func (c *Counters) Snapshot() Summary {
	return Summary{
		FilesTransferred: c.FilesTransferred.Load(),
		FilesSkipped:     c.FilesSkipped.Load(),
		FilesFailed:      c.FilesFailed.Load(),
		FoldersCreated:   c.FoldersCreated.Load(),
		FoldersReused:    c.FoldersReused.Load(),
		FoldersSkipped:   c.FoldersSkipped.Load(),
	}
}
