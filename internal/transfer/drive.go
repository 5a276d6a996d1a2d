package transfer

import (
	"context"

	"github.com/gdmirror/gdmirror/internal/files"
	"github.com/gdmirror/gdmirror/internal/folders"
	"github.com/gdmirror/gdmirror/internal/types"
)

// DriveSource adapts the Drive managers to the walker's Source interface
type DriveSource struct {
	folders *folders.Manager
	files   *files.Manager
}

// NewDriveSource creates a source backed by one account's Drive managers
func NewDriveSource(foldersMgr *folders.Manager, filesMgr *files.Manager) *DriveSource {
	return &DriveSource{folders: foldersMgr, files: filesMgr}
}

func (s *DriveSource) ListChildren(ctx context.Context, folderID string) ([]*types.DriveFile, error) {
	return s.folders.ListChildren(ctx, folderID)
}

func (s *DriveSource) DownloadToFile(ctx context.Context, file *types.DriveFile, localPath string) error {
	return s.files.DownloadToFile(ctx, file, localPath)
}

func (s *DriveSource) ExportToFile(ctx context.Context, file *types.DriveFile, mimeType string, localPath string) error {
	return s.files.ExportToFile(ctx, file, mimeType, localPath)
}

// DriveTarget adapts the Drive managers to the walker's Target interface
type DriveTarget struct {
	folders *folders.Manager
	files   *files.Manager
}

// NewDriveTarget creates a target backed by one account's Drive managers
func NewDriveTarget(foldersMgr *folders.Manager, filesMgr *files.Manager) *DriveTarget {
	return &DriveTarget{folders: foldersMgr, files: filesMgr}
}

func (t *DriveTarget) ListChildren(ctx context.Context, folderID string) ([]*types.DriveFile, error) {
	return t.folders.ListChildren(ctx, folderID)
}

func (t *DriveTarget) CreateFolder(ctx context.Context, name string, parentID string) (*types.DriveFile, error) {
	return t.folders.Create(ctx, name, parentID)
}

func (t *DriveTarget) Upload(ctx context.Context, req UploadRequest) (*types.DriveFile, error) {
	return t.files.Upload(ctx, req.LocalPath, files.UploadOptions{
		ParentID:    req.ParentID,
		Name:        req.Name,
		ContentType: req.ContentType,
		ConvertTo:   req.ConvertTo,
	})
}

func (t *DriveTarget) Trash(ctx context.Context, fileID string) error {
	return t.files.Trash(ctx, fileID)
}
