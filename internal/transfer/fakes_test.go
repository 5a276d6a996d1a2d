package transfer

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/gdmirror/gdmirror/internal/types"
)

// fakeSource serves an in-memory folder tree and writes canned payloads to
// the requested local paths.
type fakeSource struct {
	mu       sync.Mutex
	children map[string][]*types.DriveFile

	// per-call error queues; a nil entry means success
	downloadErrs []error
	exportErrs   []error
	listErrs     []error

	downloads []string
	exports   []string
}

func newFakeSource() *fakeSource {
	return &fakeSource{children: make(map[string][]*types.DriveFile)}
}

func (s *fakeSource) ListChildren(ctx context.Context, folderID string) ([]*types.DriveFile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.listErrs) > 0 {
		err := s.listErrs[0]
		s.listErrs = s.listErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	return s.children[folderID], nil
}

func (s *fakeSource) DownloadToFile(ctx context.Context, file *types.DriveFile, localPath string) error {
	s.mu.Lock()
	s.downloads = append(s.downloads, file.ID)
	var err error
	if len(s.downloadErrs) > 0 {
		err = s.downloadErrs[0]
		s.downloadErrs = s.downloadErrs[1:]
	}
	s.mu.Unlock()
	if err != nil {
		return err
	}
	return os.WriteFile(localPath, []byte("payload-"+file.ID), 0644)
}

func (s *fakeSource) ExportToFile(ctx context.Context, file *types.DriveFile, mimeType string, localPath string) error {
	s.mu.Lock()
	s.exports = append(s.exports, file.ID+":"+mimeType)
	var err error
	if len(s.exportErrs) > 0 {
		err = s.exportErrs[0]
		s.exportErrs = s.exportErrs[1:]
	}
	s.mu.Unlock()
	if err != nil {
		return err
	}
	return os.WriteFile(localPath, []byte("export-"+file.ID), 0644)
}

// fakeTarget records created folders and uploads in an in-memory tree
type fakeTarget struct {
	mu       sync.Mutex
	children map[string][]*types.DriveFile

	uploadErrs []error
	createErrs []error

	uploads []UploadRequest
	trashed []string
	nextID  int
}

func newFakeTarget() *fakeTarget {
	return &fakeTarget{children: make(map[string][]*types.DriveFile)}
}

func (t *fakeTarget) ListChildren(ctx context.Context, folderID string) ([]*types.DriveFile, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.children[folderID], nil
}

func (t *fakeTarget) CreateFolder(ctx context.Context, name string, parentID string) (*types.DriveFile, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.createErrs) > 0 {
		err := t.createErrs[0]
		t.createErrs = t.createErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	t.nextID++
	folder := &types.DriveFile{
		ID:       fmt.Sprintf("tf%d", t.nextID),
		Name:     name,
		MimeType: "application/vnd.google-apps.folder",
		Parents:  []string{parentID},
	}
	t.children[parentID] = append(t.children[parentID], folder)
	return folder, nil
}

func (t *fakeTarget) Upload(ctx context.Context, req UploadRequest) (*types.DriveFile, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.uploads = append(t.uploads, req)
	if len(t.uploadErrs) > 0 {
		err := t.uploadErrs[0]
		t.uploadErrs = t.uploadErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	t.nextID++
	mimeType := req.ContentType
	if req.ConvertTo != "" {
		mimeType = req.ConvertTo
	}
	file := &types.DriveFile{
		ID:       fmt.Sprintf("t%d", t.nextID),
		Name:     req.Name,
		MimeType: mimeType,
		Parents:  []string{req.ParentID},
	}
	t.children[req.ParentID] = append(t.children[req.ParentID], file)
	return file, nil
}

func (t *fakeTarget) Trash(ctx context.Context, fileID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.trashed = append(t.trashed, fileID)
	return nil
}

func (t *fakeTarget) folderByName(parentID, name string) *types.DriveFile {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, child := range t.children[parentID] {
		if child.Name == name && child.MimeType == "application/vnd.google-apps.folder" {
			return child
		}
	}
	return nil
}
