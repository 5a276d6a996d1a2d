package folders

import (
	"context"
	"fmt"

	"github.com/gdmirror/gdmirror/internal/api"
	"github.com/gdmirror/gdmirror/internal/types"
	"github.com/gdmirror/gdmirror/internal/utils"
	"google.golang.org/api/drive/v3"
)

// Manager handles folder operations. Listing and creation are structural:
// they go through the client's bounded retry and a persistent failure is
// surfaced to the caller.
type Manager struct {
	client *api.Client
}

// NewManager creates a new folder manager
func NewManager(client *api.Client) *Manager {
	return &Manager{client: client}
}

// ListChildren lists every direct child of a folder, following pagination.
// Trashed children are included so the migration can propagate trash state.
func (m *Manager) ListChildren(ctx context.Context, folderID string) ([]*types.DriveFile, error) {
	reqCtx := m.client.NewRequestContext(types.RequestTypeList)
	reqCtx.InvolvedParentIDs = append(reqCtx.InvolvedParentIDs, folderID)

	query := fmt.Sprintf("'%s' in parents", folderID)

	var all []*types.DriveFile
	pageToken := ""
	for {
		call := m.client.Service().Files.List().
			Q(query).
			PageSize(utils.ListPageSize).
			Fields("nextPageToken,files(id,name,mimeType,size,md5Checksum,createdTime,modifiedTime,parents,exportLinks,trashed)")
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		result, err := api.ExecuteWithRetry(ctx, m.client, reqCtx, func() (*drive.FileList, error) {
			return call.Context(ctx).Do()
		})
		if err != nil {
			return nil, err
		}

		for _, f := range result.Files {
			all = append(all, convertDriveFile(f))
		}

		if result.NextPageToken == "" {
			break
		}
		pageToken = result.NextPageToken
	}

	return all, nil
}

// Create creates a sub-folder under the given parent
func (m *Manager) Create(ctx context.Context, name string, parentID string) (*types.DriveFile, error) {
	reqCtx := m.client.NewRequestContext(types.RequestTypeCreate)
	reqCtx.InvolvedParentIDs = append(reqCtx.InvolvedParentIDs, parentID)

	metadata := &drive.File{
		Name:     name,
		MimeType: utils.MimeTypeFolder,
		Parents:  []string{parentID},
	}

	call := m.client.Service().Files.Create(metadata).
		Fields("id,name,mimeType,trashed,parents")

	result, err := api.ExecuteWithRetry(ctx, m.client, reqCtx, func() (*drive.File, error) {
		return call.Context(ctx).Do()
	})
	if err != nil {
		return nil, err
	}

	return convertDriveFile(result), nil
}

func convertDriveFile(f *drive.File) *types.DriveFile {
	return &types.DriveFile{
		ID:           f.Id,
		Name:         f.Name,
		MimeType:     f.MimeType,
		Size:         f.Size,
		MD5Checksum:  f.Md5Checksum,
		CreatedTime:  f.CreatedTime,
		ModifiedTime: f.ModifiedTime,
		Parents:      f.Parents,
		ExportLinks:  f.ExportLinks,
		Trashed:      f.Trashed,
	}
}
