package files

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/gdmirror/gdmirror/internal/api"
	apierrors "github.com/gdmirror/gdmirror/internal/errors"
	"github.com/gdmirror/gdmirror/internal/types"
	"github.com/gdmirror/gdmirror/internal/utils"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
)

// Manager handles file content operations. Unlike folder operations, these
// calls do not retry internally: the transfer pipeline owns the retry loop
// and this manager only classifies failures.
type Manager struct {
	client *api.Client
}

// NewManager creates a new file manager
func NewManager(client *api.Client) *Manager {
	return &Manager{client: client}
}

// UploadOptions configures an upload to the target account
type UploadOptions struct {
	ParentID    string
	Name        string
	ContentType string
	// ConvertTo, when set, asks Drive to convert the uploaded bytes into
	// the named native type (e.g. back into a Google Spreadsheet).
	ConvertTo string
}

// DownloadToFile downloads a blob file's content into a local file
func (m *Manager) DownloadToFile(ctx context.Context, file *types.DriveFile, localPath string) error {
	reqCtx := m.client.NewRequestContext(types.RequestTypeDownload)
	reqCtx.InvolvedFileIDs = append(reqCtx.InvolvedFileIDs, file.ID)

	out, err := os.Create(localPath)
	if err != nil {
		return utils.NewAppError(utils.NewCLIError(utils.ErrCodeLocalFile,
			fmt.Sprintf("Failed to create temp file: %s", err)).Build())
	}
	defer out.Close()

	resp, err := m.client.Service().Files.Get(file.ID).Context(ctx).Download()
	if err != nil {
		return apierrors.ClassifyGoogleAPIError(err, reqCtx, m.client.Logger())
	}
	defer resp.Body.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		return apierrors.ClassifyGoogleAPIError(err, reqCtx, m.client.Logger())
	}
	return nil
}

// ExportToFile exports a Workspace document into an interchange format,
// writing the result to a local file.
func (m *Manager) ExportToFile(ctx context.Context, file *types.DriveFile, mimeType string, localPath string) error {
	reqCtx := m.client.NewRequestContext(types.RequestTypeExport)
	reqCtx.InvolvedFileIDs = append(reqCtx.InvolvedFileIDs, file.ID)

	out, err := os.Create(localPath)
	if err != nil {
		return utils.NewAppError(utils.NewCLIError(utils.ErrCodeLocalFile,
			fmt.Sprintf("Failed to create temp file: %s", err)).Build())
	}
	defer out.Close()

	resp, err := m.client.Service().Files.Export(file.ID, mimeType).Context(ctx).Download()
	if err != nil {
		return apierrors.ClassifyGoogleAPIError(err, reqCtx, m.client.Logger())
	}
	defer resp.Body.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		return apierrors.ClassifyGoogleAPIError(err, reqCtx, m.client.Logger())
	}
	return nil
}

// Upload uploads a local file into the target folder. When opts.ConvertTo is
// set the file metadata carries the native type so Drive converts the
// interchange bytes on ingest; otherwise the blob is stored as-is.
func (m *Manager) Upload(ctx context.Context, localPath string, opts UploadOptions) (*types.DriveFile, error) {
	reqCtx := m.client.NewRequestContext(types.RequestTypeCreate)
	reqCtx.InvolvedParentIDs = append(reqCtx.InvolvedParentIDs, opts.ParentID)

	in, err := os.Open(localPath)
	if err != nil {
		return nil, utils.NewAppError(utils.NewCLIError(utils.ErrCodeLocalFile,
			fmt.Sprintf("Failed to open temp file: %s", err)).Build())
	}
	defer in.Close()

	metadata := &drive.File{
		Name:    opts.Name,
		Parents: []string{opts.ParentID},
	}
	if opts.ConvertTo != "" {
		metadata.MimeType = opts.ConvertTo
	}

	var mediaOpts []googleapi.MediaOption
	if opts.ContentType != "" {
		mediaOpts = append(mediaOpts, googleapi.ContentType(opts.ContentType))
	}

	call := m.client.Service().Files.Create(metadata).
		Media(in, mediaOpts...).
		Fields("id,name,mimeType,trashed,parents")

	result, err := call.Context(ctx).Do()
	if err != nil {
		return nil, apierrors.ClassifyGoogleAPIError(err, reqCtx, m.client.Logger())
	}

	return &types.DriveFile{
		ID:       result.Id,
		Name:     result.Name,
		MimeType: result.MimeType,
		Parents:  result.Parents,
		Trashed:  result.Trashed,
	}, nil
}

// Trash soft-deletes a file on the target account
func (m *Manager) Trash(ctx context.Context, fileID string) error {
	reqCtx := m.client.NewRequestContext(types.RequestTypeUpdate)
	reqCtx.InvolvedFileIDs = append(reqCtx.InvolvedFileIDs, fileID)

	call := m.client.Service().Files.Update(fileID, &drive.File{Trashed: true})

	_, err := call.Context(ctx).Do()
	if err != nil {
		return apierrors.ClassifyGoogleAPIError(err, reqCtx, m.client.Logger())
	}
	return nil
}
