package types

// DriveFile represents a Google Drive file or folder as the migration sees it.
// It is a read-only view of provider state; the engine observes identity but
// never mutates it.
type DriveFile struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	MimeType     string            `json:"mimeType"`
	Size         int64             `json:"size,omitempty"`
	MD5Checksum  string            `json:"md5Checksum,omitempty"`
	CreatedTime  string            `json:"createdTime,omitempty"`
	ModifiedTime string            `json:"modifiedTime,omitempty"`
	Parents      []string          `json:"parents,omitempty"`
	ExportLinks  map[string]string `json:"exportLinks,omitempty"`
	Trashed      bool              `json:"trashed,omitempty"`
}
