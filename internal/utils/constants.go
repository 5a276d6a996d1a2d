package utils

// Google Workspace MIME types
const (
	MimeTypeDocument     = "application/vnd.google-apps.document"
	MimeTypeSpreadsheet  = "application/vnd.google-apps.spreadsheet"
	MimeTypePresentation = "application/vnd.google-apps.presentation"
	MimeTypeDrawing      = "application/vnd.google-apps.drawing"
	MimeTypeForm         = "application/vnd.google-apps.form"
	MimeTypeScript       = "application/vnd.google-apps.script"
	MimeTypeFolder       = "application/vnd.google-apps.folder"
	MimeTypeShortcut     = "application/vnd.google-apps.shortcut"
)

// Office interchange MIME types used when exporting Workspace documents
const (
	MimeTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	MimeTypeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MimeTypePPTX = "application/vnd.openxmlformats-officedocument.presentationml.presentation"
)

// OAuth scopes
const (
	ScopeFull     = "https://www.googleapis.com/auth/drive"
	ScopeReadonly = "https://www.googleapis.com/auth/drive.readonly"
)

// Retry configuration for structural (list/create) operations
const (
	DefaultMaxRetries   = 3
	DefaultRetryDelayMs = 1000
	MaxRetryDelayMs     = 32000
)

// Transfer retry configuration. Item transfers retry without an attempt
// ceiling; the interval doubles from the base until it hits the cap.
const (
	TransferBackoffBaseMs = 1000
	TransferBackoffMaxMs  = 15 * 60 * 1000
)

// DefaultParallel is the default transfer worker-pool width
const DefaultParallel = 2

// ListPageSize is the page size used when listing folder children
const ListPageSize = 100

// MaxWalkDepth caps recursion over provider-supplied trees. Drive guarantees
// acyclic containment but depth is operator-controlled.
const MaxWalkDepth = 64

// Default file locations
const (
	DefaultLedgerPath   = "correspondence_table.txt"
	DefaultErrorLogPath = "transfer_errors.log"
	DefaultStrategyPath = "transfer_strategy.yml"
)

// IsWorkspaceMimeType checks if a MIME type is a Google Workspace type
func IsWorkspaceMimeType(mimeType string) bool {
	switch mimeType {
	case MimeTypeDocument, MimeTypeSpreadsheet, MimeTypePresentation,
		MimeTypeDrawing, MimeTypeForm, MimeTypeScript:
		return true
	}
	return false
}
