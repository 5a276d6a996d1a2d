package transfer

import (
	"strings"

	"github.com/gdmirror/gdmirror/internal/types"
	"github.com/gdmirror/gdmirror/internal/utils"
)

// ItemKind is the migration's view of what a Drive item is. The pipeline
// matches on it exhaustively when dispatching a transfer.
type ItemKind int

const (
	// KindFolder is a container; folders are handled by the walker only
	KindFolder ItemKind = iota
	// KindPlainFile is a blob with directly downloadable bytes
	KindPlainFile
	// KindDocument is a Workspace word-processor document (export to .docx)
	KindDocument
	// KindSpreadsheet is a Workspace spreadsheet (export to .xlsx)
	KindSpreadsheet
	// KindPresentation is a Workspace slide deck (export to .pptx)
	KindPresentation
	// KindIgnored covers shortcut-like items that are silently filtered
	KindIgnored
	// KindUnsupported covers Workspace types with no interchange format
	KindUnsupported
)

// String returns the kind name for logging
func (k ItemKind) String() string {
	switch k {
	case KindFolder:
		return "folder"
	case KindPlainFile:
		return "file"
	case KindDocument:
		return "document"
	case KindSpreadsheet:
		return "spreadsheet"
	case KindPresentation:
		return "presentation"
	case KindIgnored:
		return "ignored"
	case KindUnsupported:
		return "unsupported"
	default:
		return "unknown"
	}
}

// ClassifyItem maps a Drive item onto the migration's kind taxonomy
func ClassifyItem(item *types.DriveFile) ItemKind {
	switch item.MimeType {
	case utils.MimeTypeFolder:
		return KindFolder
	case utils.MimeTypeDocument:
		return KindDocument
	case utils.MimeTypeSpreadsheet:
		return KindSpreadsheet
	case utils.MimeTypePresentation:
		return KindPresentation
	case utils.MimeTypeShortcut:
		return KindIgnored
	}
	if strings.HasPrefix(item.MimeType, "application/vnd.google-apps.") {
		// Drawings, forms, scripts: no byte representation and no
		// interchange format this tool can round-trip.
		return KindUnsupported
	}
	return KindPlainFile
}

// ExportFormat returns the interchange MIME type a convertible kind exports
// to, along with the temp-file extension for it. ok is false for kinds that
// are not convertible documents.
func ExportFormat(kind ItemKind) (mimeType string, extension string, ok bool) {
	switch kind {
	case KindSpreadsheet:
		return utils.MimeTypeXLSX, ".xlsx", true
	case KindDocument:
		return utils.MimeTypeDOCX, ".docx", true
	case KindPresentation:
		return utils.MimeTypePPTX, ".pptx", true
	}
	return "", "", false
}

// NativeMimeType returns the Workspace type a convertible kind is re-imported
// as on the target side.
func NativeMimeType(kind ItemKind) string {
	switch kind {
	case KindSpreadsheet:
		return utils.MimeTypeSpreadsheet
	case KindDocument:
		return utils.MimeTypeDocument
	case KindPresentation:
		return utils.MimeTypePresentation
	}
	return ""
}
