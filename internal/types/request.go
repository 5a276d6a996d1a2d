package types

// RequestType identifies the category of a Drive API request for logging
type RequestType string

const (
	RequestTypeList     RequestType = "files.list"
	RequestTypeGet      RequestType = "files.get"
	RequestTypeCreate   RequestType = "files.create"
	RequestTypeUpdate   RequestType = "files.update"
	RequestTypeDownload RequestType = "files.download"
	RequestTypeExport   RequestType = "files.export"
)

// RequestContext carries per-request metadata for tracing and error reporting
type RequestContext struct {
	Account           string      `json:"account"` // "source" or "target"
	InvolvedFileIDs   []string    `json:"involvedFileIds"`
	InvolvedParentIDs []string    `json:"involvedParentIds"`
	RequestType       RequestType `json:"requestType"`
	TraceID           string      `json:"traceId"`
}

// CLIError is the structured error surfaced to operators
type CLIError struct {
	Code        string                 `json:"code"`
	Message     string                 `json:"message"`
	HTTPStatus  int                    `json:"httpStatus,omitempty"`
	DriveReason string                 `json:"driveReason,omitempty"`
	Retryable   bool                   `json:"retryable"`
	Context     map[string]interface{} `json:"context,omitempty"`
}

// GlobalFlags holds flags shared by every command
type GlobalFlags struct {
	Quiet   bool
	Verbose bool
	Debug   bool
	Config  string
	LogFile string
}
