package pdf

import "errors"

// Sentinel errors surfaced by document processing
var (
	ErrNoPages         = errors.New("document has no pages")
	ErrUnreadablePage  = errors.New("page cannot be read")
	ErrNotPDF          = errors.New("file is not a PDF")
	ErrNoRecognizer    = errors.New("no OCR recognizer configured")
	ErrDecoderPanicked = errors.New("pdf decoder panicked")
)

// State tracks a document through processing
type State int

// Document states. A document leaves Unclassified for exactly one of
// TextLayer or ImageScan and ends in Done or Failed.
const (
	StateUnclassified State = iota
	StateTextLayer
	StateImageScan
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUnclassified:
		return "unclassified"
	case StateTextLayer:
		return "text_layer"
	case StateImageScan:
		return "image_scan"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Outcome describes how one document was processed
type Outcome struct {
	Path           string `json:"path"`
	Branch         State  `json:"-"`
	Final          State  `json:"-"`
	Pages          int    `json:"pages"`
	PagesProcessed int    `json:"pages_processed"`
	Records        int    `json:"records"`
}

// FileInfo represents a PDF file in a directory listing
type FileInfo struct {
	Path         string `json:"path"`
	Name         string `json:"name"`
	Size         int64  `json:"size"`
	ModifiedTime string `json:"modified_time"`
}

// ValidationResult is the structural report for a single file
type ValidationResult struct {
	Path      string `json:"path"`
	Valid     bool   `json:"valid"`
	Message   string `json:"message,omitempty"`
	Pages     int    `json:"pages,omitempty"`
	Version   string `json:"version,omitempty"`
	Encrypted bool   `json:"encrypted"`
	Size      int64  `json:"size"`
}
