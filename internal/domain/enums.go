package domain

// FileType represents the allowed file types for ingestion.
type FileType string

const (
	FileTypeXLSX FileType = "xlsx"
	FileTypeCSV  FileType = "csv"
	FileTypeJPG  FileType = "jpg"
	FileTypePNG  FileType = "png"
)

// AllowedExtensions maps file extensions (without dot) to FileType.
var AllowedExtensions = map[string]FileType{
	"xlsx": FileTypeXLSX,
	"xls":  FileTypeXLSX,
	"csv":  FileTypeCSV,
	"jpg":  FileTypeJPG,
	"jpeg": FileTypeJPG,
	"png":  FileTypePNG,
}

// AllowedContentTypes maps MIME content types back to FileType.
var AllowedContentTypes = map[string]FileType{
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": FileTypeXLSX,
	"application/vnd.ms-excel": FileTypeXLSX,
	"text/csv":                 FileTypeCSV,
	"image/jpeg":               FileTypeJPG,
	"image/png":                FileTypePNG,
}

// IsImage reports whether the file type goes through the OCR extraction path.
func (t FileType) IsImage() bool {
	return t == FileTypeJPG || t == FileTypePNG
}

// ImageContentType returns the MIME type for an image file type.
func (t FileType) ImageContentType() string {
	if t == FileTypePNG {
		return "image/png"
	}
	return "image/jpeg"
}

// DocumentStatus represents the processing lifecycle of an ingested document.
type DocumentStatus string

const (
	DocumentStatusUploaded   DocumentStatus = "uploaded"
	DocumentStatusProcessing DocumentStatus = "processing"
	DocumentStatusProcessed  DocumentStatus = "processed"
	DocumentStatusError      DocumentStatus = "error"
)

// documentTransitions defines the forward-only state machine:
// uploaded -> processing -> {processed, error}.
var documentTransitions = map[DocumentStatus][]DocumentStatus{
	DocumentStatusUploaded:   {DocumentStatusProcessing},
	DocumentStatusProcessing: {DocumentStatusProcessed, DocumentStatusError},
}

// CanTransitionTo reports whether a status change is a legal forward transition.
func (s DocumentStatus) CanTransitionTo(next DocumentStatus) bool {
	for _, allowed := range documentTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status admits no further transitions.
func (s DocumentStatus) IsTerminal() bool {
	return s == DocumentStatusProcessed || s == DocumentStatusError
}

// MappingSource identifies how a header-to-field mapping was produced.
type MappingSource string

const (
	MappingSourceHeuristic MappingSource = "heuristic"
	MappingSourceAI        MappingSource = "ai"
	MappingSourceManual    MappingSource = "manual"
)
