package domain

import "errors"

var (
	ErrNotFound            = errors.New("resource not found")
	ErrDocumentNotFound    = errors.New("document not found")
	ErrShipmentNotFound    = errors.New("shipment not found")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrEmptyFile           = errors.New("uploaded file is empty")
	ErrFileTooLarge        = errors.New("file exceeds maximum allowed size")
	ErrNoDataExtracted     = errors.New("no shipment data could be extracted from the document")
	ErrAllRowsFailed       = errors.New("every row in the document failed extraction")
	ErrSheetOutOfRange     = errors.New("requested sheet index does not exist")
	ErrInvalidTransition   = errors.New("illegal document status transition")
)
