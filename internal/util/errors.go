package util

import "errors"

var (
	ErrNoExtractableText = errors.New("no extractable text found in PDF")
	ErrDocumentNotFound  = errors.New("document not found")
	ErrLibraryNotFound   = errors.New("library not found")
	ErrResultNotFound    = errors.New("processing result not found")
)
