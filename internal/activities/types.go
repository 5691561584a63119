package activities

import (
	"docstruct/internal/models"
	"docstruct/internal/pdfio"
)

type ListPDFsInput struct {
	InputDir string `json:"input_dir"`
}

type ListPDFsOutput struct {
	Paths []string `json:"paths"`
}

type ComputeDocumentIDInput struct {
	DocumentPath string `json:"document_path"`
}

type ComputeDocumentIDOutput struct {
	DocumentID string `json:"document_id"`
}

type ExtractDocumentInput struct {
	DocumentPath string `json:"document_path"`
}

type ExtractDocumentOutput struct {
	Extraction pdfio.Extraction `json:"extraction"`
	EngineName string           `json:"engine_name"`
}

type StructureDocumentInput struct {
	DocumentID string           `json:"document_id"`
	EngineName string           `json:"engine_name"`
	Extraction pdfio.Extraction `json:"extraction"`
}

type StructureDocumentOutput struct {
	Content models.DocumentContent `json:"content"`
}

type PersistResultInput struct {
	DocumentID string                 `json:"document_id"`
	Content    models.DocumentContent `json:"content"`
}

type WriteResultArtifactsInput struct {
	LibraryID  string                 `json:"library_id"`
	DocumentID string                 `json:"document_id"`
	Content    models.DocumentContent `json:"content"`
}

type WriteResultArtifactsOutput struct {
	Path string `json:"path"`
}

type UpdateDocumentStatusInput struct {
	DocumentID string `json:"document_id"`
	LibraryID  string `json:"library_id"`
	Filename   string `json:"filename"`
	Title      string `json:"title"`
	Author     string `json:"author"`
	Status     string `json:"status"`
	FailReason string `json:"fail_reason"`
}

type ListLibraryDocumentsInput struct {
	LibraryID string `json:"library_id"`
}

type LibraryDocument struct {
	DocumentID string `json:"document_id"`
	Filename   string `json:"filename"`
	Status     string `json:"status"`
	Title      string `json:"title,omitempty"`
	Author     string `json:"author,omitempty"`
	FailReason string `json:"fail_reason,omitempty"`
}

type ListLibraryDocumentsOutput struct {
	Documents []LibraryDocument `json:"documents"`
}

type WriteLibrarySummaryInput struct {
	LibraryID string         `json:"library_id"`
	Summary   map[string]any `json:"summary"`
}
