package activities

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"docstruct/internal/config"
	"docstruct/internal/models"
	"docstruct/internal/pdfio"
	"docstruct/internal/pipeline"
	"docstruct/internal/storage"
	"docstruct/internal/util"
)

type Activities struct {
	cfg          config.Config
	libraryRepo  *storage.LibraryRepo
	documentRepo *storage.DocumentRepo
	resultRepo   *storage.ResultRepo
	extractor    *pdfio.Extractor
	pipe         *pipeline.Pipeline
}

func New(cfg config.Config, db *storage.DB) *Activities {
	return &Activities{
		cfg:          cfg,
		libraryRepo:  storage.NewLibraryRepo(db),
		documentRepo: storage.NewDocumentRepo(db),
		resultRepo:   storage.NewResultRepo(db),
		extractor:    pdfio.NewExtractor(),
		pipe: pipeline.New(pipeline.Options{
			MinChapterConfidence:  cfg.MinChapterConfidence,
			MinChapterWords:       cfg.MinChapterWords,
			MinOverallConfidence:  cfg.MinOverallConfidence,
			SelfCorrection:        cfg.SelfCorrection,
			MaxCorrectionAttempts: cfg.MaxCorrectionAttempts,
		}),
	}
}

func (a *Activities) ListPDFsActivity(ctx context.Context, in ListPDFsInput) (ListPDFsOutput, error) {
	_ = ctx
	entries, err := os.ReadDir(in.InputDir)
	if err != nil {
		return ListPDFsOutput{}, fmt.Errorf("read input dir: %w", err)
	}
	paths := make([]string, 0)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasSuffix(strings.ToLower(name), ".pdf") {
			paths = append(paths, filepath.Join(in.InputDir, name))
		}
	}
	sort.Strings(paths)
	return ListPDFsOutput{Paths: paths}, nil
}

func (a *Activities) ComputeDocumentIDActivity(ctx context.Context, in ComputeDocumentIDInput) (ComputeDocumentIDOutput, error) {
	_ = ctx
	f, err := os.Open(in.DocumentPath)
	if err != nil {
		return ComputeDocumentIDOutput{}, fmt.Errorf("open file for hash: %w", err)
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return ComputeDocumentIDOutput{}, fmt.Errorf("hash file: %w", err)
	}
	return ComputeDocumentIDOutput{DocumentID: hex.EncodeToString(h.Sum(nil))}, nil
}

func (a *Activities) ExtractDocumentActivity(ctx context.Context, in ExtractDocumentInput) (ExtractDocumentOutput, error) {
	ext, engine, err := a.extractor.Extract(ctx, in.DocumentPath)
	if err != nil {
		return ExtractDocumentOutput{}, fmt.Errorf("extract pdf: %w", err)
	}
	for i := range ext.Spans {
		ext.Spans[i].Text = util.SanitizeText(ext.Spans[i].Text)
	}
	return ExtractDocumentOutput{Extraction: *ext, EngineName: engine}, nil
}

func (a *Activities) StructureDocumentActivity(ctx context.Context, in StructureDocumentInput) (StructureDocumentOutput, error) {
	content, err := a.pipe.Run(ctx, in.DocumentID, in.EngineName, &in.Extraction)
	if err != nil {
		return StructureDocumentOutput{}, fmt.Errorf("structure document: %w", err)
	}
	return StructureDocumentOutput{Content: content}, nil
}

func (a *Activities) PersistResultActivity(ctx context.Context, in PersistResultInput) error {
	return a.resultRepo.UpsertResult(ctx, in.DocumentID, in.Content)
}

func (a *Activities) WriteResultArtifactsActivity(ctx context.Context, in WriteResultArtifactsInput) (WriteResultArtifactsOutput, error) {
	_ = ctx
	base := util.DocumentOutDir(a.cfg.DataOutRoot, in.LibraryID, in.DocumentID)
	if err := util.EnsureDir(base); err != nil {
		return WriteResultArtifactsOutput{}, err
	}
	if err := util.WriteJSONAtomic(filepath.Join(base, "content.json"), in.Content); err != nil {
		return WriteResultArtifactsOutput{}, err
	}
	rows := make([]any, 0, len(in.Content.Chapters))
	for _, ch := range in.Content.Chapters {
		rows = append(rows, ch)
	}
	if err := util.WriteJSONLinesAtomic(filepath.Join(base, "chapters.jsonl"), rows); err != nil {
		return WriteResultArtifactsOutput{}, err
	}
	if err := util.WriteJSONAtomic(filepath.Join(base, "report.json"), in.Content.Report); err != nil {
		return WriteResultArtifactsOutput{}, err
	}
	return WriteResultArtifactsOutput{Path: base}, nil
}

func (a *Activities) UpdateDocumentStatusActivity(ctx context.Context, in UpdateDocumentStatusInput) error {
	return a.documentRepo.UpsertDocument(ctx, models.Document{
		DocumentID: in.DocumentID,
		LibraryID:  in.LibraryID,
		Filename:   in.Filename,
		Title:      in.Title,
		Author:     in.Author,
		Status:     in.Status,
		FailReason: in.FailReason,
	})
}

func (a *Activities) ListLibraryDocumentsActivity(ctx context.Context, in ListLibraryDocumentsInput) (ListLibraryDocumentsOutput, error) {
	docs, err := a.documentRepo.ListDocumentsByLibrary(ctx, in.LibraryID)
	if err != nil {
		return ListLibraryDocumentsOutput{}, err
	}
	out := ListLibraryDocumentsOutput{Documents: make([]LibraryDocument, 0, len(docs))}
	for _, d := range docs {
		out.Documents = append(out.Documents, LibraryDocument{
			DocumentID: d.DocumentID,
			Filename:   d.Filename,
			Status:     d.Status,
			Title:      d.Title,
			Author:     d.Author,
			FailReason: d.FailReason,
		})
	}
	return out, nil
}

func (a *Activities) WriteLibrarySummaryActivity(ctx context.Context, in WriteLibrarySummaryInput) error {
	_ = ctx
	outPath := util.LibrarySummaryPath(a.cfg.DataOutRoot, in.LibraryID)
	return util.WriteJSONAtomic(outPath, in.Summary)
}
