package workflows

import (
	"strings"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"docstruct/internal/activities"
)

const (
	QueryGetDocumentStatus = "GetDocumentStatus"
	QueryGetProgress       = "GetProgress"
)

func LibraryIngestWorkflow(ctx workflow.Context, input LibraryIngestInput) (string, error) {
	progress := LibraryIngestProgress{
		LibraryID:     input.LibraryID,
		PerDocument:   map[string]string{},
		ChildWorkflow: map[string]string{},
	}
	if err := workflow.SetQueryHandler(ctx, QueryGetProgress, func() (LibraryIngestProgress, error) {
		return progress, nil
	}); err != nil {
		return "", err
	}

	ao := workflow.ActivityOptions{
		StartToCloseTimeout: 2 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    2 * time.Second,
			BackoffCoefficient: 2,
			MaximumInterval:    20 * time.Second,
			MaximumAttempts:    3,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, ao)
	var listOut activities.ListPDFsOutput
	if err := workflow.ExecuteActivity(ctx, "ListPDFsActivity", activities.ListPDFsInput{InputDir: input.InputDir}).Get(ctx, &listOut); err != nil {
		return "", err
	}
	paths := listOut.Paths
	progress.Total = len(paths)
	maxChildren := input.MaxConcurrentChildren
	if maxChildren <= 0 {
		maxChildren = 3
	}

	for i := 0; i < len(paths); i += maxChildren {
		end := i + maxChildren
		if end > len(paths) {
			end = len(paths)
		}
		futures := make([]workflow.ChildWorkflowFuture, 0, end-i)
		childPaths := make([]string, 0, end-i)
		for _, path := range paths[i:end] {
			progress.PerDocument[path] = "processing"
			workflowID := "document-" + sanitizeID(input.LibraryID) + "-" + sanitizeID(filepathBase(path))
			cwo := workflow.ChildWorkflowOptions{WorkflowID: workflowID}
			childCtx := workflow.WithChildOptions(ctx, cwo)
			f := workflow.ExecuteChildWorkflow(childCtx, DocumentProcessWorkflow, DocumentProcessInput{
				LibraryID:    input.LibraryID,
				DocumentPath: path,
			})
			futures = append(futures, f)
			childPaths = append(childPaths, path)
			progress.ChildWorkflow[path] = workflowID
		}

		for idx, f := range futures {
			var childStatus string
			err := f.Get(ctx, &childStatus)
			path := childPaths[idx]
			if err != nil {
				progress.Failed++
				progress.PerDocument[path] = "failed"
				continue
			}
			if childStatus == "failed" {
				progress.Failed++
			} else {
				progress.Processed++
			}
			progress.PerDocument[path] = childStatus
		}
	}

	summary := map[string]any{
		"library_id":          input.LibraryID,
		"total":               progress.Total,
		"processed":           progress.Processed,
		"failed":              progress.Failed,
		"per_document_status": progress.PerDocument,
		"generated_at":        workflow.Now(ctx),
	}
	// The per-document rows in the summary come from the database, which
	// holds the authoritative status after retries.
	var docsOut activities.ListLibraryDocumentsOutput
	if err := workflow.ExecuteActivity(ctx, "ListLibraryDocumentsActivity", activities.ListLibraryDocumentsInput{LibraryID: input.LibraryID}).Get(ctx, &docsOut); err == nil {
		summary["documents"] = docsOut.Documents
	}
	_ = workflow.ExecuteActivity(ctx, "WriteLibrarySummaryActivity", activities.WriteLibrarySummaryInput{
		LibraryID: input.LibraryID,
		Summary:   summary,
	}).Get(ctx, nil)

	return "completed", nil
}

func DocumentProcessWorkflow(ctx workflow.Context, input DocumentProcessInput) (string, error) {
	status := DocumentStatus{
		DocumentPath: input.DocumentPath,
		CurrentStep:  "init",
		Status:       "processing",
		Steps:        map[string]string{},
	}
	if err := workflow.SetQueryHandler(ctx, QueryGetDocumentStatus, func() (DocumentStatus, error) {
		return status, nil
	}); err != nil {
		return "", err
	}

	ao := workflow.ActivityOptions{
		StartToCloseTimeout: 5 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    2 * time.Second,
			BackoffCoefficient: 2,
			MaximumInterval:    20 * time.Second,
			MaximumAttempts:    2,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, ao)
	filename := filepathBase(input.DocumentPath)

	status.CurrentStep = "compute_document_id"
	status.Steps[status.CurrentStep] = "processing"
	var computeOut activities.ComputeDocumentIDOutput
	if err := workflow.ExecuteActivity(ctx, "ComputeDocumentIDActivity", activities.ComputeDocumentIDInput{DocumentPath: input.DocumentPath}).Get(ctx, &computeOut); err != nil {
		return "", err
	}
	status.DocumentID = computeOut.DocumentID
	status.Steps[status.CurrentStep] = "done"

	_ = workflow.ExecuteActivity(ctx, "UpdateDocumentStatusActivity", activities.UpdateDocumentStatusInput{DocumentID: computeOut.DocumentID, LibraryID: input.LibraryID, Filename: filename, Status: "processing"})

	status.CurrentStep = "extract"
	status.Steps[status.CurrentStep] = "processing"
	var extractOut activities.ExtractDocumentOutput
	if err := workflow.ExecuteActivity(ctx, "ExtractDocumentActivity", activities.ExtractDocumentInput{DocumentPath: input.DocumentPath}).Get(ctx, &extractOut); err != nil {
		if isNoTextError(err) {
			status.Status = "failed"
			status.FailReason = "no extractable text found (OCR not enabled)"
			status.Steps[status.CurrentStep] = "failed"
			_ = workflow.ExecuteActivity(ctx, "UpdateDocumentStatusActivity", activities.UpdateDocumentStatusInput{DocumentID: computeOut.DocumentID, LibraryID: input.LibraryID, Filename: filename, Status: "failed", FailReason: status.FailReason}).Get(ctx, nil)
			return status.Status, nil
		}
		return "", err
	}
	status.Engine = extractOut.EngineName
	status.Steps[status.CurrentStep] = "done"

	status.CurrentStep = "structure"
	status.Steps[status.CurrentStep] = "processing"
	var structOut activities.StructureDocumentOutput
	if err := workflow.ExecuteActivity(ctx, "StructureDocumentActivity", activities.StructureDocumentInput{
		DocumentID: computeOut.DocumentID,
		EngineName: extractOut.EngineName,
		Extraction: extractOut.Extraction,
	}).Get(ctx, &structOut); err != nil {
		return "", err
	}
	status.Confidence = structOut.Content.Report.Quality.Overall
	status.Steps[status.CurrentStep] = "done"

	status.CurrentStep = "persist_result"
	status.Steps[status.CurrentStep] = "processing"
	if err := workflow.ExecuteActivity(ctx, "PersistResultActivity", activities.PersistResultInput{DocumentID: computeOut.DocumentID, Content: structOut.Content}).Get(ctx, nil); err != nil {
		return "", err
	}
	status.Steps[status.CurrentStep] = "done"

	status.CurrentStep = "write_artifacts"
	status.Steps[status.CurrentStep] = "processing"
	if err := workflow.ExecuteActivity(ctx, "WriteResultArtifactsActivity", activities.WriteResultArtifactsInput{
		LibraryID:  input.LibraryID,
		DocumentID: computeOut.DocumentID,
		Content:    structOut.Content,
	}).Get(ctx, nil); err != nil {
		return "", err
	}
	status.Steps[status.CurrentStep] = "done"

	status.CurrentStep = "mark_processed"
	status.Steps[status.CurrentStep] = "processing"
	if err := workflow.ExecuteActivity(ctx, "UpdateDocumentStatusActivity", activities.UpdateDocumentStatusInput{
		DocumentID: computeOut.DocumentID,
		LibraryID:  input.LibraryID,
		Filename:   filename,
		Title:      structOut.Content.Metadata.Title,
		Author:     structOut.Content.Metadata.Author,
		Status:     "processed",
	}).Get(ctx, nil); err != nil {
		return "", err
	}
	status.Steps[status.CurrentStep] = "done"
	status.CurrentStep = "done"
	status.Status = "processed"
	return status.Status, nil
}

func isNoTextError(err error) bool {
	return strings.Contains(strings.ToLower(err.Error()), "no extractable text")
}

func filepathBase(path string) string {
	parts := strings.Split(path, "/")
	if len(parts) == 0 {
		return path
	}
	return parts[len(parts)-1]
}

func sanitizeID(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, "_", "-")
	s = strings.ReplaceAll(s, ".", "-")
	s = strings.ReplaceAll(s, "/", "-")
	return s
}
