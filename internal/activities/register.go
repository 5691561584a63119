package activities

import "go.temporal.io/sdk/worker"

func Register(w worker.Worker, a *Activities) {
	w.RegisterActivity(a.ListPDFsActivity)
	w.RegisterActivity(a.ComputeDocumentIDActivity)
	w.RegisterActivity(a.ExtractDocumentActivity)
	w.RegisterActivity(a.StructureDocumentActivity)
	w.RegisterActivity(a.PersistResultActivity)
	w.RegisterActivity(a.WriteResultArtifactsActivity)
	w.RegisterActivity(a.UpdateDocumentStatusActivity)
	w.RegisterActivity(a.ListLibraryDocumentsActivity)
	w.RegisterActivity(a.WriteLibrarySummaryActivity)
}
