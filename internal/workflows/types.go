package workflows

type LibraryIngestInput struct {
	LibraryID             string `json:"library_id"`
	InputDir              string `json:"input_dir"`
	MaxConcurrentChildren int    `json:"max_concurrent_children"`
}

type DocumentProcessInput struct {
	LibraryID    string `json:"library_id"`
	DocumentPath string `json:"document_path"`
}

type DocumentStatus struct {
	DocumentID   string            `json:"document_id"`
	DocumentPath string            `json:"document_path"`
	CurrentStep  string            `json:"current_step"`
	Status       string            `json:"status"`
	FailReason   string            `json:"fail_reason,omitempty"`
	Engine       string            `json:"engine,omitempty"`
	Confidence   float64           `json:"overall_confidence,omitempty"`
	Steps        map[string]string `json:"steps"`
}

type LibraryIngestProgress struct {
	LibraryID     string            `json:"library_id"`
	Total         int               `json:"total"`
	Processed     int               `json:"processed"`
	Failed        int               `json:"failed"`
	PerDocument   map[string]string `json:"per_document_status"`
	ChildWorkflow map[string]string `json:"child_workflow_ids,omitempty"`
}
