package models

// UploadResponse is the uniform JSON body of the upload endpoint. Degraded
// outcomes still carry a usable URL (the placeholder) plus an error
// annotation, so the admin form never breaks on storage failures.
type UploadResponse struct {
	URL          string               `json:"url"`
	Path         string               `json:"path,omitempty"`
	Success      bool                 `json:"success,omitempty"`
	Optimization *OptimizationSummary `json:"optimization,omitempty"`
	Error        string               `json:"error,omitempty"`
	Details      string               `json:"details,omitempty"`
	Help         string               `json:"help,omitempty"`
}
