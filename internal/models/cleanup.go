package models

// CleanupResult accumulates the per-file outcome of a storage cleanup pass.
// It is reported alongside the listing mutation's response and never fails it.
type CleanupResult struct {
	SuccessCount int      `json:"successCount"`
	ErrorCount   int      `json:"errorCount"`
	Errors       []string `json:"errors,omitempty"`
}

func (r *CleanupResult) AddError(msg string) {
	r.ErrorCount++
	r.Errors = append(r.Errors, msg)
}
