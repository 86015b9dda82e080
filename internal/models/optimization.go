package models

// OptimizationResult is the transient output of one optimization pass. It is
// never persisted; the Data buffer goes to storage and the metrics go into the
// upload response.
type OptimizationResult struct {
	Data             []byte  `json:"data"`
	Width            int     `json:"width"`
	Height           int     `json:"height"`
	Format           string  `json:"format"`
	OriginalSize     int     `json:"original_size"`
	OptimizedSize    int     `json:"optimized_size"`
	ReductionPercent float64 `json:"reduction_percent"`
}

type Dimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// OptimizationSummary is the metrics-only view returned to upload callers.
type OptimizationSummary struct {
	OriginalSize     int        `json:"originalSize"`
	OptimizedSize    int        `json:"optimizedSize"`
	ReductionPercent float64    `json:"reductionPercent"`
	Format           string     `json:"format"`
	Dimensions       Dimensions `json:"dimensions"`
}

func (r *OptimizationResult) Summary() *OptimizationSummary {
	return &OptimizationSummary{
		OriginalSize:     r.OriginalSize,
		OptimizedSize:    r.OptimizedSize,
		ReductionPercent: r.ReductionPercent,
		Format:           r.Format,
		Dimensions:       Dimensions{Width: r.Width, Height: r.Height},
	}
}
