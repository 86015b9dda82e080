package models

import "time"

// Listing carries only the fields the image pipeline touches. Images are
// public URLs in display order; the first one is the cover by UI convention.
type Listing struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Images    []string  `json:"images"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UpdateListingRequest is the edit payload. A nil Images slice means the
// caller is not changing the image list, so no cleanup runs.
type UpdateListingRequest struct {
	Title  *string  `json:"title,omitempty"`
	Images []string `json:"images,omitempty"`
}

// ListingMutationResponse reports the row mutation plus best-effort cleanup.
type ListingMutationResponse struct {
	Success       bool     `json:"success"`
	ImagesDeleted int      `json:"imagesDeleted"`
	ImageErrors   []string `json:"imageErrors,omitempty"`
}
