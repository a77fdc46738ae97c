// Package status exposes processing-status lookups for uploaded images.
package status

// StatusResponse is the single-image status response.
type StatusResponse struct {
	Success          bool   `json:"success"`
	ImageID          string `json:"image_id"`
	ProcessingStatus string `json:"processing_status"`
	ProcessedAt      string `json:"processed_at,omitempty"`
	UploadTime       string `json:"upload_time,omitempty"`
	HasResults       bool   `json:"has_results"`
}

// BatchRequest is the batch status request body.
type BatchRequest struct {
	ImageIDs []string `json:"image_ids"`
}

// BatchEntry is one image's status in a batch response.
type BatchEntry struct {
	ProcessingStatus string `json:"processing_status"`
	ProcessedAt      string `json:"processed_at,omitempty"`
	HasResults       bool   `json:"has_results"`
}

// BatchResponse is the batch status response.
type BatchResponse struct {
	Success  bool                  `json:"success"`
	Statuses map[string]BatchEntry `json:"statuses"`
}
