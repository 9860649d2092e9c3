package models

// DashboardStats are the admin counters. PendingImages includes photos
// currently claimed by a batch, so TotalImages = ProcessedImages + PendingImages.
type DashboardStats struct {
	TotalUsers       int64 `json:"total_users"`
	TotalImages      int64 `json:"total_images"`
	ProcessedImages  int64 `json:"processed_images"`
	PendingImages    int64 `json:"pending_images"`
	ProcessingImages int64 `json:"processing_images"`
	TotalMatches     int64 `json:"total_matches"`
}
