package models

// Status describes the loaded snapshot, as reported by GET /api/v1/status.
type Status struct {
	Items         int    `json:"items"`
	Embeddings    int    `json:"embeddings"`
	Dimensions    int    `json:"dimensions"`
	MaxK          int    `json:"max_k"`
	EncoderLoaded bool   `json:"encoder_loaded"`
	Provider      string `json:"provider,omitempty"`
	Version       string `json:"version,omitempty"`
	// DiskUsageBytes covers the database and snapshot file.
	DiskUsageBytes int64 `json:"disk_usage_bytes"`
}
