package models

// RankedMatch is a single ranking hit. Score is cosine similarity in [-1, 1].
type RankedMatch struct {
	Key   string  `json:"name"`
	Score float64 `json:"similarity"`
}

// Recommendation is a ranked recipe enriched with its description and chart.
// Chart is nil on a degraded item; Degraded then names the reason.
type Recommendation struct {
	Name        string  `json:"name"`
	Similarity  float64 `json:"similarity"`
	Description string  `json:"description"`
	Chart       []byte  `json:"chart"` // PNG; encoded as base64 in JSON
	Degraded    string  `json:"degraded,omitempty"`
}

// RecommendResponse is the response for a recommendation request.
type RecommendResponse struct {
	Recommendations []Recommendation `json:"recommendations"`
	QueryTime       int64            `json:"query_time_ms"`
	Preferences     string           `json:"preferences"`
}
