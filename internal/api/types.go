package api

import "github.com/binwatch/binwatch/internal/alerts"

// ReadingRequest is the payload for POST /api/v1/readings.
type ReadingRequest struct {
	BinID       string  `json:"bin_id"`
	FillLevel   float64 `json:"fill_level"`
	Temperature float64 `json:"temperature"`
	WeightKg    float64 `json:"weight_kg"`
	Location    string  `json:"location"`
}

// IngestResponse is the payload returned for an accepted reading.
type IngestResponse struct {
	Bin    BinResponse    `json:"bin"`
	Events []alerts.Event `json:"events"`
	NewBin bool           `json:"new_bin"`
}

// BinResponse is one bin entry in GET /api/v1/bins or GET /api/v1/bins/{id}.
type BinResponse struct {
	BinID              string  `json:"bin_id"`
	Location           string  `json:"location"`
	FillLevel          float64 `json:"fill_level"`
	Temperature        float64 `json:"temperature"`
	WeightKg           float64 `json:"weight_kg"`
	Status             string  `json:"status"`
	FirstSeen          string  `json:"first_seen"`             // RFC3339
	LastReading        string  `json:"last_reading"`           // RFC3339
	LastEmptied        string  `json:"last_emptied,omitempty"` // RFC3339
	TotalReadings      int     `json:"total_readings"`
	CollectionPriority int     `json:"collection_priority"`
	// TimeToFullHours is the projected hours until 100% at the observed fill
	// rate. Absent when the bin shows no filling trend yet.
	TimeToFullHours *float64 `json:"time_to_full_hours,omitempty"`
	Hints           []Hint   `json:"hints"`
}

// HealthResponse is the payload for GET /api/v1/health.
type HealthResponse struct {
	Status       string `json:"status"`
	BinCount     int    `json:"bin_count"`
	ActiveAlerts int    `json:"active_alerts"`
	GeneratedAt  string `json:"generated_at"` // RFC3339
}

// errorResponse is a generic JSON error body.
type errorResponse struct {
	Error string `json:"error"`
}
