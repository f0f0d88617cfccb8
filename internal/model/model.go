package model

import "time"

// Status is the fill-level-derived classification of a bin.
type Status string

const (
	StatusNormal   Status = "normal"
	StatusWarning  Status = "warning"
	StatusCritical Status = "critical"
	StatusOverflow Status = "overflow"
)

// Statuses lists every status in severity order, for deterministic iteration.
var Statuses = []Status{StatusNormal, StatusWarning, StatusCritical, StatusOverflow}

// SensorReading is one measurement submitted for a bin. ReceivedAt is
// assigned by the ingestion coordinator, never by the caller.
type SensorReading struct {
	BinID       string    `json:"bin_id"`
	FillLevel   float64   `json:"fill_level"`  // percent, 0–100
	Temperature float64   `json:"temperature"` // °C
	WeightKg    float64   `json:"weight_kg"`
	Location    string    `json:"location"`
	ReceivedAt  time.Time `json:"received_at"`
}

// Bin is the current state of one tracked waste container. Bin records are
// owned by the registry; all other packages receive copies.
type Bin struct {
	ID            string     `json:"bin_id"`
	Location      string     `json:"location"`
	FillLevel     float64    `json:"fill_level"`
	Temperature   float64    `json:"temperature"`
	WeightKg      float64    `json:"weight_kg"`
	Status        Status     `json:"status"`
	FillRateHour  float64    `json:"fill_rate_per_hour"` // observed, percentage points/h
	FirstSeen     time.Time  `json:"first_seen"`
	LastReading   time.Time  `json:"last_reading"`
	LastEmptied   *time.Time `json:"last_emptied,omitempty"`
	TotalReadings int        `json:"total_readings"`
}
