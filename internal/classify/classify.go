package classify

import (
	"math"
	"strings"

	"github.com/binwatch/binwatch/internal/config"
	"github.com/binwatch/binwatch/internal/model"
)

// Classify maps a fill level to its bin status using the configured bounds.
// It is total: every fill level maps to exactly one status.
func Classify(fillLevel float64, t config.Thresholds) model.Status {
	switch {
	case fillLevel >= t.FillOverflow:
		return model.StatusOverflow
	case fillLevel >= t.FillCritical:
		return model.StatusCritical
	case fillLevel >= t.FillWarning:
		return model.StatusWarning
	default:
		return model.StatusNormal
	}
}

// TempInBand reports whether a temperature is inside the safe storage band.
func TempInBand(temp float64, t config.Thresholds) bool {
	return temp >= t.TempSafeMin && temp <= t.TempWarningMax
}

// criticalLocations are location substrings that raise collection priority.
var criticalLocations = []string{"ICU", "ER", "OR", "Surgery"}

// CollectionPriority scores how urgently a bin needs collection on a 1–10
// scale. Fill level sets the base; bins in critical hospital areas get a
// two-point bump, capped at 10.
func CollectionPriority(fillLevel float64, location string, t config.Thresholds) int {
	var priority int
	switch {
	case fillLevel >= t.FillOverflow:
		priority = 10
	case fillLevel >= t.FillCritical:
		priority = 8
	case fillLevel >= t.FillWarning:
		priority = 5
	default:
		priority = 2
	}

	for _, loc := range criticalLocations {
		if strings.Contains(location, loc) {
			priority += 2
			break
		}
	}
	if priority > 10 {
		priority = 10
	}
	return priority
}

// TimeToFull estimates the hours until a bin reaches 100% given its current
// fill level and an observed fill rate in percentage points per hour.
// A zero or negative rate returns +Inf.
func TimeToFull(fillLevel, ratePerHour float64) float64 {
	if ratePerHour <= 0 {
		return math.Inf(1)
	}
	remaining := 100 - fillLevel
	if remaining < 0 {
		return 0
	}
	return remaining / ratePerHour
}
