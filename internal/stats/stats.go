package stats

import (
	"time"

	"github.com/binwatch/binwatch/internal/alerts"
	"github.com/binwatch/binwatch/internal/ingest"
	"github.com/binwatch/binwatch/internal/model"
)

// Statistics is a point-in-time summary of the whole system.
type Statistics struct {
	TotalBins             int                     `json:"total_bins"`
	BinsByStatus          map[model.Status]int    `json:"bins_by_status"`
	ActiveAlerts          int                     `json:"active_alerts"`
	AlertsBySeverity      map[alerts.Severity]int `json:"alerts_by_severity"`
	AverageFillLevel      float64                 `json:"average_fill_level"`
	BinsNeedingCollection int                     `json:"bins_needing_collection"`
	StaleBins             int                     `json:"stale_bins"`
	TotalWasteCollectedKg float64                 `json:"total_waste_collected_kg"`
	TotalReadings         int                     `json:"total_readings"`
	TotalAlertsGenerated  int                     `json:"total_alerts_generated"`
	GeneratedAt           time.Time               `json:"generated_at"`
}

// Source provides a consistent view of pipeline state. Implemented by the
// ingestion coordinator.
type Source interface {
	Snapshot() ingest.View
}

// Aggregator derives summary counters from the coordinator's state on
// demand. It owns no state of its own, so a snapshot can never go stale.
type Aggregator struct {
	src Source
	now func() time.Time // injectable for deterministic tests
}

// New creates an Aggregator reading from src.
func New(src Source) *Aggregator {
	return &Aggregator{src: src, now: time.Now}
}

// Summarize computes a Statistics snapshot from one consistent view of the
// registry and alert engine.
func (a *Aggregator) Summarize() Statistics {
	view := a.src.Snapshot()
	now := a.now()

	s := Statistics{
		TotalBins:             len(view.Bins),
		BinsByStatus:          make(map[model.Status]int, len(model.Statuses)),
		ActiveAlerts:          len(view.ActiveAlerts),
		AlertsBySeverity:      make(map[alerts.Severity]int, 2),
		TotalWasteCollectedKg: view.WasteCollectedKg,
		TotalReadings:         view.TotalReadings,
		TotalAlertsGenerated:  view.TotalAlerts,
		GeneratedAt:           now,
	}
	for _, st := range model.Statuses {
		s.BinsByStatus[st] = 0
	}

	var fillSum float64
	staleCutoff := now.Add(-view.Thresholds.StalenessWindow)
	for _, b := range view.Bins {
		s.BinsByStatus[b.Status]++
		fillSum += b.FillLevel

		if b.Status == model.StatusCritical || b.Status == model.StatusOverflow {
			s.BinsNeedingCollection++
		}

		// A bin is stale when its last emptying predates the window.
		// First-seen time is the baseline for bins never emptied at all.
		last := b.FirstSeen
		if b.LastEmptied != nil {
			last = *b.LastEmptied
		}
		if last.Before(staleCutoff) {
			s.StaleBins++
		}
	}

	if len(view.Bins) > 0 {
		s.AverageFillLevel = fillSum / float64(len(view.Bins))
	}

	for _, al := range view.ActiveAlerts {
		s.AlertsBySeverity[al.Severity]++
	}

	return s
}
