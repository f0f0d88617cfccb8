package api

import (
	"fmt"

	"github.com/binwatch/binwatch/internal/config"
	"github.com/binwatch/binwatch/internal/model"
)

// Hint is one human-readable insight about a bin's condition, shown as a
// chip on the bin card in the dashboard.
type Hint struct {
	// Key is a stable machine-readable identifier (used for dedup/ordering).
	Key string `json:"key"`
	// Level is "info" | "warning" | "critical"
	Level string `json:"level"`
	// Title is a short label shown on the chip.
	Title string `json:"title"`
	// Detail is the full explanation shown on click/hover.
	Detail string `json:"detail"`
}

// computeHints derives hints from a bin's current state. Ordered: critical
// first, then warnings, then info.
func computeHints(b model.Bin, t config.Thresholds) []Hint {
	var hints []Hint

	switch b.Status {
	case model.StatusOverflow:
		hints = append(hints, Hint{
			Key:   "overflow",
			Level: "critical",
			Title: "Bin overflowing",
			Detail: fmt.Sprintf(
				"This bin reports %.1f%% fill. Waste may already be spilling — "+
					"dispatch a collection immediately and check the surrounding area.",
				b.FillLevel),
		})
	case model.StatusCritical:
		hints = append(hints, Hint{
			Key:   "nearly_full",
			Level: "critical",
			Title: fmt.Sprintf("%.0f%% full", b.FillLevel),
			Detail: fmt.Sprintf(
				"Fill level is %.1f%%, above the critical bound of %.0f%%. "+
					"Schedule a collection before the bin overflows.",
				b.FillLevel, t.FillCritical),
		})
	case model.StatusWarning:
		hints = append(hints, Hint{
			Key:   "filling_up",
			Level: "warning",
			Title: fmt.Sprintf("%.0f%% full", b.FillLevel),
			Detail: fmt.Sprintf(
				"Fill level is %.1f%%, above the warning bound of %.0f%%. "+
					"Plan a collection on the next round.",
				b.FillLevel, t.FillWarning),
		})
	}

	if b.Temperature > t.TempCriticalMax {
		hints = append(hints, Hint{
			Key:   "temp_critical",
			Level: "critical",
			Title: fmt.Sprintf("%.1f°C", b.Temperature),
			Detail: fmt.Sprintf(
				"Temperature is %.1f°C, above the critical bound of %.0f°C. "+
					"Biohazard waste must not be stored this warm — inspect the unit now.",
				b.Temperature, t.TempCriticalMax),
		})
	} else if b.Temperature > t.TempWarningMax || b.Temperature < t.TempSafeMin {
		hints = append(hints, Hint{
			Key:   "temp_out_of_band",
			Level: "warning",
			Title: fmt.Sprintf("%.1f°C", b.Temperature),
			Detail: fmt.Sprintf(
				"Temperature is %.1f°C, outside the safe storage band of %.0f–%.0f°C. "+
					"Check the cooling unit or relocate the bin.",
				b.Temperature, t.TempSafeMin, t.TempWarningMax),
		})
	}

	if b.WeightKg > t.WeightCriticalMax {
		hints = append(hints, Hint{
			Key:   "overweight",
			Level: "critical",
			Title: fmt.Sprintf("%.1fkg", b.WeightKg),
			Detail: fmt.Sprintf(
				"The bin weighs %.1fkg, above the critical bound of %.0fkg. "+
					"It may be unsafe to move by hand — use lifting equipment.",
				b.WeightKg, t.WeightCriticalMax),
		})
	} else if b.WeightKg > t.WeightWarningMax {
		hints = append(hints, Hint{
			Key:   "heavy",
			Level: "warning",
			Title: fmt.Sprintf("%.1fkg", b.WeightKg),
			Detail: fmt.Sprintf(
				"The bin weighs %.1fkg, above the safe maximum of %.0fkg. "+
					"Collect it before it becomes a manual-handling risk.",
				b.WeightKg, t.WeightWarningMax),
		})
	}

	if len(hints) == 0 {
		hints = append(hints, Hint{
			Key:    "ok",
			Level:  "info",
			Title:  "All clear",
			Detail: "Fill level, temperature, and weight are all inside their safe bounds.",
		})
	}

	return hints
}
