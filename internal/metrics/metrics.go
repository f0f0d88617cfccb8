package metrics

import (
	"net/http"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"

	"github.com/binwatch/binwatch/internal/alerts"
	"github.com/binwatch/binwatch/internal/model"
	"github.com/binwatch/binwatch/internal/stats"
)

// Handler serves GET /metrics in Prometheus text exposition format. Each
// scrape computes a fresh statistics snapshot; nothing is cached.
type Handler struct {
	agg *stats.Aggregator
}

// New creates a metrics Handler reading from agg.
func New(agg *stats.Aggregator) *Handler {
	return &Handler{agg: agg}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s := h.agg.Summarize()
	w.Header().Set("Content-Type", string(expfmt.NewFormat(expfmt.TypeTextPlain)))
	for _, mf := range families(s) {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return
		}
	}
}

// families maps a statistics snapshot to Prometheus metric families.
func families(s stats.Statistics) []*dto.MetricFamily {
	statusMetrics := make([]*dto.Metric, 0, len(model.Statuses))
	for _, st := range model.Statuses {
		statusMetrics = append(statusMetrics,
			labelledGauge("status", string(st), float64(s.BinsByStatus[st])))
	}

	severityMetrics := []*dto.Metric{
		labelledGauge("severity", string(alerts.SeverityWarning),
			float64(s.AlertsBySeverity[alerts.SeverityWarning])),
		labelledGauge("severity", string(alerts.SeverityCritical),
			float64(s.AlertsBySeverity[alerts.SeverityCritical])),
	}

	return []*dto.MetricFamily{
		gaugeFamily("binwatch_bins_total",
			"Number of bins tracked by the registry.",
			float64(s.TotalBins)),
		family("binwatch_bins",
			"Number of bins per fill-level status.",
			dto.MetricType_GAUGE, statusMetrics),
		family("binwatch_active_alerts",
			"Number of open alerts per severity.",
			dto.MetricType_GAUGE, severityMetrics),
		gaugeFamily("binwatch_average_fill_level",
			"Average fill level across all bins, in percent.",
			s.AverageFillLevel),
		gaugeFamily("binwatch_bins_needing_collection",
			"Bins in critical or overflow status.",
			float64(s.BinsNeedingCollection)),
		gaugeFamily("binwatch_stale_bins",
			"Bins not emptied within the staleness window.",
			float64(s.StaleBins)),
		counterFamily("binwatch_waste_collected_kg_total",
			"Total waste collected at emptying, in kilograms.",
			s.TotalWasteCollectedKg),
		counterFamily("binwatch_readings_total",
			"Total sensor readings accepted.",
			float64(s.TotalReadings)),
		counterFamily("binwatch_alerts_generated_total",
			"Total alerts ever created.",
			float64(s.TotalAlertsGenerated)),
	}
}

func family(name, help string, typ dto.MetricType, metrics []*dto.Metric) *dto.MetricFamily {
	return &dto.MetricFamily{
		Name:   strPtr(name),
		Help:   strPtr(help),
		Type:   typ.Enum(),
		Metric: metrics,
	}
}

func gaugeFamily(name, help string, value float64) *dto.MetricFamily {
	return family(name, help, dto.MetricType_GAUGE, []*dto.Metric{
		{Gauge: &dto.Gauge{Value: f64Ptr(value)}},
	})
}

func counterFamily(name, help string, value float64) *dto.MetricFamily {
	return family(name, help, dto.MetricType_COUNTER, []*dto.Metric{
		{Counter: &dto.Counter{Value: f64Ptr(value)}},
	})
}

func labelledGauge(label, labelValue string, value float64) *dto.Metric {
	return &dto.Metric{
		Label: []*dto.LabelPair{{Name: strPtr(label), Value: strPtr(labelValue)}},
		Gauge: &dto.Gauge{Value: f64Ptr(value)},
	}
}

func strPtr(s string) *string   { return &s }
func f64Ptr(f float64) *float64 { return &f }
