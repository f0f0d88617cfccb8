package ingest

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/binwatch/binwatch/internal/alerts"
	"github.com/binwatch/binwatch/internal/classify"
	"github.com/binwatch/binwatch/internal/config"
	"github.com/binwatch/binwatch/internal/model"
	"github.com/binwatch/binwatch/internal/registry"
)

// InvalidReadingError reports a reading that failed range or shape
// validation. No state is mutated when one is returned.
type InvalidReadingError struct {
	Field  string
	Reason string
}

func (e *InvalidReadingError) Error() string {
	return fmt.Sprintf("invalid reading: %s: %s", e.Field, e.Reason)
}

// Result is the outcome of one accepted reading: the updated bin, the alert
// transitions it caused, and whether the bin was newly created.
type Result struct {
	Bin    model.Bin      `json:"bin"`
	Events []alerts.Event `json:"events"`
	NewBin bool           `json:"new_bin"`
}

// View is a consistent read-only snapshot of the whole pipeline state,
// taken under a single lock so statistics never observe a bin updated
// without its alert transition.
type View struct {
	Bins             []model.Bin
	ActiveAlerts     []alerts.Alert
	TotalAlerts      int
	TotalReadings    int
	WasteCollectedKg float64
	Thresholds       config.Thresholds
}

// Coordinator is the single entry point for sensor data. It validates each
// reading and then runs classify → registry upsert → alert evaluation as
// one critical section.
//
// Concurrency: one RWMutex spans the registry update and the alert
// evaluation. Ingest and MarkEmptied take the write lock; every query takes
// the read lock. The registry and engine carry their own internal locks as
// well, so each stays safe in isolation.
type Coordinator struct {
	mu     sync.RWMutex
	reg    *registry.Registry
	engine *alerts.Engine

	thresholds config.Thresholds
	readings   int
	wasteKg    float64
	now        func() time.Time // injectable for deterministic tests
}

// New creates a Coordinator over the given registry and alert engine.
func New(reg *registry.Registry, engine *alerts.Engine, t config.Thresholds) *Coordinator {
	return &Coordinator{
		reg:        reg,
		engine:     engine,
		thresholds: t,
		now:        time.Now,
	}
}

// Ingest validates the reading, stamps its arrival time, and runs it
// through the pipeline. An InvalidReadingError leaves all state untouched.
func (c *Coordinator) Ingest(r model.SensorReading) (Result, error) {
	if err := validate(r); err != nil {
		return Result{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	r.ReceivedAt = c.now()
	status := classify.Classify(r.FillLevel, c.thresholds)
	before, _ := c.reg.Get(r.BinID)
	after, isNew := c.reg.Upsert(r, status)
	events := c.engine.Evaluate(before, after, r)
	c.readings++

	slog.Debug("reading ingested",
		"bin", r.BinID,
		"fill", r.FillLevel,
		"status", status,
		"new_bin", isNew,
		"events", len(events),
	)

	return Result{Bin: after, Events: events, NewBin: isNew}, nil
}

// validate applies the range and shape checks from the ingestion contract.
func validate(r model.SensorReading) error {
	if r.BinID == "" {
		return &InvalidReadingError{Field: "bin_id", Reason: "must not be empty"}
	}
	if r.FillLevel < 0 || r.FillLevel > 100 {
		return &InvalidReadingError{
			Field:  "fill_level",
			Reason: fmt.Sprintf("%.1f is outside [0, 100]", r.FillLevel),
		}
	}
	if r.WeightKg < 0 {
		return &InvalidReadingError{
			Field:  "weight_kg",
			Reason: fmt.Sprintf("%.1f must not be negative", r.WeightKg),
		}
	}
	return nil
}

// MarkEmptied resets the bin, unconditionally resolves its open alerts, and
// accounts the removed weight as collected waste. Returns
// registry.ErrNotFound for an unknown id.
func (c *Coordinator) MarkEmptied(id string) (model.Bin, []alerts.Event, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	bin, removed, err := c.reg.MarkEmptied(id)
	if err != nil {
		return model.Bin{}, nil, err
	}
	events := c.engine.ResolveAll(id)
	c.wasteKg += removed

	slog.Info("bin emptied",
		"bin", id, "collected_kg", removed, "resolved_alerts", len(events))

	return bin, events, nil
}

// GetBin returns the bin record for id, or registry.ErrNotFound.
func (c *Coordinator) GetBin(id string) (model.Bin, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.reg.Get(id)
}

// ListBins returns all bins in first-seen order.
func (c *Coordinator) ListBins() []model.Bin {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.reg.List()
}

// ActiveAlerts returns all open alerts, most recent first.
func (c *Coordinator) ActiveAlerts() []alerts.Alert {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.engine.Active()
}

// AlertHistory returns the append-only audit trail.
func (c *Coordinator) AlertHistory() []alerts.HistoryRecord {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.engine.History()
}

// Snapshot returns a consistent view of the whole pipeline state.
func (c *Coordinator) Snapshot() View {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return View{
		Bins:             c.reg.List(),
		ActiveAlerts:     c.engine.Active(),
		TotalAlerts:      c.engine.TotalGenerated(),
		TotalReadings:    c.readings,
		WasteCollectedKg: c.wasteKg,
		Thresholds:       c.thresholds,
	}
}

// Thresholds returns the currently active rule bounds.
func (c *Coordinator) Thresholds() config.Thresholds {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.thresholds
}

// SetThresholds swaps the rule bounds on both the classifier path and the
// alert engine. Used by config hot-reload.
func (c *Coordinator) SetThresholds(t config.Thresholds) {
	c.mu.Lock()
	c.thresholds = t
	c.engine.SetThresholds(t)
	c.mu.Unlock()
}
