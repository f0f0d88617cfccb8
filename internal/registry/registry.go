package registry

import (
	"errors"
	"sync"
	"time"

	"github.com/binwatch/binwatch/internal/model"
)

// ErrNotFound is returned when a bin identifier is unknown to the registry.
var ErrNotFound = errors.New("bin not found")

// Registry is a thread-safe in-memory bin store, keyed by bin ID. Bins are
// created on first reading and never deleted; emptying resets fill level and
// weight, not identity. List returns bins in first-seen order.
type Registry struct {
	mu    sync.RWMutex
	bins  map[string]*model.Bin
	order []string         // bin IDs in first-seen order
	now   func() time.Time // injectable for deterministic tests
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{
		bins: make(map[string]*model.Bin),
		now:  time.Now,
	}
}

// Upsert creates or updates the bin record for the reading's identifier and
// returns the post-update record plus whether it was newly created. The
// status is supplied by the caller, which classifies the reading before
// committing it.
func (r *Registry) Upsert(reading model.SensorReading, status model.Status) (model.Bin, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.bins[reading.BinID]
	if !ok {
		b = &model.Bin{ID: reading.BinID, FirstSeen: reading.ReceivedAt}
		r.bins[reading.BinID] = b
		r.order = append(r.order, reading.BinID)
	}

	// Track the observed fill rate between consecutive readings while the
	// bin is filling; emptying and same-instant readings leave it unchanged.
	if ok {
		elapsed := reading.ReceivedAt.Sub(b.LastReading).Hours()
		if delta := reading.FillLevel - b.FillLevel; delta > 0 && elapsed > 0 {
			b.FillRateHour = delta / elapsed
		}
	}

	b.Location = reading.Location
	b.FillLevel = reading.FillLevel
	b.Temperature = reading.Temperature
	b.WeightKg = reading.WeightKg
	b.Status = status
	b.LastReading = reading.ReceivedAt
	b.TotalReadings++

	return *b, !ok
}

// Get returns a copy of the bin record for id, or ErrNotFound.
func (r *Registry) Get(id string) (model.Bin, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.bins[id]
	if !ok {
		return model.Bin{}, ErrNotFound
	}
	return *b, nil
}

// List returns copies of all bin records in first-seen order.
func (r *Registry) List() []model.Bin {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.Bin, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, *r.bins[id])
	}
	return out
}

// Count returns the number of bins currently tracked.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.bins)
}

// MarkEmptied resets the bin's fill level and weight to zero, sets its
// status to normal, and records the empty timestamp. It returns the updated
// record and the weight that was removed, or ErrNotFound for an unknown id.
func (r *Registry) MarkEmptied(id string) (model.Bin, float64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.bins[id]
	if !ok {
		return model.Bin{}, 0, ErrNotFound
	}

	removed := b.WeightKg
	now := r.now()
	b.FillLevel = 0
	b.WeightKg = 0
	b.Status = model.StatusNormal
	b.LastEmptied = &now

	return *b, removed, nil
}
