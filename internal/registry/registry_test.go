package registry

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/binwatch/binwatch/internal/model"
)

var baseTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// fixedClock returns a func() time.Time that always returns t.
func fixedClock(t time.Time) func() time.Time { return func() time.Time { return t } }

func reading(id string, fill float64) model.SensorReading {
	return model.SensorReading{
		BinID:       id,
		FillLevel:   fill,
		Temperature: 22,
		WeightKg:    10,
		Location:    "Ward-2",
		ReceivedAt:  baseTime,
	}
}

func TestUpsert_CreatesOnFirstReading(t *testing.T) {
	r := New()
	b, isNew := r.Upsert(reading("BIN-001", 40), model.StatusNormal)

	if !isNew {
		t.Error("Upsert: expected is_new=true on first reading")
	}
	if b.ID != "BIN-001" || b.FillLevel != 40 || b.Status != model.StatusNormal {
		t.Errorf("bin after upsert: %+v", b)
	}
	if b.TotalReadings != 1 {
		t.Errorf("TotalReadings: got %d, want 1", b.TotalReadings)
	}
	if !b.FirstSeen.Equal(baseTime) {
		t.Errorf("FirstSeen: got %v, want %v", b.FirstSeen, baseTime)
	}
}

func TestUpsert_UpdatesExisting(t *testing.T) {
	r := New()
	r.Upsert(reading("BIN-001", 40), model.StatusNormal)
	b, isNew := r.Upsert(reading("BIN-001", 75), model.StatusWarning)

	if isNew {
		t.Error("Upsert: expected is_new=false on second reading")
	}
	if b.FillLevel != 75 || b.Status != model.StatusWarning {
		t.Errorf("bin after second upsert: fill %.1f status %q", b.FillLevel, b.Status)
	}
	if b.TotalReadings != 2 {
		t.Errorf("TotalReadings: got %d, want 2", b.TotalReadings)
	}
	if r.Count() != 1 {
		t.Errorf("Count: got %d, want 1", r.Count())
	}
}

func TestGet_Missing(t *testing.T) {
	r := New()
	_, err := r.Get("UNKNOWN")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get on empty registry: got %v, want ErrNotFound", err)
	}
}

func TestList_FirstSeenOrder(t *testing.T) {
	r := New()
	ids := []string{"BIN-C", "BIN-A", "BIN-B"}
	for _, id := range ids {
		r.Upsert(reading(id, 10), model.StatusNormal)
	}
	// Updating an existing bin must not change its position.
	r.Upsert(reading("BIN-C", 80), model.StatusWarning)

	bins := r.List()
	if len(bins) != 3 {
		t.Fatalf("List: got %d bins, want 3", len(bins))
	}
	for i, id := range ids {
		if bins[i].ID != id {
			t.Errorf("List[%d].ID = %q, want %q", i, bins[i].ID, id)
		}
	}
}

func TestUpsert_TracksFillRate(t *testing.T) {
	r := New()
	r.Upsert(reading("BIN-001", 40), model.StatusNormal)

	later := reading("BIN-001", 60)
	later.ReceivedAt = baseTime.Add(2 * time.Hour)
	b, _ := r.Upsert(later, model.StatusNormal)

	if b.FillRateHour != 10 {
		t.Errorf("FillRateHour: got %.2f, want 10 (20 points over 2h)", b.FillRateHour)
	}

	// A drop in fill level (partial removal) must not produce a negative rate.
	dropped := reading("BIN-001", 50)
	dropped.ReceivedAt = baseTime.Add(3 * time.Hour)
	b, _ = r.Upsert(dropped, model.StatusNormal)
	if b.FillRateHour != 10 {
		t.Errorf("FillRateHour after drop: got %.2f, want 10 (unchanged)", b.FillRateHour)
	}
}

func TestMarkEmptied_ResetsBin(t *testing.T) {
	r := New()
	r.now = fixedClock(baseTime.Add(time.Hour))
	r.Upsert(reading("BIN-001", 95), model.StatusCritical)

	b, removed, err := r.MarkEmptied("BIN-001")
	if err != nil {
		t.Fatalf("MarkEmptied: %v", err)
	}
	if b.FillLevel != 0 || b.WeightKg != 0 {
		t.Errorf("fill/weight after empty: %.1f / %.1f, want 0 / 0", b.FillLevel, b.WeightKg)
	}
	if b.Status != model.StatusNormal {
		t.Errorf("status after empty: %q, want normal", b.Status)
	}
	if removed != 10 {
		t.Errorf("removed weight: got %.1f, want 10", removed)
	}
	if b.LastEmptied == nil || !b.LastEmptied.Equal(baseTime.Add(time.Hour)) {
		t.Errorf("LastEmptied: got %v", b.LastEmptied)
	}
}

func TestMarkEmptied_Unknown(t *testing.T) {
	r := New()
	_, _, err := r.MarkEmptied("UNKNOWN")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("MarkEmptied unknown: got %v, want ErrNotFound", err)
	}
}

func TestGet_ReturnsCopy(t *testing.T) {
	r := New()
	r.Upsert(reading("BIN-001", 40), model.StatusNormal)

	b, _ := r.Get("BIN-001")
	b.FillLevel = 99

	again, _ := r.Get("BIN-001")
	if again.FillLevel != 40 {
		t.Errorf("mutating a returned bin leaked into the registry: fill %.1f", again.FillLevel)
	}
}

func TestConcurrentUpserts(t *testing.T) {
	r := New()
	var wg sync.WaitGroup

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			r.Upsert(reading(fmt.Sprintf("BIN-%03d", n%10), 50), model.StatusNormal)
		}(i)
	}
	wg.Wait()

	if r.Count() != 10 {
		t.Errorf("Count after concurrent upserts: got %d, want 10", r.Count())
	}
}
