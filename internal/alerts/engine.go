package alerts

import (
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/binwatch/binwatch/internal/config"
	"github.com/binwatch/binwatch/internal/model"
)

// Kind identifies which measurement an alert is bound to.
type Kind string

const (
	KindFillLevel   Kind = "fill_level"
	KindTemperature Kind = "temperature"
	KindWeight      Kind = "weight"
)

// Kinds lists every alert kind, for deterministic rule evaluation order.
var Kinds = []Kind{KindFillLevel, KindTemperature, KindWeight}

// Severity is the ordered alert severity scale.
type Severity string

const (
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// rank orders severities so escalation checks read as comparisons.
// Zero means "no alert warranted".
func rank(s Severity) int {
	switch s {
	case SeverityWarning:
		return 1
	case SeverityCritical:
		return 2
	default:
		return 0
	}
}

// Alert is one out-of-bound condition for a (bin, kind) pair, open until
// resolved. At most one open alert exists per pair; worsening conditions
// escalate the open alert in place rather than creating a duplicate.
type Alert struct {
	ID          string     `json:"alert_id"`
	BinID       string     `json:"bin_id"`
	Kind        Kind       `json:"kind"`
	Severity    Severity   `json:"severity"`
	Message     string     `json:"message"`
	CreatedAt   time.Time  `json:"created_at"`
	EscalatedAt *time.Time `json:"escalated_at,omitempty"`
	ResolvedAt  *time.Time `json:"resolved_at,omitempty"`
	Escalated   bool       `json:"escalated"`
}

// EventType tags what the engine did to an alert during one evaluation.
type EventType string

const (
	EventCreated   EventType = "created"
	EventEscalated EventType = "escalated"
	EventUnchanged EventType = "unchanged"
	EventResolved  EventType = "resolved"
)

// Event is one alert transition produced by Evaluate or ResolveAll.
type Event struct {
	Type  EventType `json:"type"`
	Alert Alert     `json:"alert"`
}

// HistoryRecord is one entry in the append-only audit trail. Unchanged
// events are not recorded — only real transitions are.
type HistoryRecord struct {
	Event EventType `json:"event"`
	Alert Alert     `json:"alert"`
	At    time.Time `json:"at"`
}

// Engine owns the active-alert set and the audit history. It evaluates the
// per-kind alert rules against each bin transition and delivers webhook
// notifications for every real transition.
//
// Engine is safe for concurrent use.
type Engine struct {
	mu         sync.Mutex
	thresholds config.Thresholds
	webhooks   []config.WebhookConfig
	active     map[string]*Alert // key: binID + ":" + kind
	history    []HistoryRecord
	generated  int // total alerts ever created
	client     *http.Client
	now        func() time.Time // injectable for deterministic tests
	newID      func(binID string) string
}

// New creates an Engine with the given rule thresholds and webhook targets.
// An Engine with no webhooks is valid — delivery becomes a no-op.
func New(t config.Thresholds, webhooks []config.WebhookConfig) *Engine {
	return &Engine{
		thresholds: t,
		webhooks:   webhooks,
		active:     make(map[string]*Alert),
		client:     &http.Client{Timeout: 10 * time.Second},
		now:        time.Now,
		newID:      defaultID,
	}
}

func defaultID(binID string) string {
	return fmt.Sprintf("ALT-%s-%s", binID, uuid.NewString()[:8])
}

// SetThresholds swaps the rule bounds, used by config hot-reload. Open
// alerts are not retroactively re-evaluated; the next reading applies the
// new bounds.
func (e *Engine) SetThresholds(t config.Thresholds) {
	e.mu.Lock()
	e.thresholds = t
	e.mu.Unlock()
}

// Evaluate applies the fill-level, temperature, and weight rules to one bin
// transition and returns the resulting events. It is total: a reading that
// triggers no rule change yields an empty slice, never an error.
func (e *Engine) Evaluate(before, after model.Bin, reading model.SensorReading) []Event {
	e.mu.Lock()
	t := e.thresholds
	e.mu.Unlock()

	var events []Event
	for _, kind := range Kinds {
		sev, msg := desired(kind, after, reading, t)
		if ev, ok := e.step(after.ID, kind, sev, msg); ok {
			events = append(events, ev)
		}
	}
	return events
}

// desired computes the severity a (bin, kind) pair warrants right now, or
// "" when no alert is warranted, plus the human-readable message.
func desired(kind Kind, bin model.Bin, r model.SensorReading, t config.Thresholds) (Severity, string) {
	switch kind {
	case KindFillLevel:
		switch bin.Status {
		case model.StatusWarning:
			return SeverityWarning, fmt.Sprintf(
				"Bin %s is %.1f%% full and requires collection soon", bin.ID, r.FillLevel)
		case model.StatusCritical:
			return SeverityCritical, fmt.Sprintf(
				"Bin %s is %.1f%% full and requires collection", bin.ID, r.FillLevel)
		case model.StatusOverflow:
			return SeverityCritical, fmt.Sprintf(
				"Bin %s is %.1f%% full and must be emptied immediately", bin.ID, r.FillLevel)
		default:
			return "", ""
		}

	case KindTemperature:
		switch {
		case r.Temperature > t.TempCriticalMax:
			return SeverityCritical, fmt.Sprintf(
				"Bin %s temperature %.1f°C exceeds the critical bound of %.1f°C",
				bin.ID, r.Temperature, t.TempCriticalMax)
		case r.Temperature > t.TempWarningMax || r.Temperature < t.TempSafeMin:
			return SeverityWarning, fmt.Sprintf(
				"Bin %s temperature %.1f°C is outside the safe band %.1f–%.1f°C",
				bin.ID, r.Temperature, t.TempSafeMin, t.TempWarningMax)
		default:
			return "", ""
		}

	case KindWeight:
		switch {
		case r.WeightKg > t.WeightCriticalMax:
			return SeverityCritical, fmt.Sprintf(
				"Bin %s weight %.1fkg exceeds the critical bound of %.1fkg",
				bin.ID, r.WeightKg, t.WeightCriticalMax)
		case r.WeightKg > t.WeightWarningMax:
			return SeverityWarning, fmt.Sprintf(
				"Bin %s weight %.1fkg exceeds the safe maximum of %.1fkg",
				bin.ID, r.WeightKg, t.WeightWarningMax)
		default:
			return "", ""
		}
	}
	return "", ""
}

// step advances the (bin, kind) state machine to the desired severity.
// The transitions:
//
//	no open alert, severity warranted   → create
//	open alert, higher severity         → escalate in place
//	open alert, same or lower severity  → unchanged (escalation is monotonic)
//	open alert, none warranted          → resolve
//	no open alert, none warranted       → no event
func (e *Engine) step(binID string, kind Kind, sev Severity, msg string) (Event, bool) {
	e.mu.Lock()

	key := binID + ":" + string(kind)
	open, hasOpen := e.active[key]
	now := e.now()

	if sev == "" {
		if !hasOpen {
			e.mu.Unlock()
			return Event{}, false
		}
		resolved := now
		open.ResolvedAt = &resolved
		delete(e.active, key)
		ev := Event{Type: EventResolved, Alert: *open}
		e.record(ev, now)
		e.mu.Unlock()

		slog.Info("alert resolved", "bin", binID, "kind", kind, "alert", ev.Alert.ID)
		go e.deliver(ev)
		return ev, true
	}

	if !hasOpen {
		a := &Alert{
			ID:        e.newID(binID),
			BinID:     binID,
			Kind:      kind,
			Severity:  sev,
			Message:   msg,
			CreatedAt: now,
		}
		e.active[key] = a
		e.generated++
		ev := Event{Type: EventCreated, Alert: *a}
		e.record(ev, now)
		e.mu.Unlock()

		slog.Warn("alert created",
			"bin", binID, "kind", kind, "severity", sev, "alert", a.ID)
		go e.deliver(ev)
		return ev, true
	}

	if rank(sev) > rank(open.Severity) {
		escalated := now
		open.Severity = sev
		open.Message = msg
		open.EscalatedAt = &escalated
		open.Escalated = true
		ev := Event{Type: EventEscalated, Alert: *open}
		e.record(ev, now)
		e.mu.Unlock()

		slog.Warn("alert escalated",
			"bin", binID, "kind", kind, "severity", sev, "alert", open.ID)
		go e.deliver(ev)
		return ev, true
	}

	ev := Event{Type: EventUnchanged, Alert: *open}
	e.mu.Unlock()
	return ev, true
}

// ResolveAll unconditionally resolves every open alert for binID, regardless
// of threshold state. Used when a bin is emptied: the physical condition
// behind every alert kind is gone.
func (e *Engine) ResolveAll(binID string) []Event {
	e.mu.Lock()
	now := e.now()
	var events []Event
	for _, kind := range Kinds {
		key := binID + ":" + string(kind)
		open, ok := e.active[key]
		if !ok {
			continue
		}
		resolved := now
		open.ResolvedAt = &resolved
		delete(e.active, key)
		ev := Event{Type: EventResolved, Alert: *open}
		e.record(ev, now)
		events = append(events, ev)
	}
	e.mu.Unlock()

	for _, ev := range events {
		slog.Info("alert resolved on empty",
			"bin", binID, "kind", ev.Alert.Kind, "alert", ev.Alert.ID)
		go e.deliver(ev)
	}
	return events
}

// record appends a transition to the audit history. Callers hold e.mu.
func (e *Engine) record(ev Event, at time.Time) {
	e.history = append(e.history, HistoryRecord{Event: ev.Type, Alert: ev.Alert, At: at})
}

// Active returns copies of all currently open alerts, most recent first.
func (e *Engine) Active() []Alert {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]Alert, 0, len(e.active))
	for _, a := range e.active {
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

// ActiveCounts returns the number of open alerts per severity.
func (e *Engine) ActiveCounts() map[Severity]int {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make(map[Severity]int, 2)
	for _, a := range e.active {
		out[a.Severity]++
	}
	return out
}

// TotalGenerated returns the number of alerts ever created.
func (e *Engine) TotalGenerated() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.generated
}

// History returns a copy of the append-only audit trail, oldest first.
func (e *Engine) History() []HistoryRecord {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]HistoryRecord, len(e.history))
	copy(out, e.history)
	return out
}
