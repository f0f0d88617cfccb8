package api

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/binwatch/binwatch/internal/classify"
	"github.com/binwatch/binwatch/internal/ingest"
	"github.com/binwatch/binwatch/internal/model"
	"github.com/binwatch/binwatch/internal/registry"
	"github.com/binwatch/binwatch/internal/stats"
)

// Handler is the HTTP handler for all /api/v1/* endpoints. It is a thin
// adapter: every request maps onto one coordinator or aggregator call.
type Handler struct {
	coord *ingest.Coordinator
	agg   *stats.Aggregator
	mux   *http.ServeMux
}

// New creates a Handler wired to the given coordinator and aggregator and
// registers all routes.
func New(coord *ingest.Coordinator, agg *stats.Aggregator) http.Handler {
	h := &Handler{coord: coord, agg: agg, mux: http.NewServeMux()}

	h.mux.HandleFunc("/api/v1/health", h.health)
	h.mux.HandleFunc("/api/v1/readings", h.ingestReading)
	h.mux.HandleFunc("/api/v1/bins", h.listBins)
	h.mux.HandleFunc("/api/v1/bins/", h.binSubtree) // extracts {id} and {id}/empty
	h.mux.HandleFunc("/api/v1/alerts", h.activeAlerts)
	h.mux.HandleFunc("/api/v1/alerts/history", h.alertHistory)
	h.mux.HandleFunc("/api/v1/stats", h.statistics)

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// --- route handlers ---------------------------------------------------------

// health returns GET /api/v1/health — liveness plus headline counts.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	jsonResp(w, http.StatusOK, HealthResponse{
		Status:       "ok",
		BinCount:     len(h.coord.ListBins()),
		ActiveAlerts: len(h.coord.ActiveAlerts()),
		GeneratedAt:  time.Now().UTC().Format(time.RFC3339),
	})
}

// ingestReading handles POST /api/v1/readings — the sensor data entry point.
func (h *Handler) ingestReading(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req ReadingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonErr(w, http.StatusBadRequest, "malformed JSON body")
		return
	}

	res, err := h.coord.Ingest(model.SensorReading{
		BinID:       req.BinID,
		FillLevel:   req.FillLevel,
		Temperature: req.Temperature,
		WeightKg:    req.WeightKg,
		Location:    req.Location,
	})
	if err != nil {
		var invalid *ingest.InvalidReadingError
		if errors.As(err, &invalid) {
			jsonErr(w, http.StatusBadRequest, invalid.Error())
			return
		}
		jsonErr(w, http.StatusInternalServerError, "ingestion failed")
		return
	}

	jsonResp(w, http.StatusCreated, IngestResponse{
		Bin:    h.toBinResponse(res.Bin),
		Events: res.Events,
		NewBin: res.NewBin,
	})
}

// listBins returns GET /api/v1/bins — all bins in first-seen order.
func (h *Handler) listBins(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	bins := h.coord.ListBins()
	out := make([]BinResponse, 0, len(bins))
	for _, b := range bins {
		out = append(out, h.toBinResponse(b))
	}
	jsonResp(w, http.StatusOK, out)
}

// binSubtree dispatches GET /api/v1/bins/{id} and POST /api/v1/bins/{id}/empty.
func (h *Handler) binSubtree(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/bins/")
	if rest == "" {
		h.listBins(w, r)
		return
	}

	if id, ok := strings.CutSuffix(rest, "/empty"); ok && id != "" {
		h.markEmptied(w, r, id)
		return
	}
	h.getBin(w, r, rest)
}

func (h *Handler) getBin(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	b, err := h.coord.GetBin(id)
	if errors.Is(err, registry.ErrNotFound) {
		jsonErr(w, http.StatusNotFound, "bin not found")
		return
	}
	jsonResp(w, http.StatusOK, h.toBinResponse(b))
}

func (h *Handler) markEmptied(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	b, _, err := h.coord.MarkEmptied(id)
	if errors.Is(err, registry.ErrNotFound) {
		jsonErr(w, http.StatusNotFound, "bin not found")
		return
	}
	jsonResp(w, http.StatusOK, h.toBinResponse(b))
}

// activeAlerts returns GET /api/v1/alerts — open alerts, most recent first.
func (h *Handler) activeAlerts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	jsonResp(w, http.StatusOK, h.coord.ActiveAlerts())
}

// alertHistory returns GET /api/v1/alerts/history — the audit trail.
func (h *Handler) alertHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	jsonResp(w, http.StatusOK, h.coord.AlertHistory())
}

// statistics returns GET /api/v1/stats — the on-demand summary snapshot.
func (h *Handler) statistics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	jsonResp(w, http.StatusOK, h.agg.Summarize())
}

// --- helpers ----------------------------------------------------------------

func jsonResp(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func jsonErr(w http.ResponseWriter, code int, msg string) {
	jsonResp(w, code, errorResponse{Error: msg})
}

// toBinResponse maps a bin record to its JSON representation, deriving the
// collection priority and hints from the currently active thresholds.
func (h *Handler) toBinResponse(b model.Bin) BinResponse {
	t := h.coord.Thresholds()
	resp := BinResponse{
		BinID:              b.ID,
		Location:           b.Location,
		FillLevel:          b.FillLevel,
		Temperature:        b.Temperature,
		WeightKg:           b.WeightKg,
		Status:             string(b.Status),
		FirstSeen:          b.FirstSeen.UTC().Format(time.RFC3339),
		LastReading:        b.LastReading.UTC().Format(time.RFC3339),
		TotalReadings:      b.TotalReadings,
		CollectionPriority: classify.CollectionPriority(b.FillLevel, b.Location, t),
		Hints:              computeHints(b, t),
	}
	if b.LastEmptied != nil {
		resp.LastEmptied = b.LastEmptied.UTC().Format(time.RFC3339)
	}
	if ttf := classify.TimeToFull(b.FillLevel, b.FillRateHour); !math.IsInf(ttf, 1) {
		resp.TimeToFullHours = &ttf
	}
	return resp
}
