// Package api implements the HTTP REST adapter for binwatch-server.
//
// New(coord, agg) returns an http.Handler that serves:
//
//	POST /api/v1/readings         — ingest one sensor reading; 201 with bin + alert events
//	GET  /api/v1/bins             — all bins in first-seen order ([]BinResponse)
//	GET  /api/v1/bins/{id}        — single bin; 404 if unknown
//	POST /api/v1/bins/{id}/empty  — reset the bin and resolve its alerts; 404 if unknown
//	GET  /api/v1/alerts           — open alerts, most recent first
//	GET  /api/v1/alerts/history   — append-only transition audit trail
//	GET  /api/v1/stats            — on-demand statistics snapshot
//	GET  /api/v1/health           — liveness plus headline counts
//
// All endpoints:
//   - Respond with Content-Type: application/json
//   - Return 405 for unsupported methods
//   - Return errors as {"error": "..."}
//
// Invalid readings return 400; unknown bin IDs return 404. JSON types are
// defined in types.go. No external HTTP framework is used.
package api
