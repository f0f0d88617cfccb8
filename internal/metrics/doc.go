// Package metrics exposes the statistics snapshot in Prometheus text
// exposition format on GET /metrics, so an external Prometheus can scrape
// bin and alert counts without a second aggregation path.
package metrics
