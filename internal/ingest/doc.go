// Package ingest implements the ingestion coordinator, the single entry
// point for sensor data. Each accepted reading runs validation, status
// classification, the registry upsert, and alert evaluation as one critical
// section, so concurrent readers always observe a bin together with the
// alert transitions it caused.
package ingest
