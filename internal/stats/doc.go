// Package stats derives on-demand summary statistics from the pipeline
// state: bin counts per status, active alerts per severity, average fill
// level, staleness, and running collection totals. The aggregator holds no
// state of its own.
package stats
