// Package classify holds the pure classification functions of the pipeline:
// fill-level status, the temperature safe band, collection priority, and
// time-to-full estimation. Every function is total and side-effect free;
// all bounds come from config.Thresholds.
package classify
