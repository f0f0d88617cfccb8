// Package model defines the domain types shared across the ingestion
// pipeline: sensor readings, bin records, and the bin status enum.
package model
