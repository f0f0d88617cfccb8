// Package registry owns the in-memory bin records. It provides a
// thread-safe upsert/get/list surface keyed by bin ID, with first-seen
// ordering for deterministic listings, plus the mark-emptied reset.
//
// Bins are created on first reading (no separate registration step) and are
// never removed for the lifetime of the process.
package registry
