// Package reconcile turns raw backend task payloads into render-ready
// progress snapshots: it normalizes the error log, computes a single 0-100
// progress value, propagates failures onto the step sequence, and assembles
// the whole into a tasks.ProgressSnapshot. Reconciliation never fails; any
// payload, however malformed, yields a snapshot.
package reconcile
