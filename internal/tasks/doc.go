// Package tasks defines the shared task domain model: raw backend payloads,
// canonical statuses, reconciled progress snapshots, and projected detail
// fields. Everything here is plain data; normalization and I/O live in the
// pipeline, reconcile, project, and backend packages.
package tasks
