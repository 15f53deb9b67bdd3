// Package prefs persists the small per-user state that survives restarts:
// run parameter defaults and the set of locally hidden task ids. Storage is
// a SQLite database guarded by an advisory file lock so concurrent CLI
// invocations do not interleave writes. Nothing here participates in the
// cache's consistency model.
package prefs
