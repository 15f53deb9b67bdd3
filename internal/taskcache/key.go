package taskcache

import "time"

// Kind partitions the cache keyspace by entity type. Detail and list kinds
// get separate eviction horizons.
type Kind string

const (
	// KindTask caches reconciled progress snapshots per task id.
	KindTask Kind = "task"
	// KindList caches task collections; ID distinguishes list variants.
	KindList Kind = "list"
	// KindSearch caches search results keyed by query.
	KindSearch Kind = "search"
)

// Key identifies one cache entry.
type Key struct {
	Kind Kind
	ID   string
}

// TaskKey builds the detail key for a task id.
func TaskKey(taskID string) Key { return Key{Kind: KindTask, ID: taskID} }

// ListKey builds the key for a named list variant ("all" for the default).
func ListKey(variant string) Key { return Key{Kind: KindList, ID: variant} }

// SearchKey builds the key for a search query.
func SearchKey(query string) Key { return Key{Kind: KindSearch, ID: query} }

// Entry is one cached fetch result. Value semantics; mutating a returned
// Entry never affects the cache.
type Entry struct {
	Key       Key
	Data      any
	FetchedAt time.Time
	Stale     bool
}
