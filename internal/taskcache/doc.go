// Package taskcache implements the shared reactive cache between the backend
// client and the views: keyed fetch results with staleness tracking,
// conditional polling subscriptions, in-flight request de-duplication,
// optimistic mutations with snapshot/rollback, and age-based eviction.
//
// Within one key, writes land in fetch-completion order: the cache always
// holds the most recently completed fetch, not the most recently issued one.
package taskcache
