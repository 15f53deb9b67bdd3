package taskcache

import (
	"context"
	"sync"
)

// UpdateOp says what an optimistic update does to one key.
type UpdateOp int

const (
	// OpKeep leaves the entry as it is.
	OpKeep UpdateOp = iota
	// OpSet replaces the entry's value.
	OpSet
	// OpRemove drops the entry.
	OpRemove
)

// Mutation is one optimistic cache transaction: snapshot the named keys,
// apply the optimistic updates, run the backend call, then either settle or
// roll the snapshots back verbatim.
type Mutation struct {
	// Keys lists every entry the optimistic update may touch. Their current
	// state is snapshotted before Update runs.
	Keys []Key

	// Update returns the optimistic value for one key. Entries absent from
	// the cache are reported with present=false; OpSet may create them.
	Update func(key Key, current any, present bool) (any, UpdateOp)

	// Call performs the backend mutation.
	Call func(ctx context.Context) (any, error)

	// Settle reconciles one key with the call result after success. A nil
	// Settle keeps the optimistic values and marks the keys stale so the
	// next fetch picks up server truth.
	Settle func(key Key, current any, present bool, result any) (any, UpdateOp)
}

type entrySnapshot struct {
	entry   Entry
	present bool
}

// Mutate runs a mutation against the store. Mutations against the same
// primary key serialize: a second mutation blocks until the first settles,
// so its snapshot never captures a half-applied state. On call failure every
// touched key is restored to its snapshot and the error is returned.
func (s *Store) Mutate(ctx context.Context, primary Key, m Mutation) (any, error) {
	lock := s.mutationLock(primary)
	lock.Lock()
	defer lock.Unlock()

	snapshots := s.applyOptimistic(m)
	s.broadcast()

	result, err := m.Call(ctx)
	if err != nil {
		s.restore(snapshots)
		s.broadcast()
		return nil, err
	}

	s.settle(m, result)
	s.broadcast()
	return result, nil
}

func (s *Store) mutationLock(key Key) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.mutation[key]
	if !ok {
		lock = &sync.Mutex{}
		s.mutation[key] = lock
	}
	return lock
}

func (s *Store) applyOptimistic(m Mutation) map[Key]entrySnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshots := make(map[Key]entrySnapshot, len(m.Keys))
	for _, key := range m.Keys {
		entry, present := s.entries[key]
		snapshots[key] = entrySnapshot{entry: entry, present: present}
		if m.Update == nil {
			continue
		}
		value, op := m.Update(key, entry.Data, present)
		switch op {
		case OpSet:
			s.entries[key] = Entry{Key: key, Data: value, FetchedAt: s.now()}
		case OpRemove:
			delete(s.entries, key)
		}
	}
	return snapshots
}

func (s *Store) restore(snapshots map[Key]entrySnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, snapshot := range snapshots {
		if snapshot.present {
			s.entries[key] = snapshot.entry
		} else {
			delete(s.entries, key)
		}
	}
}

func (s *Store) settle(m Mutation, result any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range m.Keys {
		entry, present := s.entries[key]
		if m.Settle == nil {
			if present {
				entry.Stale = true
				s.entries[key] = entry
			}
			continue
		}
		value, op := m.Settle(key, entry.Data, present, result)
		switch op {
		case OpSet:
			s.entries[key] = Entry{Key: key, Data: value, FetchedAt: s.now()}
		case OpRemove:
			delete(s.entries, key)
		}
	}
}
