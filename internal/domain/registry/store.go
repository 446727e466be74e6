package registry

import "sync/atomic"

// Store holds the active Registry behind a single atomic reference. Readers
// always observe either the old or the new catalog in full; a rebuild swaps
// the pointer only after the replacement is completely constructed.
type Store struct {
	current atomic.Pointer[Registry]
}

// Current returns the active registry, or nil before the first Swap.
func (s *Store) Current() *Registry {
	return s.current.Load()
}

// Swap installs reg as the active registry and returns the previous one.
func (s *Store) Swap(reg *Registry) *Registry {
	return s.current.Swap(reg)
}
