package rate

import (
	"sync/atomic"

	"fxconvert/internal/domain"
)

// Store holds the current rate snapshot. Readers never observe a partially
// built table: the snapshot is replaced as a whole.
type Store struct {
	current atomic.Pointer[domain.Snapshot]
}

func NewStore() *Store {
	return &Store{}
}

// Load returns the current snapshot or nil before the first refresh.
func (s *Store) Load() *domain.Snapshot {
	return s.current.Load()
}

func (s *Store) Replace(snapshot *domain.Snapshot) {
	s.current.Store(snapshot)
}
