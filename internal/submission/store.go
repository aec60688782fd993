package submission

import "sync"

// Store holds pending submissions keyed by owner id. Implementations
// must be safe for concurrent use, and each operation must be atomic:
// the commit path relies on Take removing the entry in the same
// critical section that reads it, so two racing button presses observe
// exactly one live entry between them, and stage transitions go through
// Mutate so a replacement landing mid-transition is never overwritten
// by a stale entry.
//
// Get returns (nil, false) when no submission exists for the owner.
type Store interface {
	Get(ownerID int64) (*Pending, bool)
	Set(p *Pending)
	Delete(ownerID int64) bool

	// Take atomically removes and returns the owner's entry.
	Take(ownerID int64) (*Pending, bool)

	// Mutate runs fn on the owner's entry inside the store's critical
	// section; fn reports whether the entry should be removed after it
	// returns. fn must not call back into the store. Returns
	// (nil, false) when no entry exists.
	Mutate(ownerID int64, fn func(p *Pending) (remove bool)) (*Pending, bool)
}

// memoryStore is the in-process Store. State does not survive restarts;
// pending submissions are low-stakes and users simply resubmit.
type memoryStore struct {
	mu      sync.Mutex
	pending map[int64]*Pending
}

// NewMemoryStore creates an empty in-memory Store.
func NewMemoryStore() Store {
	return &memoryStore{pending: make(map[int64]*Pending)}
}

func (s *memoryStore) Get(ownerID int64) (*Pending, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pending[ownerID]
	return p, ok
}

func (s *memoryStore) Set(p *Pending) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[p.OwnerID] = p
}

func (s *memoryStore) Delete(ownerID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.pending[ownerID]
	delete(s.pending, ownerID)
	return ok
}

func (s *memoryStore) Take(ownerID int64) (*Pending, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pending[ownerID]
	if ok {
		delete(s.pending, ownerID)
	}
	return p, ok
}

func (s *memoryStore) Mutate(ownerID int64, fn func(p *Pending) (remove bool)) (*Pending, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pending[ownerID]
	if !ok {
		return nil, false
	}
	if fn(p) {
		delete(s.pending, ownerID)
	}
	return p, true
}
