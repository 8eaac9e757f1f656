package session

import (
	"context"
	"sync"
	"time"

	"github.com/iliyamo/hotel-reservation/internal/model"
)

type memEntry struct {
	ref     model.OwnerRef
	expires time.Time
}

// MemoryStore is an in-process Store used when Redis is unavailable and
// in tests.  Slots do not survive a restart.
type MemoryStore struct {
	mu    sync.Mutex
	slots map[string]memEntry
	ttl   time.Duration
	now   func() time.Time
}

// NewMemoryStore returns a store whose slots idle out after ttl.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &MemoryStore{slots: make(map[string]memEntry), ttl: ttl, now: time.Now}
}

func (s *MemoryStore) Create(_ context.Context, ref model.OwnerRef) (string, error) {
	sid := newID()
	s.mu.Lock()
	s.slots[sid] = memEntry{ref: ref, expires: s.now().Add(s.ttl)}
	s.mu.Unlock()
	return sid, nil
}

func (s *MemoryStore) Get(_ context.Context, sid string) (model.OwnerRef, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.slots[sid]
	if !ok {
		return model.OwnerRef{}, ErrNoSession
	}
	now := s.now()
	if !now.Before(e.expires) {
		delete(s.slots, sid)
		return model.OwnerRef{}, ErrNoSession
	}
	e.expires = now.Add(s.ttl)
	s.slots[sid] = e
	return e.ref, nil
}

func (s *MemoryStore) Replace(_ context.Context, sid string, ref model.OwnerRef) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.slots[sid]
	if !ok || !s.now().Before(e.expires) {
		delete(s.slots, sid)
		return ErrNoSession
	}
	s.slots[sid] = memEntry{ref: ref, expires: s.now().Add(s.ttl)}
	return nil
}

func (s *MemoryStore) Destroy(_ context.Context, sid string) error {
	s.mu.Lock()
	delete(s.slots, sid)
	s.mu.Unlock()
	return nil
}
