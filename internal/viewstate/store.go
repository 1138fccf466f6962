package viewstate

import (
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

const (
	DefaultSessionTTL    = 30 * time.Minute
	defaultCleanupPeriod = 90 * time.Minute
)

// Store keeps one State per browser session. Sessions expire after ttl without
// being looked up.
type Store struct {
	cache *cache.Cache
	ttl   time.Duration
}

func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Store{
		cache: cache.New(ttl, defaultCleanupPeriod),
		ttl:   ttl,
	}
}

// Get returns the state for id and extends its lifetime.
func (s *Store) Get(id string) (*State, bool) {
	v, ok := s.cache.Get(id)
	if !ok {
		return nil, false
	}
	st := v.(*State)
	s.cache.Set(id, st, s.ttl)
	return st, true
}

// Create starts a new session with a fresh State.
func (s *Store) Create() (string, *State) {
	id := uuid.NewString()
	st := New()
	s.cache.Set(id, st, s.ttl)
	return id, st
}

// GetOrCreate returns the session for id, creating a new one (with a new id)
// when id is unknown or expired.
func (s *Store) GetOrCreate(id string) (string, *State) {
	if id != "" {
		if st, ok := s.Get(id); ok {
			return id, st
		}
	}
	return s.Create()
}

// Reset replaces the state of session id with a fresh one, keeping the id.
// Unknown or expired ids get a new session.
func (s *Store) Reset(id string) (string, *State) {
	if id == "" {
		return s.Create()
	}
	if _, ok := s.cache.Get(id); !ok {
		return s.Create()
	}
	st := New()
	s.cache.Set(id, st, s.ttl)
	return id, st
}

func (s *Store) Len() int {
	return s.cache.ItemCount()
}
