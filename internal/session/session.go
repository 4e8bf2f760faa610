// Package session holds the signed-in identity for a process and notifies
// subscribers when it changes. One Store is built at startup and passed to
// whatever needs to know who is signed in.
package session

import (
	"sync"
	"time"

	"github.com/dom/leaderboard-dashboard/internal/domain"
	"github.com/google/uuid"
)

type Identity struct {
	UserID      uuid.UUID   `yaml:"user_id" json:"id"`
	DisplayName string      `yaml:"display_name" json:"displayName"`
	Role        domain.Role `yaml:"role" json:"role"`
	Token       string      `yaml:"token" json:"-"`
	ExpiresAt   time.Time   `yaml:"expires_at,omitempty" json:"expiresAt,omitempty"`
}

func (i Identity) IsAdmin() bool {
	return i.Role == domain.RoleAdmin
}

func (i Identity) Expired(now time.Time) bool {
	return !i.ExpiresAt.IsZero() && !now.Before(i.ExpiresAt)
}

// Listener is called with the new identity, or nil after sign-out.
type Listener func(current *Identity)

// Context is the read side handed to views and controllers.
type Context interface {
	CurrentUser() (Identity, bool)
	OnAuthChange(fn Listener) (cancel func())
}

type Store struct {
	mu        sync.Mutex
	current   *Identity
	listeners map[int]Listener
	nextID    int
	now       func() time.Time
}

func NewStore() *Store {
	return &Store{
		listeners: make(map[int]Listener),
		now:       time.Now,
	}
}

// CurrentUser returns the signed-in identity. An expired identity counts as
// signed out.
func (s *Store) CurrentUser() (Identity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil || s.current.Expired(s.now()) {
		return Identity{}, false
	}
	return *s.current, true
}

func (s *Store) OnAuthChange(fn Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.listeners[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

func (s *Store) SignIn(identity Identity) {
	s.set(&identity)
}

func (s *Store) SignOut() {
	s.set(nil)
}

func (s *Store) set(identity *Identity) {
	s.mu.Lock()
	s.current = identity
	listeners := make([]Listener, 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.mu.Unlock()

	// Listeners run outside the lock so they may read the store.
	for _, fn := range listeners {
		if identity == nil {
			fn(nil)
			continue
		}
		copied := *identity
		fn(&copied)
	}
}
