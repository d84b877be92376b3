package memory

import (
	"context"
	"sync"

	"social-style-service/internal/domain"
)

// SessionStore is an in-memory implementation of app.SessionStore.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]domain.Session
	feed     *feed[domain.SessionSnapshot]
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]domain.Session),
		feed:     newFeed[domain.SessionSnapshot](),
	}
}

// Create writes the full record, replacing any existing one.
func (s *SessionStore) Create(_ context.Context, session domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.Code] = session
	s.feed.publish(session.Code, domain.SessionSnapshot{Session: session})
	return nil
}

func (s *SessionStore) Get(_ context.Context, code string) (domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[code]
	if !ok {
		return domain.Session{}, domain.ErrSessionNotFound
	}
	return session, nil
}

func (s *SessionStore) Exists(_ context.Context, code string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.sessions[code]
	return ok, nil
}

func (s *SessionStore) UpdateFlags(_ context.Context, code string, patch domain.FlagPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[code]
	if !ok {
		return domain.ErrSessionNotFound
	}
	session.Flags = session.Flags.Apply(patch)
	s.sessions[code] = session
	s.feed.publish(code, domain.SessionSnapshot{Session: session})
	return nil
}

func (s *SessionStore) Subscribe(_ context.Context, code string) (<-chan domain.SessionSnapshot, func(), error) {
	s.mu.Lock()
	var initial *domain.SessionSnapshot
	if session, ok := s.sessions[code]; ok {
		initial = &domain.SessionSnapshot{Session: session}
	}
	ch := s.feed.add(code, initial)
	s.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			s.feed.remove(code, ch)
			s.mu.Unlock()
		})
	}
	return ch, cancel, nil
}
