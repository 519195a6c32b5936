package reconcile

import (
	"context"
	"sync"

	id "pickup-gateway/pkg/domain"
)

// InMemorySessionStore keeps scan sessions in process memory. Suitable for
// a single gateway instance and for tests; use the redis store when scans
// may land on different instances.
type InMemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[id.MissionID]*Session
}

func NewInMemorySessionStore() *InMemorySessionStore {
	return &InMemorySessionStore{sessions: make(map[id.MissionID]*Session)}
}

func (s *InMemorySessionStore) Get(_ context.Context, missionID id.MissionID) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[missionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return cloneSession(session), nil
}

func (s *InMemorySessionStore) Save(_ context.Context, session *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.MissionID] = cloneSession(session)
	return nil
}

func (s *InMemorySessionStore) Delete(_ context.Context, missionID id.MissionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, missionID)
	return nil
}

func cloneSession(session *Session) *Session {
	cloned := *session
	cloned.Manifest = append([]ManifestItem(nil), session.Manifest...)
	cloned.Scanned = make(map[id.ParcelID]bool, len(session.Scanned))
	for parcelID, scanned := range session.Scanned {
		cloned.Scanned[parcelID] = scanned
	}
	return &cloned
}
