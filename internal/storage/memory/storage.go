package memory

import (
	"context"
	"sync"

	"github.com/mcoot/tourneybot/internal/model"
	"github.com/mcoot/tourneybot/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	sessions map[model.UserID]model.Session
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		sessions: make(map[model.UserID]model.Session),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Sessions are stored by value so callers never share a pointer with the map.

func (s *Storage) SaveSession(ctx context.Context, session *model.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.UserID] = *session
	return nil
}

func (s *Storage) GetSession(ctx context.Context, userID model.UserID) (*model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[userID]
	if !ok {
		return nil, model.ErrSessionNotFound
	}
	return &session, nil
}

func (s *Storage) DeleteSession(ctx context.Context, userID model.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
	return nil
}

// SessionCount returns the number of active sessions
func (s *Storage) SessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
