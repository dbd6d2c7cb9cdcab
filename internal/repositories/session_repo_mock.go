package repositories

import (
	"fmt"
	"sync"

	"github.com/rajkumardasgupta/btf-app-login/internal/models"

	"github.com/google/uuid"
)

// MockSessionRepository is an in-memory implementation of SessionRepository.
type MockSessionRepository struct {
	sessions map[string]models.Session
	mu       sync.RWMutex
}

// NewMockSessionRepository creates a new instance of MockSessionRepository.
func NewMockSessionRepository() *MockSessionRepository {
	return &MockSessionRepository{
		sessions: make(map[string]models.Session),
	}
}

// Create adds a new session.
func (r *MockSessionRepository) Create(session *models.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if session.ID == "" {
		session.ID = uuid.New().String()
	}
	r.sessions[session.ID] = *session
	return nil
}

// GetByID returns a session by its ID.
func (r *MockSessionRepository) GetByID(id string) (*models.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session with ID %s not found", id)
	}
	return &session, nil
}

// Delete removes a session. Absent sessions are ignored.
func (r *MockSessionRepository) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, id)
	return nil
}
