package repositories

import "github.com/rajkumardasgupta/btf-app-login/internal/models"

// SessionRepository defines the interface for session data access.
type SessionRepository interface {
	Create(session *models.Session) error
	GetByID(id string) (*models.Session, error)
	Delete(id string) error
}
