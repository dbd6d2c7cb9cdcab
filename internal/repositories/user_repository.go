package repositories

import "github.com/rajkumardasgupta/btf-app-login/internal/models"

// UserRepository defines the interface for user data access.
// GetByEmail matches on the normalized (trimmed, lowercased) email.
type UserRepository interface {
	Create(user *models.User) error
	GetByEmail(email string) (*models.User, error)
	GetByID(id string) (*models.User, error)
	GetAll() ([]models.User, error)
	UpdateName(id string, name string) error
}
