package repositories

import "github.com/rajkumardasgupta/btf-app-login/internal/models"

// LocationRepository defines the interface for plantation site data access.
// Submissions are insert-only from the app's point of view; UpdateStatus
// exists for the administrative pending-to-done transition.
type LocationRepository interface {
	Create(location *models.LocationSubmission) error
	GetAll() ([]models.LocationSubmission, error)
	GetByID(id string) (*models.LocationSubmission, error)
	UpdateStatus(id string, status string) error
}
