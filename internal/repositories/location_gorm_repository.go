package repositories

import (
	"fmt"

	"github.com/rajkumardasgupta/btf-app-login/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMLocationRepository is a GORM implementation of LocationRepository.
type GORMLocationRepository struct {
	db *gorm.DB
}

// NewGORMLocationRepository creates a new instance of GORMLocationRepository.
func NewGORMLocationRepository(db *gorm.DB) *GORMLocationRepository {
	return &GORMLocationRepository{
		db: db,
	}
}

// Create inserts a new plantation site submission.
func (r *GORMLocationRepository) Create(location *models.LocationSubmission) error {
	if location.ID == "" {
		location.ID = uuid.New().String()
	}
	if err := r.db.Create(location).Error; err != nil {
		return fmt.Errorf("failed to create location submission: %w", err)
	}
	return nil
}

// GetAll retrieves every submission. All views fetch the full set and
// filter or aggregate in memory; there is no pagination.
func (r *GORMLocationRepository) GetAll() ([]models.LocationSubmission, error) {
	var locations []models.LocationSubmission
	if err := r.db.Find(&locations).Error; err != nil {
		return nil, fmt.Errorf("failed to get all locations: %w", err)
	}
	return locations, nil
}

// GetByID retrieves a single submission by its ID.
func (r *GORMLocationRepository) GetByID(id string) (*models.LocationSubmission, error) {
	var location models.LocationSubmission
	if err := r.db.First(&location, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("location with ID %s not found", id)
		}
		return nil, fmt.Errorf("failed to get location by ID %s: %w", id, err)
	}
	return &location, nil
}

// UpdateStatus updates only the status field of an existing submission.
func (r *GORMLocationRepository) UpdateStatus(id string, status string) error {
	res := r.db.Model(&models.LocationSubmission{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return fmt.Errorf("failed to update status for location %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("location with ID %s not found for status update", id)
	}
	return nil
}
