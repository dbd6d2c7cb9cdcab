package repositories

import (
	"fmt"
	"sync"

	"github.com/rajkumardasgupta/btf-app-login/internal/models"

	"github.com/google/uuid"
)

// MockLocationRepository is an in-memory implementation of LocationRepository.
type MockLocationRepository struct {
	locations map[string]models.LocationSubmission
	order     []string
	mu        sync.RWMutex
}

// NewMockLocationRepository creates a new instance of MockLocationRepository.
func NewMockLocationRepository() *MockLocationRepository {
	return &MockLocationRepository{
		locations: make(map[string]models.LocationSubmission),
	}
}

// Create adds a new submission.
func (r *MockLocationRepository) Create(location *models.LocationSubmission) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if location.ID == "" {
		location.ID = uuid.New().String()
	}
	if _, ok := r.locations[location.ID]; !ok {
		r.order = append(r.order, location.ID)
	}
	r.locations[location.ID] = *location
	return nil
}

// GetAll returns all submissions in insertion order.
func (r *MockLocationRepository) GetAll() ([]models.LocationSubmission, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	locationList := make([]models.LocationSubmission, 0, len(r.locations))
	for _, id := range r.order {
		locationList = append(locationList, r.locations[id])
	}
	return locationList, nil
}

// GetByID returns a submission by its ID.
func (r *MockLocationRepository) GetByID(id string) (*models.LocationSubmission, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	location, ok := r.locations[id]
	if !ok {
		return nil, fmt.Errorf("location with ID %s not found", id)
	}
	return &location, nil
}

// UpdateStatus modifies the status of an existing submission.
func (r *MockLocationRepository) UpdateStatus(id string, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	location, ok := r.locations[id]
	if !ok {
		return fmt.Errorf("location with ID %s not found for status update", id)
	}
	location.Status = status
	r.locations[id] = location
	return nil
}
