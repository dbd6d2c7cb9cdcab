package services

import (
	"fmt"
	"log"
	"time"

	"github.com/rajkumardasgupta/btf-app-login/internal/models"
	"github.com/rajkumardasgupta/btf-app-login/internal/repositories"
	"github.com/rajkumardasgupta/btf-app-login/pkg/rabbitmq"

	"github.com/google/uuid"
)

// SiteService handles plantation site submissions and the joined listing
// used by the list and map views.
type SiteService struct {
	locationRepo repositories.LocationRepository
	userRepo     repositories.UserRepository
	mqClient     *rabbitmq.Client // RabbitMQ client, may be nil
}

// NewSiteService creates a new SiteService.
func NewSiteService(locationRepo repositories.LocationRepository, userRepo repositories.UserRepository, mqClient *rabbitmq.Client) *SiteService {
	return &SiteService{
		locationRepo: locationRepo,
		userRepo:     userRepo,
		mqClient:     mqClient,
	}
}

// SubmitSiteInput carries the fields of a new site submission. The
// submitter email comes from the session, never from the request body.
type SubmitSiteInput struct {
	Latitude         float64
	Longitude        float64
	NumberOfTrees    int
	Note             string
	SubmittedByEmail string
}

// SiteRow is one submission joined with its submitter's display name.
type SiteRow struct {
	ID               string    `json:"id"`
	Latitude         float64   `json:"latitude"`
	Longitude        float64   `json:"longitude"`
	NumberOfTrees    int       `json:"numberOfTrees"`
	Note             string    `json:"note"`
	Status           string    `json:"status"`
	SubmitterName    string    `json:"submitterName"`
	SubmittedByEmail string    `json:"submittedByEmail"`
	UID              int64     `json:"u_id"`
	Timestamp        time.Time `json:"timestamp"`
	MapsURL          string    `json:"mapsUrl"`
}

// SiteList is the full joined result set with per-status tree totals.
// Both totals are computed over the complete fetch, independent of any
// filter the caller applies afterwards.
type SiteList struct {
	Rows              []SiteRow `json:"rows"`
	PendingTotalTrees int       `json:"pendingTotalTrees"`
	DoneTotalTrees    int       `json:"doneTotalTrees"`
}

// Submit creates a new submission with status pending. The submitter's
// display name is resolved from the user record and snapshotted into the
// submission; it will not follow later name edits. After a successful save
// a site.created event is published, with failure logged but not surfaced.
func (s *SiteService) Submit(input SubmitSiteInput) (*models.LocationSubmission, error) {
	if input.NumberOfTrees < 0 {
		return nil, fmt.Errorf("%w: number of trees cannot be negative", ErrValidation)
	}

	user, err := s.userRepo.GetByEmail(input.SubmittedByEmail)
	if err != nil {
		return nil, fmt.Errorf("%w: submitter name could not be resolved for %s", ErrValidation, models.NormalizeEmail(input.SubmittedByEmail))
	}

	now := time.Now()
	submission := &models.LocationSubmission{
		ID:               uuid.New().String(),
		Latitude:         input.Latitude,
		Longitude:        input.Longitude,
		NumberOfTrees:    input.NumberOfTrees,
		Note:             input.Note,
		Status:           models.StatusPending,
		SubmittedBy:      user.Name,
		SubmittedByEmail: models.NormalizeEmail(input.SubmittedByEmail),
		UID:              now.UnixMilli(), // human-readable task id, not guaranteed unique
		Timestamp:        now,
	}

	if err := s.locationRepo.Create(submission); err != nil {
		return nil, fmt.Errorf("%w: failed to save location: %w", ErrPersistFailure, err)
	}

	if s.mqClient != nil {
		event := rabbitmq.SiteEvent{
			Event:            rabbitmq.EventSiteCreated,
			SiteID:           submission.ID,
			SubmittedByEmail: submission.SubmittedByEmail,
			NumberOfTrees:    submission.NumberOfTrees,
		}
		if err := s.mqClient.PublishSiteEvent(event); err != nil {
			log.Printf("Warning: Failed to publish site created event for site %s: %v", submission.ID, err)
		}
	} else {
		log.Println("RabbitMQ client is not initialized. Skipping message publication.")
	}

	return submission, nil
}

// ListJoined fetches all users and all submissions and joins each
// submission to its submitter's current display name by normalized email.
// A submission whose email matches no user is shown with the email itself
// as the name rather than dropped.
func (s *SiteService) ListJoined() (*SiteList, error) {
	users, err := s.userRepo.GetAll()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to fetch users: %w", ErrFetchFailure, err)
	}

	nameByEmail := make(map[string]string, len(users))
	for _, user := range users {
		email := models.NormalizeEmail(user.Email)
		if email != "" && user.Name != "" {
			nameByEmail[email] = user.Name
		}
	}

	locations, err := s.locationRepo.GetAll()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to fetch locations: %w", ErrFetchFailure, err)
	}

	list := &SiteList{Rows: make([]SiteRow, 0, len(locations))}
	for _, loc := range locations {
		email := models.NormalizeEmail(loc.SubmittedByEmail)
		name, ok := nameByEmail[email]
		if !ok {
			name = email // unknown submitter is represented by the email string
		}

		switch models.NormalizeStatus(loc.Status) {
		case models.StatusPending:
			list.PendingTotalTrees += loc.NumberOfTrees
		case models.StatusDone:
			list.DoneTotalTrees += loc.NumberOfTrees
		}

		list.Rows = append(list.Rows, SiteRow{
			ID:               loc.ID,
			Latitude:         loc.Latitude,
			Longitude:        loc.Longitude,
			NumberOfTrees:    loc.NumberOfTrees,
			Note:             loc.Note,
			Status:           loc.Status,
			SubmitterName:    name,
			SubmittedByEmail: email,
			UID:              loc.UID,
			Timestamp:        loc.Timestamp,
			MapsURL:          fmt.Sprintf("https://www.google.com/maps/search/?api=1&query=%v,%v", loc.Latitude, loc.Longitude),
		})
	}

	return list, nil
}

// UpdateStatus applies the administrative pending/done transition to an
// existing submission. The submitting app itself never calls this.
func (s *SiteService) UpdateStatus(id, status string) error {
	status = models.NormalizeStatus(status)
	if status != models.StatusPending && status != models.StatusDone {
		return fmt.Errorf("%w: invalid site status: %s", ErrValidation, status)
	}

	if err := s.locationRepo.UpdateStatus(id, status); err != nil {
		return fmt.Errorf("%w: site with ID %s", ErrNotFound, id)
	}
	return nil
}
