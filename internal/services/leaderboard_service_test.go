package services_test

import (
	"testing"
	"time"

	"github.com/rajkumardasgupta/btf-app-login/internal/models"
	"github.com/rajkumardasgupta/btf-app-login/internal/repositories"
	"github.com/rajkumardasgupta/btf-app-login/internal/services"

	"github.com/stretchr/testify/assert"
)

func seedLocations(t *testing.T, repo *repositories.MockLocationRepository, locations []models.LocationSubmission) {
	t.Helper()
	for i := range locations {
		assert.NoError(t, repo.Create(&locations[i]))
	}
}

func TestLeaderboard_CountsOnlyDoneSubmissions(t *testing.T) {
	locationRepo := repositories.NewMockLocationRepository()
	mockUsers := new(MockUserRepository)
	svc := services.NewLeaderboardService(locationRepo, mockUsers)

	seedLocations(t, locationRepo, []models.LocationSubmission{
		{SubmittedByEmail: "a@x.com", NumberOfTrees: 5, Status: "done"},
		{SubmittedByEmail: "a@x.com", NumberOfTrees: 3, Status: "pending"},
		{SubmittedByEmail: "B@X.com", NumberOfTrees: 10, Status: "done"},
	})
	mockUsers.On("GetAll").Return([]models.User{
		{Email: "a@x.com", Name: "Alice", CreatedAt: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
		{Email: "b@x.com", Name: "Bob", CreatedAt: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)},
	}, nil).Once()

	rows, err := svc.Build("")
	assert.NoError(t, err)
	assert.Len(t, rows, 2)
	assert.Equal(t, "Bob", rows[0].Name)
	assert.Equal(t, 10, rows[0].TotalTrees)
	assert.Equal(t, 1, rows[0].Rank)
	assert.Equal(t, "Alice", rows[1].Name)
	assert.Equal(t, 5, rows[1].TotalTrees)
	assert.Equal(t, 2, rows[1].Rank)
	mockUsers.AssertExpectations(t)
}

func TestLeaderboard_StatusAndEmailNormalization(t *testing.T) {
	locationRepo := repositories.NewMockLocationRepository()
	mockUsers := new(MockUserRepository)
	svc := services.NewLeaderboardService(locationRepo, mockUsers)

	seedLocations(t, locationRepo, []models.LocationSubmission{
		{SubmittedByEmail: " Carol@X.com ", NumberOfTrees: 2, Status: " DONE "},
		{SubmittedByEmail: "carol@x.com", NumberOfTrees: 4, Status: "done"},
		{SubmittedByEmail: "", NumberOfTrees: 100, Status: "done"}, // no submitter: excluded
		{SubmittedByEmail: "carol@x.com", NumberOfTrees: 9, Status: "cancelled"},
	})
	mockUsers.On("GetAll").Return([]models.User{
		{Email: "CAROL@x.com", Name: "Carol", CreatedAt: time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC)},
	}, nil).Once()

	rows, err := svc.Build("")
	assert.NoError(t, err)
	assert.Len(t, rows, 1)
	assert.Equal(t, "Carol", rows[0].Name)
	assert.Equal(t, 6, rows[0].TotalTrees)
	assert.Equal(t, "carol@x.com", rows[0].Email)
}

func TestLeaderboard_PendingOnlySubmitterNeverAppears(t *testing.T) {
	locationRepo := repositories.NewMockLocationRepository()
	mockUsers := new(MockUserRepository)
	svc := services.NewLeaderboardService(locationRepo, mockUsers)

	seedLocations(t, locationRepo, []models.LocationSubmission{
		{SubmittedByEmail: "pending@x.com", NumberOfTrees: 50, Status: "pending"},
	})
	// Registered with zero done submissions: also absent.
	mockUsers.On("GetAll").Return([]models.User{
		{Email: "pending@x.com", Name: "Pat"},
		{Email: "registered@x.com", Name: "Reg"},
	}, nil).Once()

	rows, err := svc.Build("")
	assert.NoError(t, err)
	assert.Empty(t, rows)
}

func TestLeaderboard_NameAndJoinDateFallbacks(t *testing.T) {
	locationRepo := repositories.NewMockLocationRepository()
	mockUsers := new(MockUserRepository)
	svc := services.NewLeaderboardService(locationRepo, mockUsers)

	seedLocations(t, locationRepo, []models.LocationSubmission{
		{SubmittedByEmail: "ghost@x.com", NumberOfTrees: 7, Status: "done"},
		{SubmittedByEmail: "nodate@x.com", NumberOfTrees: 3, Status: "done"},
	})
	mockUsers.On("GetAll").Return([]models.User{
		{Email: "nodate@x.com", Name: "No Date"}, // zero CreatedAt
	}, nil).Once()

	rows, err := svc.Build("")
	assert.NoError(t, err)
	assert.Len(t, rows, 2)

	// No matching user record: the email itself stands in for the name.
	assert.Equal(t, "ghost@x.com", rows[0].Name)
	assert.Equal(t, "Unknown", rows[0].MemberSince)

	assert.Equal(t, "No Date", rows[1].Name)
	assert.Equal(t, "Unknown", rows[1].MemberSince)
}

func TestLeaderboard_SortDescendingWithStableTies(t *testing.T) {
	locationRepo := repositories.NewMockLocationRepository()
	mockUsers := new(MockUserRepository)
	svc := services.NewLeaderboardService(locationRepo, mockUsers)

	seedLocations(t, locationRepo, []models.LocationSubmission{
		{SubmittedByEmail: "first@x.com", NumberOfTrees: 5, Status: "done"},
		{SubmittedByEmail: "second@x.com", NumberOfTrees: 5, Status: "done"},
		{SubmittedByEmail: "top@x.com", NumberOfTrees: 8, Status: "done"},
	})
	mockUsers.On("GetAll").Return([]models.User{}, nil).Once()

	rows, err := svc.Build("")
	assert.NoError(t, err)
	assert.Len(t, rows, 3)
	for i := 1; i < len(rows); i++ {
		assert.GreaterOrEqual(t, rows[i-1].TotalTrees, rows[i].TotalTrees)
	}
	// Equal totals keep first-seen aggregation order.
	assert.Equal(t, "top@x.com", rows[0].Email)
	assert.Equal(t, "first@x.com", rows[1].Email)
	assert.Equal(t, "second@x.com", rows[2].Email)
}

func TestLeaderboard_MarksCurrentUser(t *testing.T) {
	locationRepo := repositories.NewMockLocationRepository()
	mockUsers := new(MockUserRepository)
	svc := services.NewLeaderboardService(locationRepo, mockUsers)

	seedLocations(t, locationRepo, []models.LocationSubmission{
		{SubmittedByEmail: "me@x.com", NumberOfTrees: 1, Status: "done"},
		{SubmittedByEmail: "other@x.com", NumberOfTrees: 2, Status: "done"},
	})
	mockUsers.On("GetAll").Return([]models.User{}, nil).Once()

	rows, err := svc.Build(" ME@X.com ")
	assert.NoError(t, err)
	assert.Len(t, rows, 2)
	assert.False(t, rows[0].IsYou)
	assert.True(t, rows[1].IsYou)
}
