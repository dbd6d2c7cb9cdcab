package services

import (
	"fmt"
	"sort"

	"github.com/rajkumardasgupta/btf-app-login/internal/models"
	"github.com/rajkumardasgupta/btf-app-login/internal/repositories"
)

// memberSinceLayout matches the calendar-date label shown next to each
// leaderboard entry, e.g. "Tue Apr 01 2025".
const memberSinceLayout = "Mon Jan 02 2006"

// LeaderboardRow is one ranked entry: a contributor with at least one
// completed plantation.
type LeaderboardRow struct {
	Rank        int    `json:"rank"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	TotalTrees  int    `json:"totalTrees"`
	MemberSince string `json:"memberSince"`
	IsYou       bool   `json:"isYou"`
}

// LeaderboardService aggregates completed plantations per contributor.
type LeaderboardService struct {
	locationRepo repositories.LocationRepository
	userRepo     repositories.UserRepository
}

// NewLeaderboardService creates a new LeaderboardService.
func NewLeaderboardService(locationRepo repositories.LocationRepository, userRepo repositories.UserRepository) *LeaderboardService {
	return &LeaderboardService{
		locationRepo: locationRepo,
		userRepo:     userRepo,
	}
}

// Build runs the full aggregation pipeline from scratch:
//
//  1. Sum tree counts per normalized submitter email over submissions whose
//     normalized status is done. Records with any other status, or with an
//     empty submitter email, contribute nothing.
//  2. Build a normalized-email map of user names and join dates. A user
//     with a zero join date is labeled "Unknown".
//  3. Produce one row per email present in the totals; the name falls back
//     to the email itself when no user record matches. Contributors with
//     zero done submissions never appear, registered or not.
//  4. Sort by total descending. Ties keep aggregation insertion order.
//
// The currentEmail argument marks the caller's own row.
func (s *LeaderboardService) Build(currentEmail string) ([]LeaderboardRow, error) {
	locations, err := s.locationRepo.GetAll()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to fetch locations: %w", ErrFetchFailure, err)
	}

	totals := make(map[string]int)
	// First-seen order of emails, so that equal totals keep a stable,
	// reproducible order after the sort.
	order := make([]string, 0)
	for _, loc := range locations {
		email := models.NormalizeEmail(loc.SubmittedByEmail)
		if email == "" || models.NormalizeStatus(loc.Status) != models.StatusDone {
			continue
		}
		if _, seen := totals[email]; !seen {
			order = append(order, email)
		}
		totals[email] += loc.NumberOfTrees
	}

	users, err := s.userRepo.GetAll()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to fetch users: %w", ErrFetchFailure, err)
	}

	type userInfo struct {
		name        string
		memberSince string
	}
	infoByEmail := make(map[string]userInfo, len(users))
	for _, user := range users {
		email := models.NormalizeEmail(user.Email)
		if email == "" || user.Name == "" {
			continue
		}
		memberSince := "Unknown"
		if !user.CreatedAt.IsZero() {
			memberSince = user.CreatedAt.Format(memberSinceLayout)
		}
		infoByEmail[email] = userInfo{name: user.Name, memberSince: memberSince}
	}

	normalizedCurrent := models.NormalizeEmail(currentEmail)
	rows := make([]LeaderboardRow, 0, len(order))
	for _, email := range order {
		info, ok := infoByEmail[email]
		if !ok {
			info = userInfo{name: email, memberSince: "Unknown"}
		}
		rows = append(rows, LeaderboardRow{
			Name:        info.name,
			Email:       email,
			TotalTrees:  totals[email],
			MemberSince: info.memberSince,
			IsYou:       normalizedCurrent != "" && email == normalizedCurrent,
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].TotalTrees > rows[j].TotalTrees
	})
	for i := range rows {
		rows[i].Rank = i + 1
	}

	return rows, nil
}
