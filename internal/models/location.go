package models

import (
	"strings"
	"time"
)

// Submission statuses. A submission is created as pending; the flip to done
// is an administrative action, never something the submitting app does.
const (
	StatusPending = "pending"
	StatusDone    = "done"
)

// LocationSubmission is one GPS-tagged candidate or completed plantation site.
// SubmittedBy is the display name snapshotted at submission time; it is not
// re-joined when the contributor later renames themselves. UID is the device
// receipt time in Unix milliseconds, used purely as a human-readable task id
// (monotonic-ish, not guaranteed unique).
type LocationSubmission struct {
	ID               string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Latitude         float64   `json:"latitude"`
	Longitude        float64   `json:"longitude"`
	NumberOfTrees    int       `json:"numberOfTrees"`
	Note             string    `json:"note"`
	Status           string    `json:"status" gorm:"type:varchar(20)"`
	SubmittedBy      string    `json:"submittedBy" gorm:"type:varchar(100)"`
	SubmittedByEmail string    `json:"submittedByEmail" gorm:"type:varchar(255)"`
	UID              int64     `json:"u_id" gorm:"column:u_id"`
	Timestamp        time.Time `json:"timestamp"`
}

// NormalizeStatus trims and lowercases a status value before comparison, so
// records written with stray casing or whitespace still bucket correctly.
func NormalizeStatus(status string) string {
	return strings.ToLower(strings.TrimSpace(status))
}
