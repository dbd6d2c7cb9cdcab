package models

import "time"

// Session is one logged-in session. A row is created at login and deleted at
// logout; the row's existence is what "logged in" means, so sessions survive
// process restarts. The email is stored normalized.
type Session struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Email     string    `json:"email" gorm:"type:varchar(255)"`
	CreatedAt time.Time `json:"createdAt"`
}
