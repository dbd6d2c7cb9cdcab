package models

import (
	"strings"
	"time"
)

// User represents a registered contributor of the foundation.
// Email is the identity key, matched case- and whitespace-insensitively.
// There is deliberately no unique index on it: registration approximates
// uniqueness with a check-then-insert, so two concurrent registrations of
// the same email can race and both land. A storage-level constraint would
// change that documented behavior.
type User struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Name      string    `json:"name" gorm:"type:varchar(100)" validate:"required,min=1,max=100"`
	Email     string    `json:"email" gorm:"index;type:varchar(255)" validate:"required,email"`
	CreatedAt time.Time `json:"createdAt"`
}

// NormalizeEmail trims surrounding whitespace and lowercases an email so
// that "A@B.com " and "a@b.com" compare equal. Every identity comparison
// in the system goes through this.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
