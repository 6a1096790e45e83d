package db

import (
	"time"
)

// User represents an operator account that can own API keys and call admin
// endpoints. The bootstrap admin user (from env) is created as a row in this
// table on startup. Document owners and searchers are NOT rows here; those
// identities come from the external identity provider and are stored as
// opaque strings on events and documents.
type User struct {
	ID uint `gorm:"primaryKey"`

	CreatedAt time.Time
	UpdatedAt time.Time

	Username     string `gorm:"uniqueIndex;size:64;not null"`
	PasswordHash string `gorm:"size:255;not null"`

	// IsAdmin marks users allowed to run batch recomputation and seeding.
	IsAdmin bool `gorm:"default:false"`
}
