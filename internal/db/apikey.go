package db

import (
	"time"
)

// APIKey is a bearer token for calling the service. Each key belongs to an
// operator user and carries the external identity it acts as: searches
// authenticated with the key are recorded under SubjectUserID.
type APIKey struct {
	ID uint `gorm:"primaryKey"`

	CreatedAt time.Time
	UpdatedAt time.Time

	// UserID links this key to the operator user who owns it.
	UserID uint `gorm:"index;not null"`

	// Name is a user-friendly identifier for this key (e.g. "webapp").
	Name string `gorm:"size:128;not null"`

	// Key is the actual bearer token value.
	Key string `gorm:"uniqueIndex;size:255;not null"`

	// SubjectUserID is the external identity-provider user id this key acts
	// as. Empty means the key authenticates the operator only and searches
	// made with it are recorded as anonymous.
	SubjectUserID string `gorm:"index;size:64"`

	// Active indicates whether this key is currently enabled.
	Active bool `gorm:"default:true"`

	// User is the owner of this API key.
	User User `gorm:"foreignKey:UserID"`
}
