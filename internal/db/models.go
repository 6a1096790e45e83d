package db

import (
	"time"

	"gorm.io/datatypes"
)

// AccessType values for AccessEvent. The search flow only produces
// search_result today; the column is an open enumeration so later access
// types (view, download) need no schema change.
const (
	AccessTypeSearchResult = "search_result"
)

// AnonymousUserID is the sentinel identity attached to unauthenticated
// searches. It is excluded from incentive ownership but its searches are
// still recorded.
const AnonymousUserID = "anonymous"

// AccessEvent is one recorded instance of a user encountering another user's
// document via search. Rows are append-only: created once by the recorder,
// never updated.
type AccessEvent struct {
	ID uint `gorm:"primaryKey" json:"-"`

	CreatedAt time.Time `json:"-"`

	// TransactionID is an opaque unique id generated at write time.
	TransactionID string `gorm:"uniqueIndex;size:64;not null" json:"transaction_id"`

	// Timestamp is the event time as an ISO-8601 UTC string with a fixed
	// six-digit fraction ("2006-01-02T15:04:05.000000"). Kept as a string
	// so that period filters are plain lexicographic range comparisons;
	// all events from one search call share one value.
	Timestamp string `gorm:"index;size:32;not null" json:"timestamp"`

	AccessedDocumentID string `gorm:"index;size:64;not null" json:"accessed_document_id"`
	AccessingUserID    string `gorm:"index;size:64;not null" json:"accessing_user_id"`
	DocumentOwnerID    string `gorm:"index;size:64;not null" json:"document_owner_id"`

	// SearchQuery is the raw query string exactly as submitted.
	SearchQuery string `gorm:"size:512" json:"search_query"`

	// SearchRank is the 1-based position of the document in the original,
	// unfiltered result list for that query.
	SearchRank int `gorm:"not null" json:"search_rank"`

	AccessType string `gorm:"size:32;not null" json:"access_type"`
}

// IncentiveSummary stores the aggregated score for one (document owner,
// calendar month) pair. Filled by the incentive aggregator; writes are
// unconditional upserts keyed by the unique index, so recomputation
// replaces rather than appends.
type IncentiveSummary struct {
	ID uint `gorm:"primaryKey" json:"-"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"updated_at"`

	OwnerUserID string `gorm:"uniqueIndex:idx_incentive_summary_unique,priority:1;size:64;not null" json:"owner_user_id"`
	Period      string `gorm:"uniqueIndex:idx_incentive_summary_unique,priority:2;size:8;not null" json:"period"` // YYYY-MM

	TotalAccessCount     int64 `gorm:"not null" json:"total_access_count"`
	UniqueUsersCount     int64 `gorm:"not null" json:"unique_users_count"`
	TotalIncentivePoints int64 `gorm:"not null" json:"total_incentive_points"`

	// DocumentAccessDetails maps document id to its per-period breakdown
	// ({access_count, unique_users}).
	DocumentAccessDetails datatypes.JSONMap `gorm:"type:json" json:"document_access_details"`
}

// Document is the catalog row for an ingested document. Only metadata lives
// here; file extraction and the full-text index are external concerns. User
// and document ids are opaque strings from the identity provider and are not
// enforced as foreign keys.
type Document struct {
	ID string `gorm:"primaryKey;size:64" json:"id"`

	CreatedAt time.Time `json:"-"`

	OwnerUserID string `gorm:"index;size:64;not null" json:"owner_user_id"`

	Title       string `gorm:"size:255" json:"title"`
	Description string `gorm:"size:1024" json:"description"`
	FileName    string `gorm:"size:255" json:"file_name"`
	FileType    string `gorm:"size:32" json:"file_type"`

	// FormattedText is the cleaned extracted text, stored for the naive
	// catalog search.
	FormattedText string `gorm:"type:text" json:"formatted_text"`

	UploadedAt string `gorm:"size:32" json:"uploaded_at"`
}
