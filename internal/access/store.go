// Package access implements the access-event log: an append-only record of
// which user encountered which other user's document through search, plus the
// query paths the incentive pipeline and the activity endpoints read from.
package access

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"factify/internal/db"
	"factify/internal/errs"
)

// TimestampLayout is the ISO-8601 UTC layout used for event timestamps.
// The fixed six-digit fraction keeps values lexicographically ordered, which
// the owner/period and time-range filters rely on.
const TimestampLayout = "2006-01-02T15:04:05.000000"

// FormatTimestamp renders t in the event timestamp format (UTC).
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// EventStore is the read/write surface of the access-event log. The recorder
// only needs Ping and Append; the aggregator only needs QueryByOwnerAndPeriod.
type EventStore interface {
	// Ping reports whether the backing table is reachable.
	Ping(ctx context.Context) error

	// Append persists one event. It performs no semantic validation; the
	// recorder is responsible for the self-access rule.
	Append(ctx context.Context, event *db.AccessEvent) error

	// QueryByUser returns the accessing user's events, newest first,
	// bounded by limit.
	QueryByUser(ctx context.Context, accessingUserID string, limit int) ([]db.AccessEvent, error)

	// QueryByDocument returns all events for one accessed document,
	// newest first.
	QueryByDocument(ctx context.Context, documentID string) ([]db.AccessEvent, error)

	// QueryByOwnerAndPeriod returns events whose document owner matches and
	// whose timestamp falls in the inclusive [startTS, endTS] string range.
	QueryByOwnerAndPeriod(ctx context.Context, ownerUserID, startTS, endTS string) ([]db.AccessEvent, error)

	// QueryByTimeRange returns all events in the inclusive [startTS, endTS]
	// string range regardless of owner.
	QueryByTimeRange(ctx context.Context, startTS, endTS string) ([]db.AccessEvent, error)
}

// Store is the GORM-backed EventStore.
type Store struct {
	db  *gorm.DB
	log *zap.Logger
}

var _ EventStore = (*Store)(nil)

func NewStore(gdb *gorm.DB, log *zap.Logger) *Store {
	return &Store{db: gdb, log: log}
}

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("%w: %v", errs.ErrStoreUnavailable, err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", errs.ErrStoreUnavailable, err)
	}
	return nil
}

func (s *Store) Append(ctx context.Context, event *db.AccessEvent) error {
	if err := s.db.WithContext(ctx).Create(event).Error; err != nil {
		return fmt.Errorf("%w: %v", errs.ErrStoreUnavailable, err)
	}
	return nil
}

func (s *Store) QueryByUser(ctx context.Context, accessingUserID string, limit int) ([]db.AccessEvent, error) {
	if limit <= 0 {
		limit = 100
	}
	var events []db.AccessEvent
	err := s.db.WithContext(ctx).
		Where("accessing_user_id = ?", accessingUserID).
		Order("timestamp DESC").
		Limit(limit).
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrStoreUnavailable, err)
	}
	return events, nil
}

func (s *Store) QueryByDocument(ctx context.Context, documentID string) ([]db.AccessEvent, error) {
	var events []db.AccessEvent
	err := s.db.WithContext(ctx).
		Where("accessed_document_id = ?", documentID).
		Order("timestamp DESC").
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrStoreUnavailable, err)
	}
	return events, nil
}

func (s *Store) QueryByOwnerAndPeriod(ctx context.Context, ownerUserID, startTS, endTS string) ([]db.AccessEvent, error) {
	var events []db.AccessEvent
	err := s.db.WithContext(ctx).
		Where("document_owner_id = ? AND timestamp BETWEEN ? AND ?", ownerUserID, startTS, endTS).
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrStoreUnavailable, err)
	}
	return events, nil
}

func (s *Store) QueryByTimeRange(ctx context.Context, startTS, endTS string) ([]db.AccessEvent, error) {
	var events []db.AccessEvent
	err := s.db.WithContext(ctx).
		Where("timestamp BETWEEN ? AND ?", startTS, endTS).
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrStoreUnavailable, err)
	}
	return events, nil
}

// DocumentStats summarizes the access history of one document.
type DocumentStats struct {
	DocumentID       string           `json:"document_id"`
	TotalAccessCount int64            `json:"total_access_count"`
	UniqueUsersCount int64            `json:"unique_users_count"`
	RecentEvents     []db.AccessEvent `json:"recent_events"`
}

// statsPreviewLimit caps the raw-event preview on DocumentStats responses.
const statsPreviewLimit = 10

// Stats computes totals, the distinct accessing-user count and a most-recent
// preview for one document.
func (s *Store) Stats(ctx context.Context, documentID string) (*DocumentStats, error) {
	events, err := s.QueryByDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}

	users := make(map[string]struct{}, len(events))
	for _, e := range events {
		users[e.AccessingUserID] = struct{}{}
	}

	preview := events
	if len(preview) > statsPreviewLimit {
		preview = preview[:statsPreviewLimit]
	}

	return &DocumentStats{
		DocumentID:       documentID,
		TotalAccessCount: int64(len(events)),
		UniqueUsersCount: int64(len(users)),
		RecentEvents:     preview,
	}, nil
}
