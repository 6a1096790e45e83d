// Package incentive aggregates access events into per-owner monthly scores.
// Aggregation is a pure function of the stored events: recomputing a period
// always converges to the same summary, so writes are plain last-write-wins
// upserts with no versioning.
package incentive

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"factify/internal/db"
	"factify/internal/errs"
	"factify/internal/metrics"
)

// Scoring rule: every access is worth one point, every distinct accessing
// user adds a five point bonus.
const (
	basePointsPerAccess      = 1
	bonusPointsPerUniqueUser = 5
)

var periodRe = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// EventSource is the slice of the access store the aggregator reads from.
type EventSource interface {
	QueryByOwnerAndPeriod(ctx context.Context, ownerUserID, startTS, endTS string) ([]db.AccessEvent, error)
}

// OwnerSource lists the document owners eligible for scoring.
type OwnerSource interface {
	DistinctOwners(ctx context.Context) ([]string, error)
}

// DocumentDetail is the per-document breakdown inside a summary.
type DocumentDetail struct {
	AccessCount int64 `json:"access_count"`
	UniqueUsers int64 `json:"unique_users"`
}

// Summary is the computed incentive result for one (owner, period) pair.
// A period with no events yields an all-zero summary, not an error.
type Summary struct {
	OwnerUserID           string                    `json:"owner_user_id"`
	Period                string                    `json:"period"`
	TotalAccessCount      int64                     `json:"total_access_count"`
	UniqueUsersCount      int64                     `json:"unique_users_count"`
	TotalIncentivePoints  int64                     `json:"total_incentive_points"`
	DocumentAccessDetails map[string]DocumentDetail `json:"document_access_details"`
}

// BatchResult reports a batch recompute run.
type BatchResult struct {
	Period    string `json:"period"`
	Owners    int    `json:"owners"`
	Processed int    `json:"processed"`
	Failed    int    `json:"failed"`
}

type Aggregator struct {
	events EventSource
	owners OwnerSource
	db     *gorm.DB
	log    *zap.Logger
}

func NewAggregator(events EventSource, owners OwnerSource, gdb *gorm.DB, log *zap.Logger) *Aggregator {
	return &Aggregator{events: events, owners: owners, db: gdb, log: log}
}

// CurrentPeriod returns the YYYY-MM bucket for the current UTC month.
func CurrentPeriod() string {
	return time.Now().UTC().Format("2006-01")
}

// ValidatePeriod rejects period strings not in YYYY-MM form at the boundary,
// before any aggregation work happens.
func ValidatePeriod(period string) error {
	if !periodRe.MatchString(period) {
		return fmt.Errorf("%w: %q", errs.ErrInvalidPeriod, period)
	}
	return nil
}

// PeriodRange returns the inclusive timestamp-string bounds for a period.
// The upper bound is syntactically fixed at day 31 regardless of month
// length; as a lexicographic filter this is harmless since no valid
// timestamp exceeds day 31, and it is kept as-is to preserve the historical
// boundary behavior.
func PeriodRange(period string) (startTS, endTS string) {
	return period + "-01T00:00:00", period + "-31T23:59:59"
}

// Calculate fetches the owner's events for the period and reduces them to a
// summary. It never mutates stored state.
func (a *Aggregator) Calculate(ctx context.Context, ownerUserID, period string) (*Summary, error) {
	if err := ValidatePeriod(period); err != nil {
		return nil, err
	}

	startTS, endTS := PeriodRange(period)
	events, err := a.events.QueryByOwnerAndPeriod(ctx, ownerUserID, startTS, endTS)
	if err != nil {
		return nil, err
	}

	uniqueUsers := make(map[string]struct{}, len(events))
	perDoc := make(map[string]map[string]struct{})
	perDocCount := make(map[string]int64)
	for _, e := range events {
		uniqueUsers[e.AccessingUserID] = struct{}{}
		if perDoc[e.AccessedDocumentID] == nil {
			perDoc[e.AccessedDocumentID] = make(map[string]struct{})
		}
		perDoc[e.AccessedDocumentID][e.AccessingUserID] = struct{}{}
		perDocCount[e.AccessedDocumentID]++
	}

	details := make(map[string]DocumentDetail, len(perDoc))
	for docID, users := range perDoc {
		details[docID] = DocumentDetail{
			AccessCount: perDocCount[docID],
			UniqueUsers: int64(len(users)),
		}
	}

	total := int64(len(events))
	unique := int64(len(uniqueUsers))

	return &Summary{
		OwnerUserID:           ownerUserID,
		Period:                period,
		TotalAccessCount:      total,
		UniqueUsersCount:      unique,
		TotalIncentivePoints:  total*basePointsPerAccess + unique*bonusPointsPerUniqueUser,
		DocumentAccessDetails: details,
	}, nil
}

// Save upserts the summary keyed by (owner, period). Concurrent saves for
// one key are last-write-wins; no prior versions are retained.
func (a *Aggregator) Save(ctx context.Context, s *Summary) error {
	details := datatypes.JSONMap{}
	for docID, d := range s.DocumentAccessDetails {
		details[docID] = map[string]any{
			"access_count": d.AccessCount,
			"unique_users": d.UniqueUsers,
		}
	}

	row := db.IncentiveSummary{
		OwnerUserID:           s.OwnerUserID,
		Period:                s.Period,
		TotalAccessCount:      s.TotalAccessCount,
		UniqueUsersCount:      s.UniqueUsersCount,
		TotalIncentivePoints:  s.TotalIncentivePoints,
		DocumentAccessDetails: details,
	}

	var existing db.IncentiveSummary
	err := a.db.WithContext(ctx).
		Where("owner_user_id = ? AND period = ?", s.OwnerUserID, s.Period).
		First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		err = a.db.WithContext(ctx).Create(&row).Error
	} else if err == nil {
		err = a.db.WithContext(ctx).Model(&existing).Updates(map[string]any{
			"total_access_count":      row.TotalAccessCount,
			"unique_users_count":      row.UniqueUsersCount,
			"total_incentive_points":  row.TotalIncentivePoints,
			"document_access_details": row.DocumentAccessDetails,
		}).Error
	}
	if err != nil {
		return fmt.Errorf("%w: %v", errs.ErrStoreUnavailable, err)
	}
	return nil
}

// LoadSaved returns the stored summary for (owner, period), or ErrNotFound
// if no recompute has ever run for that key.
func (a *Aggregator) LoadSaved(ctx context.Context, ownerUserID, period string) (*db.IncentiveSummary, error) {
	if err := ValidatePeriod(period); err != nil {
		return nil, err
	}
	var row db.IncentiveSummary
	err := a.db.WithContext(ctx).
		Where("owner_user_id = ? AND period = ?", ownerUserID, period).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrStoreUnavailable, err)
	}
	return &row, nil
}

// RecalculateAll runs calculate-then-save for every known document owner.
// Per-owner failures are logged and counted; one bad owner never halts the
// batch.
func (a *Aggregator) RecalculateAll(ctx context.Context, period string) (*BatchResult, error) {
	if err := ValidatePeriod(period); err != nil {
		return nil, err
	}

	owners, err := a.owners.DistinctOwners(ctx)
	if err != nil {
		return nil, err
	}

	res := &BatchResult{Period: period, Owners: len(owners)}
	for _, owner := range owners {
		summary, err := a.Calculate(ctx, owner, period)
		if err == nil {
			err = a.Save(ctx, summary)
		}
		if err != nil {
			res.Failed++
			metrics.RecomputeRuns.WithLabelValues("failed").Inc()
			a.log.Warn("incentive recompute failed",
				zap.String("owner_user_id", owner),
				zap.String("period", period),
				zap.Error(err))
			continue
		}
		res.Processed++
		metrics.RecomputeRuns.WithLabelValues("ok").Inc()
	}

	a.log.Info("incentive batch recompute finished",
		zap.String("period", period),
		zap.Int("owners", res.Owners),
		zap.Int("processed", res.Processed),
		zap.Int("failed", res.Failed))
	return res, nil
}
