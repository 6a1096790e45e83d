package access

import (
	"context"
	"time"
)

// DailyActivity is one calendar day of the activity rollup.
type DailyActivity struct {
	Date          string `json:"date"` // YYYY-MM-DD, UTC
	UniqueUsers   int    `json:"unique_users"`
	TotalAccesses int    `json:"total_accesses"`
}

// ActivityReport covers the last N UTC calendar days, one entry per day with
// no gaps. Window totals are computed over the whole window, not summed from
// the daily entries, so a user active on several days counts once.
type ActivityReport struct {
	PeriodDays       int             `json:"period_days"`
	StartDate        string          `json:"start_date"`
	EndDate          string          `json:"end_date"`
	DailyStats       []DailyActivity `json:"daily_stats"`
	TotalUniqueUsers int             `json:"total_unique_users"`
	TotalAccesses    int             `json:"total_accesses"`
}

// WeeklyActivity builds the rollup for the last days UTC calendar days
// ending today. Days with no events are emitted with explicit zeros.
func (s *Store) WeeklyActivity(ctx context.Context, days int) (*ActivityReport, error) {
	if days <= 0 {
		days = 7
	}

	now := time.Now().UTC()
	firstDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).
		AddDate(0, 0, -(days - 1))

	events, err := s.QueryByTimeRange(ctx, FormatTimestamp(firstDay), FormatTimestamp(now))
	if err != nil {
		return nil, err
	}

	type bucket struct {
		users map[string]struct{}
		total int
	}
	byDate := make(map[string]*bucket)
	windowUsers := make(map[string]struct{})
	for _, e := range events {
		if len(e.Timestamp) < 10 {
			continue
		}
		date := e.Timestamp[:10]
		b := byDate[date]
		if b == nil {
			b = &bucket{users: make(map[string]struct{})}
			byDate[date] = b
		}
		b.users[e.AccessingUserID] = struct{}{}
		b.total++
		windowUsers[e.AccessingUserID] = struct{}{}
	}

	daily := make([]DailyActivity, 0, days)
	for d := firstDay; !d.After(now); d = d.AddDate(0, 0, 1) {
		date := d.Format("2006-01-02")
		entry := DailyActivity{Date: date}
		if b := byDate[date]; b != nil {
			entry.UniqueUsers = len(b.users)
			entry.TotalAccesses = b.total
		}
		daily = append(daily, entry)
	}

	return &ActivityReport{
		PeriodDays:       days,
		StartDate:        firstDay.Format("2006-01-02"),
		EndDate:          now.Format("2006-01-02"),
		DailyStats:       daily,
		TotalUniqueUsers: len(windowUsers),
		TotalAccesses:    len(events),
	}, nil
}
