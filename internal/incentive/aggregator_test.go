package incentive

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"factify/internal/access"
	"factify/internal/catalog"
	"factify/internal/db"
	"factify/internal/errs"
)

type fakeEvents struct {
	events []db.AccessEvent
	err    error

	lastOwner string
	lastStart string
	lastEnd   string
}

var _ EventSource = (*fakeEvents)(nil)

func (f *fakeEvents) QueryByOwnerAndPeriod(_ context.Context, owner, start, end string) ([]db.AccessEvent, error) {
	f.lastOwner, f.lastStart, f.lastEnd = owner, start, end
	return append([]db.AccessEvent(nil), f.events...), f.err
}

type fakeOwners struct {
	owners []string
	err    error
}

func (f *fakeOwners) DistinctOwners(_ context.Context) ([]string, error) {
	return f.owners, f.err
}

func eventFor(docID, userID string) db.AccessEvent {
	return db.AccessEvent{
		TransactionID:      fmt.Sprintf("%s-%s", docID, userID),
		Timestamp:          "2025-04-10T12:00:00.000000",
		AccessedDocumentID: docID,
		AccessingUserID:    userID,
		DocumentOwnerID:    "owner",
		AccessType:         db.AccessTypeSearchResult,
	}
}

func TestCalculate_ScoringFormula(t *testing.T) {
	// 10 events across 3 distinct users: 10*1 + 3*5 = 25 points.
	users := []string{"u1", "u2", "u3"}
	events := make([]db.AccessEvent, 0, 10)
	for i := 0; i < 10; i++ {
		e := eventFor("doc-1", users[i%3])
		e.TransactionID = fmt.Sprintf("txn-%d", i)
		events = append(events, e)
	}
	src := &fakeEvents{events: events}
	agg := NewAggregator(src, &fakeOwners{}, nil, zap.NewNop())

	summary, err := agg.Calculate(context.Background(), "owner", "2025-04")
	require.NoError(t, err)

	assert.Equal(t, int64(10), summary.TotalAccessCount)
	assert.Equal(t, int64(3), summary.UniqueUsersCount)
	assert.Equal(t, int64(25), summary.TotalIncentivePoints)
	assert.Equal(t, "owner", summary.OwnerUserID)
	assert.Equal(t, "2025-04", summary.Period)
}

func TestCalculate_PerDocumentBreakdown(t *testing.T) {
	events := []db.AccessEvent{
		eventFor("doc-a", "u1"),
		eventFor("doc-a", "u1"),
		eventFor("doc-a", "u2"),
		eventFor("doc-b", "u3"),
	}
	for i := range events {
		events[i].TransactionID = fmt.Sprintf("txn-%d", i)
	}
	agg := NewAggregator(&fakeEvents{events: events}, &fakeOwners{}, nil, zap.NewNop())

	summary, err := agg.Calculate(context.Background(), "owner", "2025-04")
	require.NoError(t, err)

	require.Len(t, summary.DocumentAccessDetails, 2)
	assert.Equal(t, DocumentDetail{AccessCount: 3, UniqueUsers: 2}, summary.DocumentAccessDetails["doc-a"])
	assert.Equal(t, DocumentDetail{AccessCount: 1, UniqueUsers: 1}, summary.DocumentAccessDetails["doc-b"])
}

func TestCalculate_UsesFixedDay31Bounds(t *testing.T) {
	src := &fakeEvents{}
	agg := NewAggregator(src, &fakeOwners{}, nil, zap.NewNop())

	_, err := agg.Calculate(context.Background(), "owner", "2025-02")
	require.NoError(t, err)

	assert.Equal(t, "owner", src.lastOwner)
	assert.Equal(t, "2025-02-01T00:00:00", src.lastStart)
	assert.Equal(t, "2025-02-31T23:59:59", src.lastEnd)
}

func TestCalculate_ZeroActivitySentinel(t *testing.T) {
	agg := NewAggregator(&fakeEvents{}, &fakeOwners{}, nil, zap.NewNop())

	summary, err := agg.Calculate(context.Background(), "owner", "2099-01")
	require.NoError(t, err)

	assert.Zero(t, summary.TotalAccessCount)
	assert.Zero(t, summary.UniqueUsersCount)
	assert.Zero(t, summary.TotalIncentivePoints)
	assert.Empty(t, summary.DocumentAccessDetails)
}

func TestCalculate_Idempotent(t *testing.T) {
	events := []db.AccessEvent{eventFor("doc-a", "u1"), eventFor("doc-b", "u2")}
	events[1].TransactionID = "txn-b"
	agg := NewAggregator(&fakeEvents{events: events}, &fakeOwners{}, nil, zap.NewNop())

	first, err := agg.Calculate(context.Background(), "owner", "2025-04")
	require.NoError(t, err)
	second, err := agg.Calculate(context.Background(), "owner", "2025-04")
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestCalculate_InvalidPeriod(t *testing.T) {
	agg := NewAggregator(&fakeEvents{}, &fakeOwners{}, nil, zap.NewNop())

	for _, period := range []string{"2025", "2025-13", "202504", "2025-4", "not-a-period", ""} {
		_, err := agg.Calculate(context.Background(), "owner", period)
		assert.ErrorIs(t, err, errs.ErrInvalidPeriod, "period %q", period)
	}
}

func TestCalculate_PropagatesStoreErrors(t *testing.T) {
	agg := NewAggregator(&fakeEvents{err: errs.ErrStoreUnavailable}, &fakeOwners{}, nil, zap.NewNop())

	_, err := agg.Calculate(context.Background(), "owner", "2025-04")
	assert.ErrorIs(t, err, errs.ErrStoreUnavailable)
}

func setupAggregatorDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))
	return gdb
}

func TestSave_UpsertReplacesNotAppends(t *testing.T) {
	gdb := setupAggregatorDB(t)
	agg := NewAggregator(&fakeEvents{}, &fakeOwners{}, gdb, zap.NewNop())
	ctx := context.Background()

	first := &Summary{
		OwnerUserID:          "owner",
		Period:               "2025-04",
		TotalAccessCount:     4,
		UniqueUsersCount:     2,
		TotalIncentivePoints: 14,
		DocumentAccessDetails: map[string]DocumentDetail{
			"doc-a": {AccessCount: 4, UniqueUsers: 2},
		},
	}
	require.NoError(t, agg.Save(ctx, first))

	second := &Summary{
		OwnerUserID:          "owner",
		Period:               "2025-04",
		TotalAccessCount:     10,
		UniqueUsersCount:     3,
		TotalIncentivePoints: 25,
		DocumentAccessDetails: map[string]DocumentDetail{
			"doc-a": {AccessCount: 10, UniqueUsers: 3},
		},
	}
	require.NoError(t, agg.Save(ctx, second))

	var count int64
	require.NoError(t, gdb.Model(&db.IncentiveSummary{}).
		Where("owner_user_id = ? AND period = ?", "owner", "2025-04").
		Count(&count).Error)
	assert.Equal(t, int64(1), count)

	row, err := agg.LoadSaved(ctx, "owner", "2025-04")
	require.NoError(t, err)
	assert.Equal(t, int64(10), row.TotalAccessCount)
	assert.Equal(t, int64(3), row.UniqueUsersCount)
	assert.Equal(t, int64(25), row.TotalIncentivePoints)
}

func TestSave_DistinctKeysCoexist(t *testing.T) {
	gdb := setupAggregatorDB(t)
	agg := NewAggregator(&fakeEvents{}, &fakeOwners{}, gdb, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, agg.Save(ctx, &Summary{OwnerUserID: "owner", Period: "2025-03"}))
	require.NoError(t, agg.Save(ctx, &Summary{OwnerUserID: "owner", Period: "2025-04"}))
	require.NoError(t, agg.Save(ctx, &Summary{OwnerUserID: "other", Period: "2025-04"}))

	var count int64
	require.NoError(t, gdb.Model(&db.IncentiveSummary{}).Count(&count).Error)
	assert.Equal(t, int64(3), count)
}

func TestLoadSaved_NotFound(t *testing.T) {
	gdb := setupAggregatorDB(t)
	agg := NewAggregator(&fakeEvents{}, &fakeOwners{}, gdb, zap.NewNop())

	_, err := agg.LoadSaved(context.Background(), "nobody", "2025-04")
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestRecalculateAll_EndToEnd(t *testing.T) {
	gdb := setupAggregatorDB(t)
	log := zap.NewNop()
	store := access.NewStore(gdb, log)
	cat := catalog.New(gdb, log)
	agg := NewAggregator(store, cat, gdb, log)
	ctx := context.Background()

	require.NoError(t, cat.Register(ctx, &db.Document{ID: "doc-a", OwnerUserID: "alice", Title: "a"}))
	require.NoError(t, cat.Register(ctx, &db.Document{ID: "doc-b", OwnerUserID: "bob", Title: "b"}))
	require.NoError(t, cat.Register(ctx, &db.Document{ID: "doc-x", OwnerUserID: db.AnonymousUserID, Title: "x"}))

	for i := 0; i < 3; i++ {
		e := eventFor("doc-a", fmt.Sprintf("reader-%d", i))
		e.TransactionID = fmt.Sprintf("a-%d", i)
		e.DocumentOwnerID = "alice"
		require.NoError(t, store.Append(ctx, &e))
	}
	e := eventFor("doc-b", "reader-0")
	e.TransactionID = "b-0"
	e.DocumentOwnerID = "bob"
	require.NoError(t, store.Append(ctx, &e))

	result, err := agg.RecalculateAll(ctx, "2025-04")
	require.NoError(t, err)
	assert.Equal(t, 2, result.Owners)
	assert.Equal(t, 2, result.Processed)
	assert.Zero(t, result.Failed)

	alice, err := agg.LoadSaved(ctx, "alice", "2025-04")
	require.NoError(t, err)
	assert.Equal(t, int64(3), alice.TotalAccessCount)
	assert.Equal(t, int64(3), alice.UniqueUsersCount)
	assert.Equal(t, int64(18), alice.TotalIncentivePoints)

	bob, err := agg.LoadSaved(ctx, "bob", "2025-04")
	require.NoError(t, err)
	assert.Equal(t, int64(1), bob.TotalAccessCount)
	assert.Equal(t, int64(6), bob.TotalIncentivePoints)

	// The anonymous sentinel never gets a summary.
	_, err = agg.LoadSaved(ctx, db.AnonymousUserID, "2025-04")
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestRecalculateAll_InvalidPeriod(t *testing.T) {
	agg := NewAggregator(&fakeEvents{}, &fakeOwners{}, nil, zap.NewNop())

	_, err := agg.RecalculateAll(context.Background(), "April 2025")
	assert.ErrorIs(t, err, errs.ErrInvalidPeriod)
}

func TestRecalculateAll_OwnerListFailure(t *testing.T) {
	agg := NewAggregator(&fakeEvents{}, &fakeOwners{err: errors.New("scan failed")}, nil, zap.NewNop())

	_, err := agg.RecalculateAll(context.Background(), "2025-04")
	assert.Error(t, err)
}
