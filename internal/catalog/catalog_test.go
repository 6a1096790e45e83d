package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"factify/internal/db"
	"factify/internal/errs"
)

func setupTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))
	return New(gdb, zap.NewNop())
}

func TestCatalog_RegisterAssignsDefaults(t *testing.T) {
	cat := setupTestCatalog(t)
	ctx := context.Background()

	doc := &db.Document{Title: "Intro to Go", OwnerUserID: "alice"}
	require.NoError(t, cat.Register(ctx, doc))

	assert.NotEmpty(t, doc.ID)
	assert.NotEmpty(t, doc.UploadedAt)

	got, err := cat.Get(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "Intro to Go", got.Title)
	assert.Equal(t, "alice", got.OwnerUserID)
}

func TestCatalog_RegisterWithoutOwnerIsAnonymous(t *testing.T) {
	cat := setupTestCatalog(t)

	doc := &db.Document{Title: "orphan"}
	require.NoError(t, cat.Register(context.Background(), doc))
	assert.Equal(t, db.AnonymousUserID, doc.OwnerUserID)
}

func TestCatalog_GetNotFound(t *testing.T) {
	cat := setupTestCatalog(t)

	_, err := cat.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestCatalog_SearchIsCaseInsensitive(t *testing.T) {
	cat := setupTestCatalog(t)
	ctx := context.Background()

	require.NoError(t, cat.Register(ctx, &db.Document{
		ID: "d1", OwnerUserID: "alice", Title: "Machine Learning Basics",
	}))
	require.NoError(t, cat.Register(ctx, &db.Document{
		ID: "d2", OwnerUserID: "bob", Title: "Gardening",
		FormattedText: "nothing about machine learning here... wait",
	}))
	require.NoError(t, cat.Register(ctx, &db.Document{
		ID: "d3", OwnerUserID: "carol", Title: "Cooking",
	}))

	docs, err := cat.Search(ctx, "MACHINE learning", 10)
	require.NoError(t, err)
	require.Len(t, docs, 2)

	ids := []string{docs[0].ID, docs[1].ID}
	assert.Contains(t, ids, "d1")
	assert.Contains(t, ids, "d2")
}

func TestCatalog_SearchLimit(t *testing.T) {
	cat := setupTestCatalog(t)
	ctx := context.Background()

	for i := 0; i < 8; i++ {
		require.NoError(t, cat.Register(ctx, &db.Document{
			OwnerUserID: "alice", Title: "shared topic",
		}))
	}

	docs, err := cat.Search(ctx, "shared", 3)
	require.NoError(t, err)
	assert.Len(t, docs, 3)
}

func TestCatalog_DistinctOwnersExcludesAnonymous(t *testing.T) {
	cat := setupTestCatalog(t)
	ctx := context.Background()

	require.NoError(t, cat.Register(ctx, &db.Document{OwnerUserID: "alice", Title: "a1"}))
	require.NoError(t, cat.Register(ctx, &db.Document{OwnerUserID: "alice", Title: "a2"}))
	require.NoError(t, cat.Register(ctx, &db.Document{OwnerUserID: "bob", Title: "b1"}))
	require.NoError(t, cat.Register(ctx, &db.Document{OwnerUserID: db.AnonymousUserID, Title: "x"}))

	owners, err := cat.DistinctOwners(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"alice", "bob"}, owners)
}
