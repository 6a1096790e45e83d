package middleware

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	dbpkg "factify/internal/db"
	httpctx "factify/internal/http/ctx"
)

func setupAuthDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, dbpkg.Migrate(gdb))

	admin := &dbpkg.User{Username: "admin", PasswordHash: "x", IsAdmin: true}
	require.NoError(t, gdb.Create(admin).Error)
	regular := &dbpkg.User{Username: "worker", PasswordHash: "x"}
	require.NoError(t, gdb.Create(regular).Error)

	require.NoError(t, gdb.Create(&dbpkg.APIKey{
		UserID: admin.ID, Name: "admin-key", Key: "admin-token", Active: true,
	}).Error)
	require.NoError(t, gdb.Create(&dbpkg.APIKey{
		UserID: regular.ID, Name: "user-key", Key: "user-token", Active: true,
		SubjectUserID: "alice",
	}).Error)
	require.NoError(t, gdb.Create(&dbpkg.APIKey{
		UserID: regular.ID, Name: "dead-key", Key: "inactive-token", Active: false,
	}).Error)
	return gdb
}

func authedCtx(token string) *fasthttp.RequestCtx {
	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.SetMethod("GET")
	ctx.Request.SetRequestURI("/v1/access/history")
	if token != "" {
		ctx.Request.Header.Set("Authorization", "Bearer "+token)
	}
	return ctx
}

func TestBearerAuth_ValidKeySetsIdentity(t *testing.T) {
	gdb := setupAuthDB(t)

	called := false
	h := BearerAuth(gdb)(func(ctx *fasthttp.RequestCtx) {
		called = true
		user, ok := httpctx.UserFromCtx(ctx)
		require.True(t, ok)
		assert.Equal(t, "worker", user.Username)

		subject, ok := httpctx.SubjectFromCtx(ctx)
		require.True(t, ok)
		assert.Equal(t, "alice", subject)
	})

	h(authedCtx("user-token"))
	assert.True(t, called)
}

func TestBearerAuth_RejectsMissingAndInactiveKeys(t *testing.T) {
	gdb := setupAuthDB(t)
	h := BearerAuth(gdb)(func(ctx *fasthttp.RequestCtx) {
		t.Fatal("handler must not run")
	})

	for _, token := range []string{"", "unknown-token", "inactive-token"} {
		ctx := authedCtx(token)
		h(ctx)
		assert.Equal(t, fasthttp.StatusUnauthorized, ctx.Response.StatusCode(), "token %q", token)
	}
}

func TestOptionalBearerAuth_AnonymousPassesThrough(t *testing.T) {
	gdb := setupAuthDB(t)

	called := false
	h := OptionalBearerAuth(gdb)(func(ctx *fasthttp.RequestCtx) {
		called = true
		_, ok := httpctx.SubjectFromCtx(ctx)
		assert.False(t, ok)
	})

	h(authedCtx(""))
	assert.True(t, called)
}

func TestRequireAdmin(t *testing.T) {
	gdb := setupAuthDB(t)

	adminCalled := false
	h := BearerAuth(gdb)(RequireAdmin(func(ctx *fasthttp.RequestCtx) {
		adminCalled = true
	}))

	ctx := authedCtx("admin-token")
	h(ctx)
	assert.True(t, adminCalled)

	ctx = authedCtx("user-token")
	h(ctx)
	assert.Equal(t, fasthttp.StatusForbidden, ctx.Response.StatusCode())
}
