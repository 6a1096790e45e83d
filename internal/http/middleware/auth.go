package middleware

import (
	"bytes"
	"strings"

	"github.com/valyala/fasthttp"
	"gorm.io/gorm"

	dbpkg "factify/internal/db"
	httpctx "factify/internal/http/ctx"
)

const bearerPrefix = "Bearer "

// lookupKey resolves a bearer token to an active API key, or nil.
func lookupKey(db *gorm.DB, ctx *fasthttp.RequestCtx) (*dbpkg.APIKey, bool) {
	auth := ctx.Request.Header.Peek("Authorization")
	if !bytes.HasPrefix(auth, []byte(bearerPrefix)) {
		return nil, false
	}
	token := strings.TrimSpace(string(auth[len(bearerPrefix):]))
	if token == "" {
		return nil, false
	}

	var apiKey dbpkg.APIKey
	if err := db.Where("key = ? AND active = ?", token, true).Preload("User").First(&apiKey).Error; err != nil {
		return nil, false
	}
	return &apiKey, true
}

// BearerAuth validates Bearer tokens against API keys in the database and
// rejects requests without a valid key.
func BearerAuth(db *gorm.DB) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			apiKey, ok := lookupKey(db, ctx)
			if !ok {
				ctx.SetStatusCode(fasthttp.StatusUnauthorized)
				ctx.SetBodyString("missing or invalid bearer token")
				return
			}

			httpctx.SetAPIKey(ctx, apiKey)
			httpctx.SetUser(ctx, &apiKey.User)
			if apiKey.SubjectUserID != "" {
				httpctx.SetSubject(ctx, apiKey.SubjectUserID)
			}
			next(ctx)
		}
	}
}

// OptionalBearerAuth resolves a bearer token when present but lets
// unauthenticated requests through. Used by the search endpoint, which
// serves anonymous callers and records their accesses under the anonymous
// sentinel.
func OptionalBearerAuth(db *gorm.DB) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			if apiKey, ok := lookupKey(db, ctx); ok {
				httpctx.SetAPIKey(ctx, apiKey)
				httpctx.SetUser(ctx, &apiKey.User)
				if apiKey.SubjectUserID != "" {
					httpctx.SetSubject(ctx, apiKey.SubjectUserID)
				}
			}
			next(ctx)
		}
	}
}

// RequireAdmin allows only requests authenticated with a key owned by an
// admin user. Must run after BearerAuth.
func RequireAdmin(next fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		user, ok := httpctx.UserFromCtx(ctx)
		if !ok || user == nil || !user.IsAdmin {
			ctx.SetStatusCode(fasthttp.StatusForbidden)
			ctx.SetBodyString("admin access required")
			return
		}
		next(ctx)
	}
}
