package ctx

import (
	"github.com/valyala/fasthttp"

	dbpkg "factify/internal/db"
)

const (
	UserKey    = "user"
	APIKeyKey  = "apiKey"
	SubjectKey = "subjectUserID"
)

func SetUser(ctx *fasthttp.RequestCtx, user *dbpkg.User) {
	ctx.SetUserValue(UserKey, user)
}

func UserFromCtx(ctx *fasthttp.RequestCtx) (*dbpkg.User, bool) {
	v := ctx.UserValue(UserKey)
	if v == nil {
		return nil, false
	}
	u, ok := v.(*dbpkg.User)
	return u, ok
}

func SetAPIKey(ctx *fasthttp.RequestCtx, apiKey *dbpkg.APIKey) {
	ctx.SetUserValue(APIKeyKey, apiKey)
}

func APIKeyFromCtx(ctx *fasthttp.RequestCtx) (*dbpkg.APIKey, bool) {
	v := ctx.UserValue(APIKeyKey)
	if v == nil {
		return nil, false
	}
	ak, ok := v.(*dbpkg.APIKey)
	return ak, ok
}

// SetSubject records the external identity the request acts as.
func SetSubject(ctx *fasthttp.RequestCtx, userID string) {
	ctx.SetUserValue(SubjectKey, userID)
}

// SubjectFromCtx returns the external identity for this request. The second
// return is false for unauthenticated requests; callers that allow anonymous
// access should then fall back to the anonymous sentinel.
func SubjectFromCtx(ctx *fasthttp.RequestCtx) (string, bool) {
	v := ctx.UserValue(SubjectKey)
	if v == nil {
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}
