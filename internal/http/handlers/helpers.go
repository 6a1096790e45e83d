package handlers

import (
	"encoding/json"
	"errors"
	"strconv"

	"github.com/valyala/fasthttp"

	dbpkg "factify/internal/db"
	"factify/internal/errs"
	httpctx "factify/internal/http/ctx"
)

func jsonResponse(ctx *fasthttp.RequestCtx, data any) {
	ctx.SetContentType("application/json")
	body, _ := json.Marshal(data)
	ctx.SetBody(body)
}

func errResponse(ctx *fasthttp.RequestCtx, code int, msg string) {
	ctx.SetStatusCode(code)
	ctx.SetBodyString(msg)
}

// storeErrResponse maps domain sentinel errors to HTTP responses.
func storeErrResponse(ctx *fasthttp.RequestCtx, err error) {
	switch {
	case errors.Is(err, errs.ErrInvalidPeriod):
		errResponse(ctx, fasthttp.StatusBadRequest, "period must be YYYY-MM")
	case errors.Is(err, errs.ErrNotFound):
		errResponse(ctx, fasthttp.StatusNotFound, "not found")
	case errors.Is(err, errs.ErrStoreUnavailable):
		errResponse(ctx, fasthttp.StatusServiceUnavailable, "store unavailable")
	default:
		errResponse(ctx, fasthttp.StatusInternalServerError, "internal error")
	}
}

// MustUser returns the current operator user from context, or sends 401.
func MustUser(ctx *fasthttp.RequestCtx) (*dbpkg.User, bool) {
	user, ok := httpctx.UserFromCtx(ctx)
	if !ok || user == nil {
		ctx.SetStatusCode(fasthttp.StatusUnauthorized)
		ctx.SetBodyString("unauthorized")
		return nil, false
	}
	return user, true
}

// MustSubject returns the external identity for this request, or sends 401.
func MustSubject(ctx *fasthttp.RequestCtx) (string, bool) {
	subject, ok := httpctx.SubjectFromCtx(ctx)
	if !ok {
		ctx.SetStatusCode(fasthttp.StatusUnauthorized)
		ctx.SetBodyString("a key with a subject identity is required")
		return "", false
	}
	return subject, true
}

// queryInt reads a positive integer query parameter with a default and cap.
func queryInt(ctx *fasthttp.RequestCtx, name string, def, max int) int {
	v := def
	if s := string(ctx.QueryArgs().Peek(name)); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			v = n
		}
	}
	if max > 0 && v > max {
		v = max
	}
	return v
}
