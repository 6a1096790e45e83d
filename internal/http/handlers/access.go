package handlers

import (
	"github.com/valyala/fasthttp"

	"factify/internal/access"
)

// AccessHistory returns the calling identity's own access events, newest
// first.
func AccessHistory(store *access.Store) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		subject, ok := MustSubject(ctx)
		if !ok {
			return
		}
		limit := queryInt(ctx, "limit", 100, 500)

		events, err := store.QueryByUser(ctx, subject, limit)
		if err != nil {
			storeErrResponse(ctx, err)
			return
		}
		jsonResponse(ctx, map[string]any{
			"user_id": subject,
			"count":   len(events),
			"events":  events,
		})
	}
}

// WeeklyActivity returns the per-day unique-user and access counts for the
// last N days, zero-filled.
func WeeklyActivity(store *access.Store) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		days := queryInt(ctx, "days", 7, 90)

		report, err := store.WeeklyActivity(ctx, days)
		if err != nil {
			storeErrResponse(ctx, err)
			return
		}
		jsonResponse(ctx, report)
	}
}
