package handlers

import (
	"encoding/json"

	"github.com/valyala/fasthttp"

	"factify/internal/access"
	"factify/internal/catalog"
	"factify/internal/incentive"
)

type recalculateRequest struct {
	Period string `json:"period"`
}

// RecalculateIncentives runs calculate-then-save for every known document
// owner. Defaults to the current period; per-owner failures are isolated and
// reported in the counts.
func RecalculateIncentives(agg *incentive.Aggregator) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		period := incentive.CurrentPeriod()
		if body := ctx.PostBody(); len(body) > 0 {
			var req recalculateRequest
			if err := json.Unmarshal(body, &req); err != nil {
				errResponse(ctx, fasthttp.StatusBadRequest, "invalid JSON body")
				return
			}
			if req.Period != "" {
				period = req.Period
			}
		}

		result, err := agg.RecalculateAll(ctx, period)
		if err != nil {
			storeErrResponse(ctx, err)
			return
		}
		jsonResponse(ctx, result)
	}
}

type seedRequest struct {
	Days       int `json:"days"`
	LogsPerDay int `json:"logs_per_day"`
}

// SeedAccessEvents writes randomized demo access events against the existing
// catalog.
func SeedAccessEvents(store *access.Store, cat *catalog.Catalog) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		var req seedRequest
		if body := ctx.PostBody(); len(body) > 0 {
			if err := json.Unmarshal(body, &req); err != nil {
				errResponse(ctx, fasthttp.StatusBadRequest, "invalid JSON body")
				return
			}
		}

		docs, err := cat.Search(ctx, "", 50)
		if err != nil {
			storeErrResponse(ctx, err)
			return
		}

		generated, err := access.SeedDummyEvents(ctx, store, docs, req.Days, req.LogsPerDay)
		if err != nil {
			storeErrResponse(ctx, err)
			return
		}
		jsonResponse(ctx, map[string]any{"success": true, "generated": generated})
	}
}
