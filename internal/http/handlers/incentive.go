package handlers

import (
	"github.com/valyala/fasthttp"

	"factify/internal/incentive"
)

// IncentiveSummary computes the calling identity's incentive summary for the
// requested period on demand. A period with no recorded activity returns a
// well-formed zero summary, not an error.
func IncentiveSummary(agg *incentive.Aggregator) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		subject, ok := MustSubject(ctx)
		if !ok {
			return
		}

		period := string(ctx.QueryArgs().Peek("period"))
		if period == "" {
			period = incentive.CurrentPeriod()
		}

		summary, err := agg.Calculate(ctx, subject, period)
		if err != nil {
			storeErrResponse(ctx, err)
			return
		}
		jsonResponse(ctx, summary)
	}
}

// SavedIncentiveSummary returns the stored summary for any owner, as written
// by the last recompute. 404 when no recompute has run for that key.
func SavedIncentiveSummary(agg *incentive.Aggregator) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		owner, _ := ctx.UserValue("owner").(string)
		if owner == "" {
			errResponse(ctx, fasthttp.StatusBadRequest, "owner required")
			return
		}
		period := string(ctx.QueryArgs().Peek("period"))
		if period == "" {
			period = incentive.CurrentPeriod()
		}

		row, err := agg.LoadSaved(ctx, owner, period)
		if err != nil {
			storeErrResponse(ctx, err)
			return
		}
		jsonResponse(ctx, row)
	}
}
