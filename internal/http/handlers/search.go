package handlers

import (
	"context"
	"encoding/json"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"factify/internal/access"
	"factify/internal/catalog"
	"factify/internal/config"
	dbpkg "factify/internal/db"
	httpctx "factify/internal/http/ctx"
	"factify/internal/metrics"
)

type searchRequest struct {
	Query      string `json:"query"`
	MaxResults int    `json:"max_results"`
}

type searchResultDoc struct {
	ID          string `json:"id"`
	OwnerUserID string `json:"owner_user_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	FileName    string `json:"file_name"`
	FileType    string `json:"file_type"`
	UploadedAt  string `json:"uploaded_at"`
	Summary     string `json:"summary"`
}

const summaryLen = 100

// SearchHandler serves catalog searches and dispatches access recording on a
// detached goroutine. The response is never blocked or altered by recorder
// outcome: by the time recording starts, the result list has already been
// written to the client buffer.
func SearchHandler(cat *catalog.Catalog, rec *access.Recorder, cfg *config.Config, log *zap.Logger) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		var req searchRequest
		if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
			errResponse(ctx, fasthttp.StatusBadRequest, "invalid JSON body")
			return
		}
		if req.Query == "" {
			errResponse(ctx, fasthttp.StatusBadRequest, "query is required")
			return
		}

		docs, err := cat.Search(ctx, req.Query, req.MaxResults)
		if err != nil {
			storeErrResponse(ctx, err)
			return
		}
		metrics.SearchesTotal.Inc()

		results := make([]searchResultDoc, 0, len(docs))
		accessed := make([]access.AccessedDocument, 0, len(docs))
		for _, d := range docs {
			summary := d.FormattedText
			if len(summary) > summaryLen {
				summary = summary[:summaryLen]
			}
			results = append(results, searchResultDoc{
				ID:          d.ID,
				OwnerUserID: d.OwnerUserID,
				Title:       d.Title,
				Description: d.Description,
				FileName:    d.FileName,
				FileType:    d.FileType,
				UploadedAt:  d.UploadedAt,
				Summary:     summary,
			})
			accessed = append(accessed, access.AccessedDocument{ID: d.ID, OwnerID: d.OwnerUserID})
		}

		jsonResponse(ctx, map[string]any{
			"success":       true,
			"query":         req.Query,
			"total_results": len(results),
			"results":       results,
		})

		// The fasthttp ctx must not be touched after the handler returns, so
		// everything the recorder needs is captured before detaching.
		accessingUserID := dbpkg.AnonymousUserID
		if subject, ok := httpctx.SubjectFromCtx(ctx); ok {
			accessingUserID = subject
		}
		query := req.Query
		timeout := cfg.RecordTimeout

		go func() {
			rctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()
			rec.Record(rctx, accessed, accessingUserID, query)
		}()
	}
}
