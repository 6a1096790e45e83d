package handlers

import (
	"encoding/json"

	"github.com/valyala/fasthttp"

	"factify/internal/access"
	"factify/internal/catalog"
	dbpkg "factify/internal/db"
	httpctx "factify/internal/http/ctx"
)

type registerDocumentRequest struct {
	ID            string `json:"id"`
	OwnerUserID   string `json:"owner_user_id"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	FileName      string `json:"file_name"`
	FileType      string `json:"file_type"`
	FormattedText string `json:"formatted_text"`
	UploadedAt    string `json:"uploaded_at"`
}

// RegisterDocument stores document metadata in the catalog. File upload and
// text extraction happen upstream; this endpoint only receives the already
// extracted fields.
func RegisterDocument(cat *catalog.Catalog) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		var req registerDocumentRequest
		if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
			errResponse(ctx, fasthttp.StatusBadRequest, "invalid JSON body")
			return
		}
		if req.Title == "" && req.FileName == "" {
			errResponse(ctx, fasthttp.StatusBadRequest, "title or file_name is required")
			return
		}

		owner := req.OwnerUserID
		if owner == "" {
			if subject, ok := httpctx.SubjectFromCtx(ctx); ok {
				owner = subject
			}
		}

		doc := &dbpkg.Document{
			ID:            req.ID,
			OwnerUserID:   owner,
			Title:         req.Title,
			Description:   req.Description,
			FileName:      req.FileName,
			FileType:      req.FileType,
			FormattedText: req.FormattedText,
			UploadedAt:    req.UploadedAt,
		}
		if err := cat.Register(ctx, doc); err != nil {
			storeErrResponse(ctx, err)
			return
		}

		ctx.SetStatusCode(fasthttp.StatusCreated)
		jsonResponse(ctx, map[string]any{"success": true, "file_id": doc.ID})
	}
}

// GetDocument returns one catalog document by id.
func GetDocument(cat *catalog.Catalog) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		id, _ := ctx.UserValue("id").(string)
		if id == "" {
			errResponse(ctx, fasthttp.StatusBadRequest, "id required")
			return
		}

		doc, err := cat.Get(ctx, id)
		if err != nil {
			storeErrResponse(ctx, err)
			return
		}
		jsonResponse(ctx, doc)
	}
}

// DocumentStats returns access totals and a recent-event preview for one
// document.
func DocumentStats(store *access.Store) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		id, _ := ctx.UserValue("id").(string)
		if id == "" {
			errResponse(ctx, fasthttp.StatusBadRequest, "id required")
			return
		}

		stats, err := store.Stats(ctx, id)
		if err != nil {
			storeErrResponse(ctx, err)
			return
		}
		jsonResponse(ctx, stats)
	}
}
