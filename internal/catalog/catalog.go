// Package catalog manages document metadata. Files themselves and the
// managed full-text index are external; this package only stores what the
// accounting pipeline and the naive search need.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"factify/internal/db"
	"factify/internal/errs"
)

type Catalog struct {
	db  *gorm.DB
	log *zap.Logger
}

func New(gdb *gorm.DB, log *zap.Logger) *Catalog {
	return &Catalog{db: gdb, log: log}
}

// Register stores document metadata. A missing id is assigned; a missing
// uploaded-at is set to now (UTC, ISO-8601).
func (c *Catalog) Register(ctx context.Context, doc *db.Document) error {
	if doc.OwnerUserID == "" {
		doc.OwnerUserID = db.AnonymousUserID
	}
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	if doc.UploadedAt == "" {
		doc.UploadedAt = time.Now().UTC().Format(time.RFC3339)
	}
	if err := c.db.WithContext(ctx).Create(doc).Error; err != nil {
		return fmt.Errorf("%w: %v", errs.ErrStoreUnavailable, err)
	}
	return nil
}

// Get returns one document by id, or ErrNotFound.
func (c *Catalog) Get(ctx context.Context, id string) (*db.Document, error) {
	var doc db.Document
	err := c.db.WithContext(ctx).Where("id = ?", id).First(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrStoreUnavailable, err)
	}
	return &doc, nil
}

// Search is a naive case-insensitive substring match over title, description
// and extracted text. It deliberately has no relevance scoring; the managed
// search cluster this stands in for is out of scope here.
func (c *Catalog) Search(ctx context.Context, query string, limit int) ([]db.Document, error) {
	if limit <= 0 {
		limit = 5
	}
	pattern := "%" + strings.ToLower(strings.TrimSpace(query)) + "%"

	var docs []db.Document
	err := c.db.WithContext(ctx).
		Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ? OR LOWER(formatted_text) LIKE ?",
			pattern, pattern, pattern).
		Order("created_at DESC").
		Limit(limit).
		Find(&docs).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrStoreUnavailable, err)
	}
	return docs, nil
}

// DistinctOwners returns every distinct document owner id in the catalog,
// excluding the anonymous sentinel. This feeds the batch incentive recompute.
func (c *Catalog) DistinctOwners(ctx context.Context) ([]string, error) {
	var owners []string
	err := c.db.WithContext(ctx).
		Model(&db.Document{}).
		Distinct("owner_user_id").
		Where("owner_user_id <> ? AND owner_user_id <> ''", db.AnonymousUserID).
		Pluck("owner_user_id", &owners).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrStoreUnavailable, err)
	}
	return owners, nil
}
