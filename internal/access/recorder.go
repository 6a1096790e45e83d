package access

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"factify/internal/db"
	"factify/internal/metrics"
)

// AccessedDocument is one entry of a search result list as seen by the
// recorder: the document id plus the owning user's external id.
type AccessedDocument struct {
	ID      string
	OwnerID string
}

// EventWriter is the slice of the store the recorder depends on.
type EventWriter interface {
	Ping(ctx context.Context) error
	Append(ctx context.Context, event *db.AccessEvent) error
}

// Recorder turns a search result list into access events. It is invoked on a
// detached goroutine after the search response has been sent, so it never
// returns an error: failures are logged and reported as a bool.
type Recorder struct {
	store EventWriter
	log   *zap.Logger
}

func NewRecorder(store EventWriter, log *zap.Logger) *Recorder {
	return &Recorder{store: store, log: log}
}

// Record writes one event per non-self document in docs. Ranks are the
// 1-based positions in the original list: a skipped self-owned entry still
// consumes its rank. All events from one call share one timestamp. Individual
// write failures are logged and do not abort the remaining documents; the
// call reports false only for invalid input or when the store is unreachable
// before any write is attempted.
func (r *Recorder) Record(ctx context.Context, docs []AccessedDocument, accessingUserID, searchQuery string) bool {
	if accessingUserID == "" {
		r.log.Warn("record skipped: empty accessing user id")
		return false
	}
	if len(docs) == 0 {
		return true
	}

	if err := r.store.Ping(ctx); err != nil {
		r.log.Error("access store unavailable, dropping batch",
			zap.String("accessing_user_id", accessingUserID),
			zap.Int("documents", len(docs)),
			zap.Error(err))
		return false
	}

	batchTS := FormatTimestamp(time.Now())

	recorded := 0
	for i, doc := range docs {
		rank := i + 1
		if doc.OwnerID == accessingUserID {
			// Self-access earns no incentive and is never written.
			continue
		}

		event := &db.AccessEvent{
			TransactionID:      uuid.NewString(),
			Timestamp:          batchTS,
			AccessedDocumentID: doc.ID,
			AccessingUserID:    accessingUserID,
			DocumentOwnerID:    doc.OwnerID,
			SearchQuery:        searchQuery,
			SearchRank:         rank,
			AccessType:         db.AccessTypeSearchResult,
		}

		if err := r.store.Append(ctx, event); err != nil {
			metrics.RecorderFailures.Inc()
			r.log.Warn("failed to append access event",
				zap.String("document_id", doc.ID),
				zap.Int("rank", rank),
				zap.Error(err))
			continue
		}
		recorded++
		metrics.EventsRecorded.WithLabelValues(db.AccessTypeSearchResult).Inc()
	}

	r.log.Info("access batch recorded",
		zap.String("accessing_user_id", accessingUserID),
		zap.Int("documents", len(docs)),
		zap.Int("recorded", recorded))
	return true
}
