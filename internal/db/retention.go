package db

import (
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// retentionTimestampLayout matches the AccessEvent timestamp format.
const retentionTimestampLayout = "2006-01-02T15:04:05.000000"

// runRetentionOnce performs a single pass of retention cleanup, deleting
// access events older than the horizon.
func runRetentionOnce(db *gorm.DB, days int) error {
	horizon := time.Now().UTC().AddDate(0, 0, -days).Format(retentionTimestampLayout)
	return db.Where("timestamp < ?", horizon).Delete(&AccessEvent{}).Error
}

// StartRetentionWorker launches a background goroutine that runs the
// retention cleanup once at startup and then once per day. A non-positive
// days value disables retention entirely: events are kept forever, which is
// the default policy for this pipeline.
func StartRetentionWorker(db *gorm.DB, log *zap.Logger, days int) {
	if days <= 0 {
		log.Info("access event retention disabled, keeping events indefinitely")
		return
	}

	go func() {
		if err := runRetentionOnce(db, days); err != nil {
			log.Error("retention cleanup failed (startup)", zap.Error(err))
		}

		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()

		for range ticker.C {
			if err := runRetentionOnce(db, days); err != nil {
				log.Error("retention cleanup failed", zap.Error(err))
			}
		}
	}()
}
