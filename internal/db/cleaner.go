package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"
)

const purgeMessagesQuery = `DELETE FROM messages WHERE sent_at < $1`

// PurgeMessages deletes contact messages sent before cutoff and returns how
// many were removed.
func PurgeMessages(ctx context.Context, db *sql.DB, cutoff time.Time) (int64, error) {
	res, err := db.ExecContext(ctx, purgeMessagesQuery, cutoff)
	if err != nil {
		return 0, fmt.Errorf("PurgeMessages: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("PurgeMessages: %w", err)
	}
	return n, nil
}

// StartMessageJanitor removes seller contact messages older than retention
// every interval until ctx is cancelled. A retention of zero keeps messages
// forever and starts nothing.
func StartMessageJanitor(ctx context.Context, db *sql.DB, interval, retention time.Duration, log *zap.Logger) {
	if retention <= 0 {
		log.Info("message purge disabled")
		return
	}
	log = log.With(zap.Duration("retention", retention))
	ticker := time.NewTicker(interval)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				cutoff := now.Add(-retention)
				removed, err := PurgeMessages(ctx, db, cutoff)
				switch {
				case err != nil:
					log.Error("failed to purge old messages", zap.Error(err))
				case removed > 0:
					log.Info("purged old messages",
						zap.Int64("removed", removed),
						zap.Time("cutoff", cutoff),
					)
				}
			}
		}
	}()
}
