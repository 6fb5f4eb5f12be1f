package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/classware/classman-backend/internal/config"
	"github.com/classware/classman-backend/internal/model"
)

const (
	AuditBatchSize    = 50
	AuditBatchTimeout = 2 * time.Second
	AuditPollTimeout  = 1 * time.Second
)

// AuditWorker drains the auth-events queue and persists events to the
// auth_events table in batches. The pipeline is best-effort end to end:
// a write failure is logged and the batch dropped, never retried.
type AuditWorker struct {
	pool *pgxpool.Pool
	rdb  *redis.Client
	log  zerolog.Logger
}

// NewAuditWorker creates a new AuditWorker.
func NewAuditWorker(pool *pgxpool.Pool, rdb *redis.Client, log zerolog.Logger) *AuditWorker {
	return &AuditWorker{
		pool: pool,
		rdb:  rdb,
		log:  log.With().Str("component", "audit_worker").Logger(),
	}
}

// Start runs the worker loop until ctx is cancelled, flushing any remaining
// batch on shutdown.
func (w *AuditWorker) Start(ctx context.Context) {
	w.log.Info().Msg("AuditWorker started")

	batch := make([]model.AuthEvent, 0, AuditBatchSize)
	lastFlush := time.Now()

	for {
		if len(batch) > 0 &&
			(len(batch) >= AuditBatchSize || time.Since(lastFlush) >= AuditBatchTimeout) {

			w.flushSafe(ctx, batch)
			batch = batch[:0]
			lastFlush = time.Now()
		}

		select {
		case <-ctx.Done():
			w.log.Info().Msg("Shutdown requested. Flushing remaining batch...")
			w.flushSafe(context.Background(), batch)
			return

		default:
			item, err := w.rdb.BLPop(ctx, AuditPollTimeout, config.WorkerKey.AuthEventsQueue).Result()
			if err != nil {
				if err != redis.Nil && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
				}
				continue
			}

			if len(item) < 2 {
				continue
			}

			var event model.AuthEvent
			if err := json.Unmarshal([]byte(item[1]), &event); err != nil {
				w.log.Warn().Err(err).Msg("Skip malformed audit event")
				continue
			}
			batch = append(batch, event)
		}
	}
}

func (w *AuditWorker) flushSafe(ctx context.Context, batch []model.AuthEvent) {
	if len(batch) == 0 {
		return
	}
	if err := w.flush(ctx, batch); err != nil {
		w.log.Error().Err(err).Int("events", len(batch)).Msg("Flush failed, batch dropped")
		return
	}
	w.log.Debug().Int("events", len(batch)).Msg("Audit batch persisted")
}

func (w *AuditWorker) flush(ctx context.Context, batch []model.AuthEvent) error {
	_, err := w.pool.CopyFrom(
		ctx,
		pgx.Identifier{"auth_events"},
		[]string{"id", "event_type", "user_id", "username", "detail", "created_at"},
		pgx.CopyFromSlice(len(batch), func(i int) ([]interface{}, error) {
			e := batch[i]
			return []interface{}{e.ID, string(e.EventType), e.UserID, e.Username, e.Detail, e.CreatedAt}, nil
		}),
	)
	return err
}
