// Package audit emits best-effort auth and grant events. Losing an event is
// acceptable; delaying an authorization decision is not.
package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/classware/classman-backend/internal/config"
	"github.com/classware/classman-backend/internal/model"
)

const pushTimeout = 2 * time.Second

// Recorder queues events onto Redis for the audit worker to persist.
// Record never blocks the caller and never returns an error: failures are
// logged at debug level and the event is dropped.
type Recorder struct {
	rdb *redis.Client
	log zerolog.Logger
}

// NewRecorder creates a new Recorder.
func NewRecorder(rdb *redis.Client, log zerolog.Logger) *Recorder {
	return &Recorder{
		rdb: rdb,
		log: log.With().Str("component", "audit_recorder").Logger(),
	}
}

// Record fills in ID and timestamp and pushes the event asynchronously.
func (r *Recorder) Record(event model.AuthEvent) {
	event.ID = uuid.New().String()
	event.CreatedAt = time.Now().UTC()

	payload, err := json.Marshal(event)
	if err != nil {
		r.log.Debug().Err(err).Msg("marshal audit event")
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), pushTimeout)
		defer cancel()

		if err := r.rdb.LPush(ctx, config.WorkerKey.AuthEventsQueue, payload).Err(); err != nil {
			r.log.Debug().Err(err).Str("event_type", string(event.EventType)).Msg("drop audit event")
		}
	}()
}
