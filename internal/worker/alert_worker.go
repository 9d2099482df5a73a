package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/ngmvpwd/pakaya-sub001/internal/config"
	"github.com/ngmvpwd/pakaya-sub001/internal/model"
	"github.com/ngmvpwd/pakaya-sub001/internal/repository"
)

const (
	AlertBatchSize    = 50
	AlertBatchTimeout = 2 * time.Second
	AlertPollTimeout  = 1 * time.Second
)

type alertPayload struct {
	TeacherRowID int     `json:"teacher_row_id"`
	TeacherName  string  `json:"teacher_name"`
	Date         string  `json:"date"`
	Category     *string `json:"category"`
}

// AlertQueue is the producer side: services push absence notifications
// onto a Redis list so the write path never waits on alert persistence.
// It implements service.AlertSink.
type AlertQueue struct {
	rdb *redis.Client
	log zerolog.Logger
}

// NewAlertQueue creates a new AlertQueue.
func NewAlertQueue(rdb *redis.Client, log zerolog.Logger) *AlertQueue {
	return &AlertQueue{
		rdb: rdb,
		log: log.With().Str("component", "alert_queue").Logger(),
	}
}

// EnqueueAbsence pushes one absence notification onto the queue. Queue
// failures are logged and swallowed: the attendance write already
// committed and must not be failed retroactively.
func (q *AlertQueue) EnqueueAbsence(ctx context.Context, teacher *model.Teacher, date string, category *model.AbsenceCategory) {
	payload := alertPayload{
		TeacherRowID: teacher.ID,
		TeacherName:  teacher.Name,
		Date:         date,
	}
	if category != nil {
		c := string(*category)
		payload.Category = &c
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		q.log.Error().Err(err).Msg("alert payload marshal failed")
		return
	}

	if err := q.rdb.RPush(ctx, config.WorkerKey.PersistAlertsQueue, raw).Err(); err != nil {
		q.log.Error().Err(err).Str("teacher", teacher.TeacherID).Msg("alert enqueue failed")
	}
}

// AlertWorker consumes persist_alerts_queue and bulk-inserts alerts into
// PostgreSQL.
type AlertWorker struct {
	alerts *repository.AlertRepository
	rdb    *redis.Client
	log    zerolog.Logger
}

// NewAlertWorker creates a new AlertWorker.
func NewAlertWorker(alerts *repository.AlertRepository, rdb *redis.Client, log zerolog.Logger) *AlertWorker {
	return &AlertWorker{
		alerts: alerts,
		rdb:    rdb,
		log:    log.With().Str("component", "alert_worker").Logger(),
	}
}

// Start begins the worker loop with batching. Call in a goroutine.
func (w *AlertWorker) Start(ctx context.Context) {
	w.log.Info().Msg("AlertWorker started")

	batch := make([]alertPayload, 0, AlertBatchSize)
	lastFlush := time.Now()

	for {
		if len(batch) > 0 &&
			(len(batch) >= AlertBatchSize || time.Since(lastFlush) >= AlertBatchTimeout) {

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
			item, err := w.rdb.BLPop(ctx, AlertPollTimeout, config.WorkerKey.PersistAlertsQueue).Result()
			if err != nil {
				if err != redis.Nil && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
				}
				continue
			}

			if len(item) < 2 {
				continue
			}

			var p alertPayload
			if err := json.Unmarshal([]byte(item[1]), &p); err != nil {
				w.log.Error().Err(err).Msg("Invalid JSON payload")
				continue
			}

			batch = append(batch, p)
		}
	}
}

// flushSafe bulk-inserts the batch; on failure the original payloads go
// back on the queue so nothing is lost across worker restarts.
func (w *AlertWorker) flushSafe(ctx context.Context, batch []alertPayload) {
	if len(batch) == 0 {
		return
	}

	alerts := make([]model.Alert, 0, len(batch))
	for _, p := range batch {
		alerts = append(alerts, buildAlert(p))
	}

	if err := w.alerts.BulkInsert(ctx, alerts); err != nil {
		w.log.Error().Err(err).Int("count", len(batch)).Msg("bulk alert insert failed — requeueing")
		for _, p := range batch {
			raw, _ := json.Marshal(p)
			w.rdb.RPush(ctx, config.WorkerKey.PersistAlertsQueue, raw)
		}
		return
	}

	w.log.Debug().Int("count", len(alerts)).Msg("alerts persisted")
}

func buildAlert(p alertPayload) model.Alert {
	msg := fmt.Sprintf("%s was marked absent on %s", p.TeacherName, p.Date)
	if p.Category != nil {
		msg = fmt.Sprintf("%s (%s)", msg, *p.Category)
	}

	id := p.TeacherRowID
	return model.Alert{
		Type:      model.AlertAbsence,
		Message:   msg,
		TeacherID: &id,
		CreatedAt: time.Now().UTC(),
	}
}
