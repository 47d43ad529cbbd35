package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"slotcal/internal/database"
	"slotcal/internal/metrics"
	"slotcal/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// BookingSink receives booking changes. Implementations exist for the local
// spreadsheet file and for Google Sheets.
type BookingSink interface {
	Name() string
	UpsertBooking(booking *models.Booking) error
	DeleteBooking(bookingID int64) error
}

// exportPayload is persisted in SyncTask.Payload as JSON.
type exportPayload struct {
	BookingID int64           `json:"booking_id"`
	Booking   *models.Booking `json:"booking,omitempty"`
}

// ExportWorker drains the sync_queue and applies each booking change to the
// configured sinks. Tasks survive restarts in SQLite; Redis is a fast path,
// the DB poll is the safety net.
type ExportWorker struct {
	db            *database.DB
	sinks         []BookingSink
	redis         *redis.Client
	retryPolicy   RetryPolicy
	queue         chan models.SyncTask
	redisQueueKey string
	deadLetterKey string
	pollInterval  time.Duration
	batchSize     int
	logger        *zerolog.Logger
}

// NewExportWorker builds a worker with sane defaults.
func NewExportWorker(db *database.DB, sinks []BookingSink, redisClient *redis.Client, retry RetryPolicy, logger *zerolog.Logger) *ExportWorker {
	if retry.MaxRetries == 0 {
		retry.MaxRetries = 5
	}
	if retry.InitialDelay == 0 {
		retry.InitialDelay = 2 * time.Second
	}
	if retry.MaxDelay == 0 {
		retry.MaxDelay = 1 * time.Minute
	}
	if retry.BackoffFactor == 0 {
		retry.BackoffFactor = 2
	}

	return &ExportWorker{
		db:            db,
		sinks:         sinks,
		redis:         redisClient,
		retryPolicy:   retry,
		queue:         make(chan models.SyncTask, models.WorkerQueueSize),
		redisQueueKey: "exports:queue",
		deadLetterKey: "exports:deadletter",
		pollInterval:  2 * time.Second,
		batchSize:     20,
		logger:        logger,
	}
}

// EnqueueUpsert schedules a created booking for export.
func (w *ExportWorker) EnqueueUpsert(ctx context.Context, booking *models.Booking) error {
	if booking == nil || booking.ID == 0 {
		return errors.New("booking id is required")
	}
	return w.enqueue(ctx, models.SyncTaskUpsert, exportPayload{BookingID: booking.ID, Booking: booking})
}

// EnqueueDelete schedules removal of a cancelled booking from the sinks.
func (w *ExportWorker) EnqueueDelete(ctx context.Context, bookingID int64) error {
	if bookingID == 0 {
		return errors.New("booking id is required")
	}
	return w.enqueue(ctx, models.SyncTaskDelete, exportPayload{BookingID: bookingID})
}

func (w *ExportWorker) enqueue(ctx context.Context, taskType string, payload exportPayload) error {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}

	syncTask := models.SyncTask{
		TaskType:  taskType,
		BookingID: payload.BookingID,
		Payload:   string(payloadBytes),
		Status:    models.SyncStatusPending,
		CreatedAt: time.Now(),
	}

	if err := w.db.CreateSyncTask(ctx, &syncTask); err != nil {
		return fmt.Errorf("persist sync task: %w", err)
	}

	// Try redis first so another instance can pick the task up.
	if w.redis != nil {
		if err := w.pushRedis(ctx, syncTask); err != nil {
			w.logger.Warn().Err(err).Msg("export_worker: redis push failed, fallback to memory queue")
		} else {
			return nil
		}
	}

	// Fallback to in-memory queue; a full queue leaves the task to polling.
	select {
	case w.queue <- syncTask:
	default:
		w.logger.Warn().Int64("task_id", syncTask.ID).Msg("export_worker: in-memory queue full, task left to polling")
	}

	return nil
}

// Start launches the main loop; stops when ctx is done.
func (w *ExportWorker) Start(ctx context.Context) {
	w.logger.Info().Msg("export_worker: started")
	defer w.logger.Info().Msg("export_worker: stopped")

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if t, ok := w.tryLocalQueue(); ok {
			w.processTask(ctx, &t)
			continue
		}

		if t, ok := w.tryRedis(ctx); ok {
			w.processTask(ctx, &t)
			continue
		}

		tasks, err := w.db.GetPendingSyncTasks(ctx, w.batchSize)
		if err != nil {
			w.logger.Error().Err(err).Msg("export_worker: fetch pending")
			time.Sleep(w.pollInterval)
			continue
		}
		if len(tasks) == 0 {
			time.Sleep(w.pollInterval)
			continue
		}

		for i := range tasks {
			w.processTask(ctx, &tasks[i])
		}
	}
}

func (w *ExportWorker) tryLocalQueue() (models.SyncTask, bool) {
	select {
	case t := <-w.queue:
		return t, true
	default:
		return models.SyncTask{}, false
	}
}

func (w *ExportWorker) tryRedis(ctx context.Context) (models.SyncTask, bool) {
	if w.redis == nil {
		return models.SyncTask{}, false
	}
	res, err := w.redis.BRPop(ctx, time.Second, w.redisQueueKey).Result()
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, redis.Nil) {
			return models.SyncTask{}, false
		}
		w.logger.Error().Err(err).Msg("export_worker: redis BRPOP error")
		return models.SyncTask{}, false
	}
	if len(res) != 2 {
		return models.SyncTask{}, false
	}
	var task models.SyncTask
	if err := json.Unmarshal([]byte(res[1]), &task); err != nil {
		w.logger.Error().Err(err).Msg("export_worker: decode redis task")
		return models.SyncTask{}, false
	}
	return task, true
}

func (w *ExportWorker) processTask(ctx context.Context, task *models.SyncTask) {
	var payload exportPayload
	if err := json.Unmarshal([]byte(task.Payload), &payload); err != nil {
		w.failTask(ctx, task, fmt.Errorf("decode payload: %w", err))
		return
	}

	if err := w.applyToSinks(task.TaskType, payload); err != nil {
		w.retryOrFail(ctx, task, err)
		return
	}

	metrics.IncExportTask(models.SyncStatusCompleted)
	if err := w.db.UpdateSyncTaskStatus(ctx, task.ID, models.SyncStatusCompleted, "", nil); err != nil {
		w.logger.Error().Err(err).Int64("task_id", task.ID).Msg("export_worker: mark completed")
	}
}

func (w *ExportWorker) applyToSinks(taskType string, payload exportPayload) error {
	for _, sink := range w.sinks {
		var err error
		switch taskType {
		case models.SyncTaskUpsert:
			if payload.Booking == nil {
				return errors.New("booking payload missing")
			}
			err = sink.UpsertBooking(payload.Booking)
		case models.SyncTaskDelete:
			if payload.BookingID == 0 {
				return errors.New("booking id missing")
			}
			err = sink.DeleteBooking(payload.BookingID)
		default:
			return fmt.Errorf("unknown task type: %s", taskType)
		}
		if err != nil {
			return fmt.Errorf("sink %s: %w", sink.Name(), err)
		}
	}
	return nil
}

func (w *ExportWorker) retryOrFail(ctx context.Context, task *models.SyncTask, cause error) {
	attempt := task.RetryCount + 1
	if attempt >= w.retryPolicy.MaxRetries {
		metrics.IncExportTask(models.SyncStatusFailed)
		if err := w.db.UpdateSyncTaskStatus(ctx, task.ID, models.SyncStatusFailed, cause.Error(), nil); err != nil {
			w.logger.Error().Err(err).Int64("task_id", task.ID).Msg("export_worker: mark failed")
		}
		w.pushDeadLetter(ctx, task)
		return
	}

	metrics.IncExportTask(models.SyncStatusRetry)
	nextDelay := w.retryPolicy.NextDelay(attempt)
	nextTime := time.Now().Add(nextDelay)
	if err := w.db.UpdateSyncTaskStatus(ctx, task.ID, models.SyncStatusRetry, cause.Error(), &nextTime); err != nil {
		w.logger.Error().Err(err).Int64("task_id", task.ID).Msg("export_worker: mark retry")
	}
}

func (w *ExportWorker) failTask(ctx context.Context, task *models.SyncTask, cause error) {
	metrics.IncExportTask(models.SyncStatusFailed)
	if err := w.db.UpdateSyncTaskStatus(ctx, task.ID, models.SyncStatusFailed, cause.Error(), nil); err != nil {
		w.logger.Error().Err(err).Int64("task_id", task.ID).Msg("export_worker: mark failed")
	}
	w.pushDeadLetter(ctx, task)
}

func (w *ExportWorker) pushRedis(ctx context.Context, task models.SyncTask) error {
	if w.redis == nil {
		return errors.New("redis client is nil")
	}
	data, err := json.Marshal(task)
	if err != nil {
		return err
	}
	return w.redis.LPush(ctx, w.redisQueueKey, data).Err()
}

func (w *ExportWorker) pushDeadLetter(ctx context.Context, task *models.SyncTask) {
	if w.redis == nil {
		return
	}
	data, err := json.Marshal(task)
	if err != nil {
		w.logger.Error().Err(err).Int64("task_id", task.ID).Msg("export_worker: encode deadletter")
		return
	}
	if err := w.redis.LPush(ctx, w.deadLetterKey, data).Err(); err != nil {
		w.logger.Error().Err(err).Int64("task_id", task.ID).Msg("export_worker: deadletter push")
	}
}
