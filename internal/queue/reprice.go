package queue

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"nestbay-backend/internal/logger"
	"nestbay-backend/internal/service"
)

const repriceQueueKey = "reprice:queue"

// RepriceTask asks the worker to recompute prices for one unit's window.
// SettingsVersion records which fee change triggered the task.
type RepriceTask struct {
	UnitID          int32  `json:"unit_id"`
	Start           string `json:"start"`
	End             string `json:"end"`
	SettingsVersion int64  `json:"settings_version"`
}

// RepriceQueue is a durable Redis-backed task queue. Tasks survive a process
// restart; a fee change enqueues one task per unit and returns immediately.
type RepriceQueue struct {
	client *redis.Client
}

func NewRepriceQueue(client *redis.Client) *RepriceQueue {
	return &RepriceQueue{client: client}
}

func (q *RepriceQueue) Enqueue(ctx context.Context, task RepriceTask) error {
	payload, err := json.Marshal(task)
	if err != nil {
		return err
	}
	return q.client.LPush(ctx, repriceQueueKey, payload).Err()
}

// Dequeue blocks up to timeout for the next task. A nil task with a nil error
// means the timeout elapsed with the queue empty.
func (q *RepriceQueue) Dequeue(ctx context.Context, timeout time.Duration) (*RepriceTask, error) {
	res, err := q.client.BRPop(ctx, timeout, repriceQueueKey).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var task RepriceTask
	if err := json.Unmarshal([]byte(res[1]), &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (q *RepriceQueue) Len(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, repriceQueueKey).Result()
}

// Worker drains the reprice queue sequentially. One unit failing is logged
// and skipped so a bad unit cannot wedge the whole sweep.
type Worker struct {
	queue       *RepriceQueue
	calendarSvc service.CalendarService
}

func NewWorker(queue *RepriceQueue, calendarSvc service.CalendarService) *Worker {
	return &Worker{queue: queue, calendarSvc: calendarSvc}
}

func (w *Worker) Run(ctx context.Context) {
	logger.Info("reprice worker started")
	for {
		task, err := w.queue.Dequeue(ctx, 5*time.Second)
		if ctx.Err() != nil {
			logger.Info("reprice worker stopped")
			return
		}
		if err != nil {
			logger.Error("reprice dequeue failed", "error", err)
			time.Sleep(time.Second)
			continue
		}
		if task == nil {
			continue
		}
		w.process(ctx, task)
	}
}

func (w *Worker) process(ctx context.Context, task *RepriceTask) {
	updated, err := w.calendarSvc.Reprice(ctx, task.UnitID, task.Start, task.End)
	if err != nil {
		logger.Error("reprice task failed",
			"unit_id", task.UnitID, "settings_version", task.SettingsVersion, "error", err)
		return
	}
	logger.Debug("reprice task done",
		"unit_id", task.UnitID, "updated", updated, "settings_version", task.SettingsVersion)
}
