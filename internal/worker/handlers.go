package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/dom/vidtube/internal/media"
	"github.com/dom/vidtube/internal/metrics"
	"github.com/dom/vidtube/internal/tasks"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"
)

type TaskHandler struct {
	store media.Store
}

func NewTaskHandler(store media.Store) *TaskHandler {
	return &TaskHandler{store: store}
}

// Register wires every task type this worker understands.
func (h *TaskHandler) Register(mux *asynq.ServeMux) {
	mux.HandleFunc(tasks.TypeMediaDelete, h.HandleMediaDeleteTask)
}

func (h *TaskHandler) HandleMediaDeleteTask(ctx context.Context, t *asynq.Task) error {
	p, err := tasks.ParseMediaDeletePayload(t)
	if err != nil {
		metrics.MediaTasksTotal.WithLabelValues(t.Type(), "invalid").Inc()
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}

	if err := h.store.Delete(ctx, p.Key); err != nil {
		metrics.MediaTasksTotal.WithLabelValues(t.Type(), "error").Inc()
		log.Warn().Err(err).Str("key", p.Key).Msg("worker.HandleMediaDeleteTask: delete failed")
		return err
	}

	metrics.MediaTasksTotal.WithLabelValues(t.Type(), "ok").Inc()
	log.Info().Str("key", p.Key).Msg("worker.HandleMediaDeleteTask: deleted")
	return nil
}

// RetryDelay backs off exponentially from 30s, capped at 6h.
func RetryDelay(n int, err error, task *asynq.Task) time.Duration {
	delay := 30 * time.Second
	maxDelay := 6 * time.Hour
	for i := 0; i < n; i++ {
		delay *= 2
		if delay > maxDelay {
			delay = maxDelay
			break
		}
	}
	log.Warn().Err(err).Str("task", task.Type()).Int("attempt", n+1).Dur("retry_in", delay).Msg("worker: task failed")
	return delay
}
