package tasks

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

const (
	TypeMediaDelete = "media:delete"

	QueueDefault = "default"
	QueueLow     = "low"
)

// TaskEnqueuer is implemented by asynq.Client and faked in tests.
type TaskEnqueuer interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

type MediaDeletePayload struct {
	Key string `json:"key"`
}

func NewMediaDeleteTask(key string) (*asynq.Task, error) {
	if key == "" {
		return nil, fmt.Errorf("media delete task needs a key")
	}
	payload, err := json.Marshal(MediaDeletePayload{Key: key})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeMediaDelete, payload, asynq.Queue(QueueLow), asynq.MaxRetry(10)), nil
}

func ParseMediaDeletePayload(t *asynq.Task) (MediaDeletePayload, error) {
	var p MediaDeletePayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return p, fmt.Errorf("failed to unmarshal task payload: %w", err)
	}
	if p.Key == "" {
		return p, fmt.Errorf("media delete payload has no key")
	}
	return p, nil
}
