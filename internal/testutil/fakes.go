package testutil

import (
	"context"
	"io"
	"strings"
	"sync"

	"github.com/dom/vidtube/internal/media"
	"github.com/dom/vidtube/internal/tasks"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const memStoreURL = "https://media.test"

// MemStore is an in-memory media.Store.
type MemStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	deleted []string

	// Err, when set, fails every Upload and Delete.
	Err error
}

func NewMemStore() *MemStore {
	return &MemStore{objects: make(map[string][]byte)}
}

func (m *MemStore) Upload(_ context.Context, obj media.Object) (string, error) {
	if obj.Body == nil || obj.Size <= 0 {
		return "", media.ErrEmptyObject
	}
	data, err := io.ReadAll(obj.Body)
	if err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return "", m.Err
	}
	key := media.ObjectKey(obj)
	m.objects[key] = data
	return memStoreURL + "/" + key, nil
}

func (m *MemStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	delete(m.objects, key)
	m.deleted = append(m.deleted, key)
	return nil
}

func (m *MemStore) KeyFromURL(url string) (string, bool) {
	key, ok := strings.CutPrefix(url, memStoreURL+"/")
	return key, ok && key != ""
}

// Has reports whether the object behind url is stored.
func (m *MemStore) Has(url string) bool {
	key, ok := m.KeyFromURL(url)
	if !ok {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok = m.objects[key]
	return ok
}

func (m *MemStore) Deleted() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.deleted...)
}

var _ media.Store = (*MemStore)(nil)

// TaskRecorder is a tasks.TaskEnqueuer that keeps what it was given.
type TaskRecorder struct {
	mu    sync.Mutex
	tasks []*asynq.Task
}

func (r *TaskRecorder) Enqueue(task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks = append(r.tasks, task)
	return &asynq.TaskInfo{ID: "test-task-id", Queue: tasks.QueueLow, Type: task.Type()}, nil
}

// MediaKeys returns the keys of the recorded media deletions.
func (r *TaskRecorder) MediaKeys() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var keys []string
	for _, t := range r.tasks {
		if t.Type() != tasks.TypeMediaDelete {
			continue
		}
		if p, err := tasks.ParseMediaDeletePayload(t); err == nil {
			keys = append(keys, p.Key)
		}
	}
	return keys
}

var _ tasks.TaskEnqueuer = (*TaskRecorder)(nil)

// Event is one call recorded by EventRecorder.
type Event struct {
	VideoID uuid.UUID
	Type    string
	Payload any
}

// EventRecorder collects published engagement events.
type EventRecorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *EventRecorder) Publish(videoID uuid.UUID, eventType string, payload any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Event{VideoID: videoID, Type: eventType, Payload: payload})
}

// Types returns the recorded event types in publish order.
func (r *EventRecorder) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	types := make([]string, len(r.events))
	for i, e := range r.events {
		types[i] = e.Type
	}
	return types
}
