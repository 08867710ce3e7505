package service

import (
	"context"

	"github.com/dom/vidtube/internal/media"
	"github.com/dom/vidtube/internal/tasks"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// EventPublisher pushes engagement events to clients watching a video.
type EventPublisher interface {
	Publish(videoID uuid.UUID, eventType string, payload any)
}

type noopPublisher struct{}

func (noopPublisher) Publish(uuid.UUID, string, any) {}

// MediaFiles uploads synchronously and deletes in the background.
type MediaFiles struct {
	store    media.Store
	enqueuer tasks.TaskEnqueuer
}

func NewMediaFiles(store media.Store, enqueuer tasks.TaskEnqueuer) MediaFiles {
	return MediaFiles{store: store, enqueuer: enqueuer}
}

func (m MediaFiles) upload(ctx context.Context, obj *media.Object) (string, error) {
	if obj == nil {
		return "", nil
	}
	return m.store.Upload(ctx, *obj)
}

// discard schedules deletion of the objects behind urls. Failures are
// only logged.
func (m MediaFiles) discard(urls ...string) {
	for _, url := range urls {
		if url == "" {
			continue
		}
		key, ok := m.store.KeyFromURL(url)
		if !ok {
			log.Warn().Str("url", url).Msg("service.discard: url is not a managed media object")
			continue
		}
		task, err := tasks.NewMediaDeleteTask(key)
		if err != nil {
			log.Error().Err(err).Str("key", key).Msg("service.discard: failed to build task")
			continue
		}
		if _, err := m.enqueuer.Enqueue(task); err != nil {
			log.Error().Err(err).Str("key", key).Msg("service.discard: failed to enqueue media deletion")
		}
	}
}
