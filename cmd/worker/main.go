package main

import (
	"context"

	"github.com/dom/vidtube/internal/config"
	applog "github.com/dom/vidtube/internal/log"
	"github.com/dom/vidtube/internal/media"
	"github.com/dom/vidtube/internal/tasks"
	"github.com/dom/vidtube/internal/worker"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file, using process environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	applog.Init(cfg.Environment)

	store, err := media.NewS3Store(context.Background(), cfg.Media)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to configure media store")
	}

	srv := asynq.NewServer(
		asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		asynq.Config{
			Concurrency: 4,
			Queues: map[string]int{
				tasks.QueueDefault: 2,
				tasks.QueueLow:     1,
			},
			RetryDelayFunc: worker.RetryDelay,
		},
	)

	mux := asynq.NewServeMux()
	worker.NewTaskHandler(store).Register(mux)

	log.Info().Str("redis", cfg.RedisAddr).Msg("worker starting")
	if err := srv.Run(mux); err != nil {
		log.Fatal().Err(err).Msg("worker stopped")
	}
}
