package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dom/vidtube/internal/api"
	"github.com/dom/vidtube/internal/api/middleware"
	"github.com/dom/vidtube/internal/config"
	applog "github.com/dom/vidtube/internal/log"
	"github.com/dom/vidtube/internal/media"
	"github.com/dom/vidtube/internal/repository/postgres"
	"github.com/dom/vidtube/internal/service"
	"github.com/dom/vidtube/internal/websocket"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
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

	db, err := postgres.NewConnection(cfg.DatabaseURL, cfg.Environment)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	repos := postgres.NewRepositories(db)

	store, err := media.NewS3Store(context.Background(), cfg.Media)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to configure media store")
	}

	queue := asynq.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer queue.Close()

	hub := websocket.NewHub()
	go hub.Run()

	services := service.NewServices(repos, cfg, store, queue, hub)

	limiter := middleware.NewRateLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst, 10*time.Minute)
	router := api.NewRouter(services, hub, cfg, limiter)

	// Uploads stream through the handler, so the write timeout is generous.
	srv := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Port,
		Handler:      router,
		ReadTimeout:  5 * time.Minute,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Environment).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}
	limiter.Stop()
	hub.Stop()

	log.Info().Msg("server stopped")
}
