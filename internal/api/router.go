package api

import (
	"net/http"

	"github.com/dom/vidtube/internal/api/handlers"
	"github.com/dom/vidtube/internal/api/middleware"
	"github.com/dom/vidtube/internal/config"
	"github.com/dom/vidtube/internal/domain"
	"github.com/dom/vidtube/internal/metrics"
	"github.com/dom/vidtube/internal/service"
	"github.com/dom/vidtube/internal/websocket"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

func NewRouter(services *service.Services, hub *websocket.Hub, cfg *config.Config, limiter *middleware.RateLimiter) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(middleware.RequestLogger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(metrics.Middleware)
	r.Use(middleware.CORS(cfg.IsDevelopment()))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})
	r.Handle("/metrics", metrics.Handler())

	authHandler := handlers.NewAuthHandler(services.Auth, cfg)
	videoHandler := handlers.NewVideoHandler(services.Video, cfg)
	commentHandler := handlers.NewCommentHandler(services.Comment)
	tweetHandler := handlers.NewTweetHandler(services.Tweet)
	playlistHandler := handlers.NewPlaylistHandler(services.Playlist)
	likeHandler := handlers.NewLikeHandler(services.Like)
	subscriptionHandler := handlers.NewSubscriptionHandler(services.Subscription)
	channelHandler := handlers.NewChannelHandler(services.Channel, services.Feed)
	wsHandler := handlers.NewWebSocketHandler(hub, services.Auth, cfg.IsDevelopment())

	requireAuth := middleware.Auth(services.Auth)
	optionalAuth := middleware.OptionalAuth(services.Auth)

	r.Route("/api/v1", func(r chi.Router) {
		if limiter != nil {
			r.Use(limiter.Writes)
		}

		r.Route("/users", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/refresh-token", authHandler.Refresh)

			r.With(optionalAuth).Get("/c/{username}", channelHandler.Profile)
			r.Get("/c/{username}/feed.xml", channelHandler.Feed)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Post("/logout", authHandler.Logout)
				r.Get("/me", authHandler.Me)
				r.Post("/change-password", authHandler.ChangePassword)
				r.Patch("/update-account", authHandler.UpdateAccount)
				r.Patch("/avatar", authHandler.UpdateAvatar)
				r.Patch("/cover-image", authHandler.UpdateCoverImage)
				r.Get("/history", channelHandler.WatchHistory)
			})
		})

		r.Route("/videos", func(r chi.Router) {
			r.Get("/", videoHandler.List)
			r.With(optionalAuth).Get("/{videoId}", videoHandler.Get)
			r.With(optionalAuth).Get("/channel/{userId}", videoHandler.ChannelVideos)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Post("/", videoHandler.Publish)
				r.Patch("/{videoId}", videoHandler.Update)
				r.Delete("/{videoId}", videoHandler.Delete)
				r.Patch("/toggle/publish/{videoId}", videoHandler.TogglePublish)
			})
		})

		r.Route("/comments", func(r chi.Router) {
			r.Get("/{videoId}", commentHandler.List)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Post("/{videoId}", commentHandler.Add)
				r.Patch("/c/{commentId}", commentHandler.Update)
				r.Delete("/c/{commentId}", commentHandler.Delete)
			})
		})

		r.Route("/tweets", func(r chi.Router) {
			r.Get("/user/{userId}", tweetHandler.ListByUser)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Post("/", tweetHandler.Create)
				r.Patch("/{tweetId}", tweetHandler.Update)
				r.Delete("/{tweetId}", tweetHandler.Delete)
			})
		})

		r.Route("/playlist", func(r chi.Router) {
			r.Get("/{playlistId}", playlistHandler.Get)
			r.Get("/user/{userId}", playlistHandler.ListByUser)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Post("/", playlistHandler.Create)
				r.Patch("/{playlistId}", playlistHandler.Update)
				r.Delete("/{playlistId}", playlistHandler.Delete)
				r.Patch("/add/{videoId}/{playlistId}", playlistHandler.AddVideo)
				r.Patch("/remove/{videoId}/{playlistId}", playlistHandler.RemoveVideo)
			})
		})

		r.Route("/likes", func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/toggle/v/{targetId}", likeHandler.Toggle(domain.LikeKindVideo))
			r.Post("/toggle/c/{targetId}", likeHandler.Toggle(domain.LikeKindComment))
			r.Post("/toggle/t/{targetId}", likeHandler.Toggle(domain.LikeKindTweet))
			r.Get("/videos", likeHandler.LikedVideos)
		})

		r.Route("/subscriptions", func(r chi.Router) {
			r.Get("/c/{channelId}", subscriptionHandler.Subscribers)
			r.Get("/u/{subscriberId}", subscriptionHandler.SubscribedChannels)
			r.With(requireAuth).Post("/c/{channelId}", subscriptionHandler.Toggle)
		})

		r.Route("/dashboard", func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/stats", channelHandler.Stats)
			r.Get("/videos", videoHandler.Dashboard)
		})

		r.Get("/ws", wsHandler.Handle)
	})

	return r
}
