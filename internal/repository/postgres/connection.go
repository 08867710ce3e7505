package postgres

import (
	"github.com/dom/vidtube/internal/domain"
	"github.com/dom/vidtube/internal/log"
	"github.com/dom/vidtube/internal/repository"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func NewConnection(databaseURL, env string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger: log.GormLogger(env),
	})
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates or updates every table the service owns.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.User{},
		&domain.Video{},
		&domain.Comment{},
		&domain.Tweet{},
		&domain.Playlist{},
		&domain.Like{},
		&domain.Subscription{},
	)
}

func NewRepositories(db *gorm.DB) *repository.Repositories {
	return &repository.Repositories{
		User:         NewUserRepository(db),
		Video:        NewVideoRepository(db),
		Comment:      NewCommentRepository(db),
		Tweet:        NewTweetRepository(db),
		Playlist:     NewPlaylistRepository(db),
		Like:         NewLikeRepository(db),
		Subscription: NewSubscriptionRepository(db),
		View:         NewViewSource(db),
	}
}
