package postgres

import (
	"context"

	"github.com/dom/vidtube/internal/domain"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *userRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	if user.WatchHistory == nil {
		user.WatchHistory = datatypes.JSONSlice[uuid.UUID]{}
	}
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).First(&user, "username = ?", domain.NormalizeUsername(username)).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByLogin(ctx context.Context, login string) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).
		Where("username = ? OR email = ?", domain.NormalizeUsername(login), domain.NormalizeEmail(login)).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.User{}).
		Where("username = ? OR email = ?", domain.NormalizeUsername(username), domain.NormalizeEmail(email)).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Update saves profile fields. Watch history and the refresh digest have
// their own writers and are left alone here.
func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	return r.db.WithContext(ctx).
		Model(user).
		Select("username", "email", "full_name", "avatar", "cover_image", "password_hash", "updated_at").
		Updates(user).Error
}

func (r *userRepository) SetRefreshTokenHash(ctx context.Context, id uuid.UUID, hash string) error {
	return r.db.WithContext(ctx).
		Model(&domain.User{}).
		Where("id = ?", id).
		UpdateColumn("refresh_token_hash", hash).Error
}

// AppendWatchHistory pushes a video onto the end of the user's history in a
// single statement. Repeats are kept.
func (r *userRepository) AppendWatchHistory(ctx context.Context, id, videoID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&domain.User{}).
		Where("id = ?", id).
		UpdateColumn("watch_history", gorm.Expr("watch_history || jsonb_build_array(?::text)", videoID.String())).Error
}
