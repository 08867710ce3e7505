package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dom/vidtube/internal/config"
	"github.com/dom/vidtube/internal/domain"
	"github.com/dom/vidtube/internal/media"
	"github.com/dom/vidtube/internal/repository"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"lukechampine.com/blake3"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("user with this username or email already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrMissingFields      = errors.New("required fields are missing")
	ErrAvatarRequired     = errors.New("avatar file is required")
	ErrInvalidToken       = errors.New("invalid token")
)

type AuthService struct {
	userRepo repository.UserRepository
	files    MediaFiles
	cfg      *config.Config
}

func NewAuthService(userRepo repository.UserRepository, files MediaFiles, cfg *config.Config) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		files:    files,
		cfg:      cfg,
	}
}

type RegisterInput struct {
	Username   string
	Email      string
	FullName   string
	Password   string
	Avatar     *media.Object
	CoverImage *media.Object
}

type LoginInput struct {
	// Login is a username or an email address.
	Login    string
	Password string
}

type AuthResult struct {
	User         *domain.User
	AccessToken  string
	RefreshToken string
}

// AccessClaims are carried by access tokens.
type AccessClaims struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	jwt.RegisteredClaims
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	username := domain.NormalizeUsername(input.Username)
	email := domain.NormalizeEmail(input.Email)
	fullName := strings.TrimSpace(input.FullName)
	if username == "" || email == "" || fullName == "" || input.Password == "" {
		return nil, ErrMissingFields
	}
	if input.Avatar == nil {
		return nil, ErrAvatarRequired
	}

	exists, err := s.userRepo.ExistsByUsernameOrEmail(ctx, username, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrUserExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	avatar, err := s.files.upload(ctx, input.Avatar)
	if err != nil {
		return nil, fmt.Errorf("failed to upload avatar: %w", err)
	}
	cover, err := s.files.upload(ctx, input.CoverImage)
	if err != nil {
		s.files.discard(avatar)
		return nil, fmt.Errorf("failed to upload cover image: %w", err)
	}

	user := &domain.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		FullName:     fullName,
		Avatar:       avatar,
		CoverImage:   cover,
		PasswordHash: string(hashedPassword),
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		s.files.discard(avatar, cover)
		return nil, err
	}

	return s.generateTokens(ctx, user)
}

func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	if strings.TrimSpace(input.Login) == "" || input.Password == "" {
		return nil, ErrMissingFields
	}

	user, err := s.userRepo.GetByLogin(ctx, input.Login)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.generateTokens(ctx, user)
}

// Refresh rotates both tokens. The presented refresh token must match the
// digest stored at the last login or refresh.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	if refreshToken == "" {
		return nil, ErrInvalidToken
	}
	claims := &jwt.RegisteredClaims{}
	if _, err := s.parse(refreshToken, s.cfg.RefreshTokenSecret, claims); err != nil {
		return nil, ErrInvalidToken
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, ErrInvalidToken
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	if user.RefreshTokenHash == "" ||
		subtle.ConstantTimeCompare([]byte(user.RefreshTokenHash), []byte(tokenDigest(refreshToken))) != 1 {
		return nil, ErrInvalidToken
	}

	return s.generateTokens(ctx, user)
}

func (s *AuthService) Logout(ctx context.Context, userID uuid.UUID) error {
	return s.userRepo.SetRefreshTokenHash(ctx, userID, "")
}

func (s *AuthService) ChangePassword(ctx context.Context, userID uuid.UUID, oldPassword, newPassword string) error {
	if oldPassword == "" || newPassword == "" {
		return ErrMissingFields
	}
	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldPassword)); err != nil {
		return ErrInvalidCredentials
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.PasswordHash = string(hashed)
	user.UpdatedAt = time.Now()
	return s.userRepo.Update(ctx, user)
}

func (s *AuthService) GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *AuthService) UpdateAccount(ctx context.Context, userID uuid.UUID, fullName, email string) (*domain.User, error) {
	fullName = strings.TrimSpace(fullName)
	email = domain.NormalizeEmail(email)
	if fullName == "" || email == "" {
		return nil, ErrMissingFields
	}

	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if email != user.Email {
		other, err := s.userRepo.GetByLogin(ctx, email)
		if err == nil && other.ID != user.ID {
			return nil, ErrUserExists
		}
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	user.FullName = fullName
	user.Email = email
	user.UpdatedAt = time.Now()
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *AuthService) UpdateAvatar(ctx context.Context, userID uuid.UUID, obj *media.Object) (*domain.User, error) {
	if obj == nil {
		return nil, ErrAvatarRequired
	}
	return s.replaceImage(ctx, userID, obj, func(u *domain.User) *string { return &u.Avatar })
}

func (s *AuthService) UpdateCoverImage(ctx context.Context, userID uuid.UUID, obj *media.Object) (*domain.User, error) {
	if obj == nil {
		return nil, ErrMissingFields
	}
	return s.replaceImage(ctx, userID, obj, func(u *domain.User) *string { return &u.CoverImage })
}

func (s *AuthService) replaceImage(ctx context.Context, userID uuid.UUID, obj *media.Object, field func(*domain.User) *string) (*domain.User, error) {
	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	url, err := s.files.upload(ctx, obj)
	if err != nil {
		return nil, fmt.Errorf("failed to upload image: %w", err)
	}

	slot := field(user)
	old := *slot
	*slot = url
	user.UpdatedAt = time.Now()
	if err := s.userRepo.Update(ctx, user); err != nil {
		s.files.discard(url)
		return nil, err
	}
	s.files.discard(old)
	return user, nil
}

// ValidateToken checks an access token and returns its subject.
func (s *AuthService) ValidateToken(tokenString string) (uuid.UUID, error) {
	claims := &AccessClaims{}
	if _, err := s.parse(tokenString, s.cfg.AccessTokenSecret, claims); err != nil {
		return uuid.Nil, err
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}
	return userID, nil
}

func (s *AuthService) parse(tokenString, secret string, claims jwt.Claims) (*jwt.Token, error) {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	return token, nil
}

func (s *AuthService) generateTokens(ctx context.Context, user *domain.User) (*AuthResult, error) {
	now := time.Now()

	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, AccessClaims{
		Username: user.Username,
		Email:    user.Email,
		FullName: user.FullName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.AccessTokenTTL)),
		},
	}).SignedString([]byte(s.cfg.AccessTokenSecret))
	if err != nil {
		return nil, err
	}

	refreshToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ID:        uuid.New().String(),
		Subject:   user.ID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.RefreshTokenTTL)),
	}).SignedString([]byte(s.cfg.RefreshTokenSecret))
	if err != nil {
		return nil, err
	}

	digest := tokenDigest(refreshToken)
	if err := s.userRepo.SetRefreshTokenHash(ctx, user.ID, digest); err != nil {
		return nil, err
	}
	user.RefreshTokenHash = digest

	return &AuthResult{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

func tokenDigest(token string) string {
	return fmt.Sprintf("%x", blake3.Sum256([]byte(token)))
}
