package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"testing"
	"time"

	"github.com/dom/vidtube/internal/domain"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// UserBuilder creates test users with a builder pattern
type UserBuilder struct {
	username string
	email    string
	fullName string
	password string
}

// NewUserBuilder creates a new UserBuilder with default values
func NewUserBuilder() *UserBuilder {
	username := fmt.Sprintf("testuser_%s", uuid.New().String()[:8])
	return &UserBuilder{
		username: username,
		email:    username + "@example.com",
		fullName: "Test User",
		password: "testpassword123",
	}
}

func (b *UserBuilder) WithUsername(username string) *UserBuilder {
	b.username = username
	b.email = username + "@example.com"
	return b
}

func (b *UserBuilder) WithFullName(name string) *UserBuilder {
	b.fullName = name
	return b
}

// WithPassword sets the password
func (b *UserBuilder) WithPassword(password string) *UserBuilder {
	b.password = password
	return b
}

func (b *UserBuilder) Username() string { return b.username }

func (b *UserBuilder) Password() string { return b.password }

// Build creates the user in the database and returns the user with the raw password
func (b *UserBuilder) Build(t *testing.T, db *gorm.DB) (*domain.User, string) {
	t.Helper()

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(b.password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &domain.User{
		ID:           uuid.New(),
		Username:     domain.NormalizeUsername(b.username),
		Email:        domain.NormalizeEmail(b.email),
		FullName:     b.fullName,
		Avatar:       memStoreURL + "/avatars/" + b.username + ".png",
		PasswordHash: string(hashedPassword),
		WatchHistory: datatypes.NewJSONSlice([]uuid.UUID{}),
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	return user, b.password
}

// AuthResponse matches the API login response
type AuthResponse struct {
	User struct {
		ID       string `json:"id"`
		Username string `json:"username"`
	} `json:"user"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// BuildAndAuthenticate registers the user through the API, logs in and
// returns the user and access token.
func (b *UserBuilder) BuildAndAuthenticate(t *testing.T, ts *TestServer) (*domain.User, string) {
	t.Helper()

	req := MultipartRequest(t, http.MethodPost, ts.APIURL("/users/register"), map[string]string{
		"username": b.username,
		"email":    b.email,
		"fullName": b.fullName,
		"password": b.password,
	}, map[string][]byte{"avatar": []byte("avatar-bytes")}, "")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("failed to register user: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("unexpected register status code: %d", resp.StatusCode)
	}

	body, _ := json.Marshal(map[string]string{"username": b.username, "password": b.password})
	resp, err = http.Post(ts.APIURL("/users/login"), "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("failed to log in: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected login status code: %d", resp.StatusCode)
	}

	var authResp AuthResponse
	if err := json.NewDecoder(resp.Body).Decode(&authResp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	userID, _ := uuid.Parse(authResp.User.ID)
	user := &domain.User{
		ID:       userID,
		Username: authResp.User.Username,
	}

	return user, authResp.AccessToken
}

// VideoBuilder creates test videos with a builder pattern
type VideoBuilder struct {
	owner     *domain.User
	title     string
	duration  float64
	views     int64
	published bool
	createdAt time.Time
}

func NewVideoBuilder() *VideoBuilder {
	return &VideoBuilder{
		title:     fmt.Sprintf("video %s", uuid.New().String()[:8]),
		duration:  60,
		published: true,
		createdAt: time.Now(),
	}
}

func (b *VideoBuilder) WithOwner(user *domain.User) *VideoBuilder {
	b.owner = user
	return b
}

func (b *VideoBuilder) WithTitle(title string) *VideoBuilder {
	b.title = title
	return b
}

func (b *VideoBuilder) WithDuration(seconds float64) *VideoBuilder {
	b.duration = seconds
	return b
}

func (b *VideoBuilder) WithViews(views int64) *VideoBuilder {
	b.views = views
	return b
}

func (b *VideoBuilder) WithCreatedAt(at time.Time) *VideoBuilder {
	b.createdAt = at
	return b
}

// Unpublished builds a draft.
func (b *VideoBuilder) Unpublished() *VideoBuilder {
	b.published = false
	return b
}

// Build creates the video in the database, creating an owner when none was set.
func (b *VideoBuilder) Build(t *testing.T, db *gorm.DB) *domain.Video {
	t.Helper()

	if b.owner == nil {
		user, _ := NewUserBuilder().Build(t, db)
		b.owner = user
	}

	id := uuid.New()
	video := &domain.Video{
		ID:          id,
		Title:       b.title,
		Description: "description of " + b.title,
		VideoFile:   memStoreURL + "/videos/" + id.String() + ".mp4",
		Thumbnail:   memStoreURL + "/thumbnails/" + id.String() + ".png",
		Duration:    b.duration,
		Views:       b.views,
		IsPublished: true,
		OwnerID:     b.owner.ID,
		CreatedAt:   b.createdAt,
		UpdatedAt:   b.createdAt,
	}

	if err := db.Create(video).Error; err != nil {
		t.Fatalf("failed to create video: %v", err)
	}
	// is_published has a column default, so false must be written explicitly
	if !b.published {
		if err := db.Model(video).Update("is_published", false).Error; err != nil {
			t.Fatalf("failed to unpublish video: %v", err)
		}
	}

	return video
}

// CreateAuthenticatedRequest creates an HTTP request with auth token
func CreateAuthenticatedRequest(t *testing.T, method, url string, body interface{}, token string) *http.Request {
	t.Helper()

	var bodyReader *bytes.Buffer
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		bodyReader = bytes.NewBuffer(jsonBody)
	} else {
		bodyReader = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequestWithContext(context.Background(), method, url, bodyReader)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return req
}

// MultipartRequest builds a multipart/form-data request. Each entry in
// files becomes a part named after its key.
func MultipartRequest(t *testing.T, method, url string, fields map[string]string, files map[string][]byte, token string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("failed to write field %s: %v", k, err)
		}
	}
	for field, data := range files {
		part, err := mw.CreateFormFile(field, field+".bin")
		if err != nil {
			t.Fatalf("failed to create part %s: %v", field, err)
		}
		if _, err := part.Write(data); err != nil {
			t.Fatalf("failed to write part %s: %v", field, err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("failed to close multipart writer: %v", err)
	}

	req, err := http.NewRequestWithContext(context.Background(), method, url, &buf)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}
