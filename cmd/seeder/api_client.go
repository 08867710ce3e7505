package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

// APIClient talks to a running vidtube server.
type APIClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewAPIClient(baseURL string) *APIClient {
	return &APIClient{
		baseURL: baseURL + "/api/v1",
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

type AuthResponse struct {
	User        User   `json:"user"`
	AccessToken string `json:"accessToken"`
}

type Video struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// upload is one file part of a multipart request.
type upload struct {
	field, filename string
	data            []byte
}

// RegisterUser creates an account with a placeholder avatar and logs in.
func (c *APIClient) RegisterUser(username, password string) (*User, string, error) {
	fields := map[string]string{
		"username": username,
		"email":    username + "@seed.local",
		"fullName": username,
		"password": password,
	}
	resp, err := c.multipart(http.MethodPost, "/users/register", fields, []upload{
		{field: "avatar", filename: "avatar.png", data: placeholderImage},
	}, "")
	if err != nil {
		return nil, "", fmt.Errorf("register request failed: %w", err)
	}
	if err := expectStatus(resp, http.StatusCreated); err != nil {
		return nil, "", fmt.Errorf("register: %w", err)
	}
	resp.Body.Close()

	var auth AuthResponse
	if err := c.doJSON(http.MethodPost, "/users/login", map[string]string{
		"username": username,
		"password": password,
	}, "", http.StatusOK, &auth); err != nil {
		return nil, "", fmt.Errorf("login: %w", err)
	}
	return &auth.User, auth.AccessToken, nil
}

func (c *APIClient) PublishVideo(token, title string, duration float64) (*Video, error) {
	fields := map[string]string{
		"title":       title,
		"description": "Seeded video " + title,
		"duration":    fmt.Sprintf("%.1f", duration),
	}
	resp, err := c.multipart(http.MethodPost, "/videos", fields, []upload{
		{field: "videoFile", filename: "clip.mp4", data: placeholderVideo},
		{field: "thumbnail", filename: "thumb.png", data: placeholderImage},
	}, token)
	if err != nil {
		return nil, fmt.Errorf("publish request failed: %w", err)
	}
	if err := expectStatus(resp, http.StatusCreated); err != nil {
		return nil, fmt.Errorf("publish: %w", err)
	}
	defer resp.Body.Close()

	var video Video
	if err := json.NewDecoder(resp.Body).Decode(&video); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &video, nil
}

func (c *APIClient) WatchVideo(token, videoID string) error {
	return c.doJSON(http.MethodGet, "/videos/"+videoID, nil, token, http.StatusOK, nil)
}

func (c *APIClient) LikeVideo(token, videoID string) error {
	return c.doJSON(http.MethodPost, "/likes/toggle/v/"+videoID, nil, token, http.StatusOK, nil)
}

func (c *APIClient) Comment(token, videoID, content string) error {
	return c.doJSON(http.MethodPost, "/comments/"+videoID, map[string]string{"content": content}, token, http.StatusCreated, nil)
}

func (c *APIClient) Subscribe(token, channelID string) error {
	return c.doJSON(http.MethodPost, "/subscriptions/c/"+channelID, nil, token, http.StatusOK, nil)
}

func (c *APIClient) Tweet(token, content string) error {
	return c.doJSON(http.MethodPost, "/tweets", map[string]string{"content": content}, token, http.StatusCreated, nil)
}

func (c *APIClient) doJSON(method, path string, body interface{}, token string, want int, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := expectStatus(resp, want); err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *APIClient) multipart(method, path string, fields map[string]string, files []upload, token string) (*http.Response, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return nil, err
		}
	}
	for _, f := range files {
		part, err := mw.CreateFormFile(f.field, f.filename)
		if err != nil {
			return nil, err
		}
		if _, err := part.Write(f.data); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequest(method, c.baseURL+path, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return c.httpClient.Do(req)
}

func expectStatus(resp *http.Response, want int) error {
	if resp.StatusCode == want {
		return nil
	}
	bodyBytes, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	return fmt.Errorf("status %d: %s", resp.StatusCode, string(bodyBytes))
}

var (
	// 1x1 transparent PNG
	placeholderImage = []byte{
		0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d,
		0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
		0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4, 0x89, 0x00, 0x00, 0x00,
		0x0a, 0x49, 0x44, 0x41, 0x54, 0x78, 0x9c, 0x63, 0x00, 0x01, 0x00, 0x00,
		0x05, 0x00, 0x01, 0x0d, 0x0a, 0x2d, 0xb4, 0x00, 0x00, 0x00, 0x00, 0x49,
		0x45, 0x4e, 0x44, 0xae, 0x42, 0x60, 0x82,
	}
	// ftyp box only; enough for the upload path, not for playback
	placeholderVideo = []byte{
		0x00, 0x00, 0x00, 0x18, 0x66, 0x74, 0x79, 0x70, 0x6d, 0x70, 0x34, 0x32,
		0x00, 0x00, 0x00, 0x00, 0x6d, 0x70, 0x34, 0x32, 0x69, 0x73, 0x6f, 0x6d,
	}
)
