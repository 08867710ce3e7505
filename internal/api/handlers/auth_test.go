package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/dom/vidtube/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthHandler_Register(t *testing.T) {
	ts := testutil.NewTestServer(t)

	avatar := map[string][]byte{"avatar": []byte("avatar-bytes")}
	tests := []struct {
		name           string
		fields         map[string]string
		files          map[string][]byte
		setup          func()
		expectedStatus int
		checkResponse  func(*testing.T, *http.Response)
	}{
		{
			name: "successful registration",
			fields: map[string]string{
				"username": "NewUser",
				"email":    "New@Example.com",
				"fullName": "New User",
				"password": "password123",
			},
			files:          avatar,
			expectedStatus: http.StatusCreated,
			checkResponse: func(t *testing.T, resp *http.Response) {
				var result map[string]any
				testutil.AssertJSONResponse(t, resp, &result)
				assert.Equal(t, "newuser", result["username"])
				assert.Equal(t, "new@example.com", result["email"])
				assert.NotEmpty(t, result["avatar"])
				assert.NotContains(t, result, "passwordHash")
			},
		},
		{
			name: "missing avatar",
			fields: map[string]string{
				"username": "noavatar",
				"email":    "noavatar@example.com",
				"fullName": "No Avatar",
				"password": "password123",
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "missing password",
			fields: map[string]string{
				"username": "nopass",
				"email":    "nopass@example.com",
				"fullName": "No Pass",
			},
			files:          avatar,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "duplicate username",
			fields: map[string]string{
				"username": "existinguser",
				"email":    "other@example.com",
				"fullName": "Someone",
				"password": "password123",
			},
			files: avatar,
			setup: func() {
				testutil.NewUserBuilder().WithUsername("existinguser").Build(t, ts.DB.DB)
			},
			expectedStatus: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts.DB.Truncate(t)

			if tt.setup != nil {
				tt.setup()
			}

			req := testutil.MultipartRequest(t, http.MethodPost, ts.APIURL("/users/register"), tt.fields, tt.files, "")
			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			if tt.checkResponse != nil {
				tt.checkResponse(t, resp)
			}
		})
	}
}

func TestAuthHandler_Login(t *testing.T) {
	ts := testutil.NewTestServer(t)

	user, rawPassword := testutil.NewUserBuilder().
		WithUsername("loginuser").
		WithPassword("correctpassword").
		Build(t, ts.DB.DB)

	tests := []struct {
		name           string
		request        map[string]string
		expectedStatus int
		checkResponse  func(*testing.T, *http.Response)
	}{
		{
			name:           "login by username",
			request:        map[string]string{"username": "LoginUser", "password": rawPassword},
			expectedStatus: http.StatusOK,
			checkResponse: func(t *testing.T, resp *http.Response) {
				var result testutil.AuthResponse
				testutil.AssertJSONResponse(t, resp, &result)
				assert.Equal(t, user.ID.String(), result.User.ID)
				assert.NotEmpty(t, result.AccessToken)
				assert.NotEmpty(t, result.RefreshToken)

				names := make([]string, 0, len(resp.Cookies()))
				for _, c := range resp.Cookies() {
					names = append(names, c.Name)
					assert.True(t, c.HttpOnly)
				}
				assert.ElementsMatch(t, []string{"accessToken", "refreshToken"}, names)
			},
		},
		{
			name:           "login by email",
			request:        map[string]string{"email": user.Email, "password": rawPassword},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "wrong password",
			request:        map[string]string{"username": user.Username, "password": "wrongpassword"},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "unknown user",
			request:        map[string]string{"username": "nobody", "password": rawPassword},
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, _ := json.Marshal(tt.request)
			resp, err := http.Post(ts.APIURL("/users/login"), "application/json", bytes.NewBuffer(body))
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			if tt.checkResponse != nil {
				tt.checkResponse(t, resp)
			}
		})
	}
}

func TestAuthHandler_Me(t *testing.T) {
	ts := testutil.NewTestServer(t)
	user, token := testutil.NewUserBuilder().WithUsername("meuser").BuildAndAuthenticate(t, ts)

	t.Run("with token", func(t *testing.T) {
		req := testutil.CreateAuthenticatedRequest(t, http.MethodGet, ts.APIURL("/users/me"), nil, token)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		require.Equal(t, http.StatusOK, resp.StatusCode)
		var result map[string]any
		testutil.AssertJSONResponse(t, resp, &result)
		assert.Equal(t, user.ID.String(), result["id"])
	})

	t.Run("without token", func(t *testing.T) {
		resp, err := http.Get(ts.APIURL("/users/me"))
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("garbage token", func(t *testing.T) {
		req := testutil.CreateAuthenticatedRequest(t, http.MethodGet, ts.APIURL("/users/me"), nil, "not-a-jwt")
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestAuthHandler_RefreshAndLogout(t *testing.T) {
	ts := testutil.NewTestServer(t)
	b := testutil.NewUserBuilder()
	b.BuildAndAuthenticate(t, ts)

	login := func() testutil.AuthResponse {
		body, _ := json.Marshal(map[string]string{"username": b.Username(), "password": b.Password()})
		resp, err := http.Post(ts.APIURL("/users/login"), "application/json", bytes.NewBuffer(body))
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var result testutil.AuthResponse
		testutil.AssertJSONResponse(t, resp, &result)
		return result
	}
	refresh := func(token string) *http.Response {
		body, _ := json.Marshal(map[string]string{"refreshToken": token})
		resp, err := http.Post(ts.APIURL("/users/refresh-token"), "application/json", bytes.NewBuffer(body))
		require.NoError(t, err)
		return resp
	}

	first := login()

	resp := refresh(first.RefreshToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var rotated testutil.AuthResponse
	testutil.AssertJSONResponse(t, resp, &rotated)
	resp.Body.Close()
	assert.NotEqual(t, first.RefreshToken, rotated.RefreshToken)

	resp = refresh(first.RefreshToken)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	req := testutil.CreateAuthenticatedRequest(t, http.MethodPost, ts.APIURL("/users/logout"), nil, rotated.AccessToken)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	resp = refresh(rotated.RefreshToken)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}
