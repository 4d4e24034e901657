package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"blog-autowriter-be/internal/bootstrap"
	"blog-autowriter-be/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type envelope struct {
	Success bool            `json:"success"`
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Kind    string          `json:"kind"`
	Data    json.RawMessage `json:"data"`
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	dir := t.TempDir()

	hash, err := bcrypt.GenerateFromPassword([]byte("admin-pass"), bcrypt.MinCost)
	require.NoError(t, err)

	cfg := &config.Config{
		App: config.AppConfig{
			Port:               "0",
			ClientURL:          "http://localhost:5173",
			Environment:        "test",
			LogFilePath:        filepath.Join(dir, "app.log"),
			HubLogFilePath:     filepath.Join(dir, "realtime.log"),
			CorsAllowedOrigins: "http://localhost:5173",
			BodyLimitMB:        60,
		},
		Database: config.DatabaseConfig{Driver: "memory"},
		Ai:       config.AIConfig{Model: "gemini-test", CallTimeout: time.Second, RequestsPerMinute: 60, Burst: 1},
		Auth: config.AuthConfig{
			JWTSecret:         "server-test-secret",
			CredentialTTL:     time.Minute,
			SessionTTL:        time.Hour,
			AdminEmails:       []string{"admin@example.com"},
			AdminPasswordHash: string(hash),
		},
		Credits: config.CreditsConfig{CostPerBlog: 1, DefaultGrant: 3, NaverSignupBonus: 5, EmailVerifiedReward: 2},
		Storage: config.StorageConfig{Type: "local", LocalPath: filepath.Join(dir, "uploads")},
	}

	container := bootstrap.NewContainer(nil, cfg)
	t.Cleanup(container.Close)
	return New(cfg, container)
}

func do(t *testing.T, s *Server, method, path, token, body string) (int, envelope) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.GetApp().Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &env))
	}
	return resp.StatusCode, env
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	status, env := do(t, s, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, env.Success)
}

func TestMetricsExposesRegistry(t *testing.T) {
	s := newTestServer(t)

	resp, err := s.GetApp().Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "go_goroutines")
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/api/profile", "/api/messages", "/api/admin/profiles"} {
		status, env := do(t, s, http.MethodGet, path, "", "")
		assert.Equal(t, http.StatusUnauthorized, status, path)
		assert.False(t, env.Success, path)
		assert.Equal(t, "UNAUTHENTICATED", env.Kind, path)
	}

	status, _ := do(t, s, http.MethodGet, "/api/profile", "not-a-token", "")
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestSessionExchangeRejectsGarbage(t *testing.T) {
	s := newTestServer(t)

	status, env := do(t, s, http.MethodPost, "/api/auth/session", "", `{"credential":"garbage"}`)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.False(t, env.Success)
}

func TestAdminLoginThenListProfiles(t *testing.T) {
	s := newTestServer(t)

	status, _ := do(t, s, http.MethodPost, "/api/admin/login", "", `{"email":"admin@example.com","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, env := do(t, s, http.MethodPost, "/api/admin/login", "", `{"email":"admin@example.com","password":"admin-pass"}`)
	require.Equal(t, http.StatusOK, status)

	var login struct {
		Token string `json:"token"`
		Role  string `json:"role"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &login))
	require.NotEmpty(t, login.Token)
	assert.Equal(t, "admin", login.Role)

	status, env = do(t, s, http.MethodGet, "/api/admin/profiles?page=1&limit=10", login.Token, "")
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, env.Success)

	status, _ = do(t, s, http.MethodPost, "/api/auth/logout", login.Token, "")
	assert.Equal(t, http.StatusOK, status)

	status, _ = do(t, s, http.MethodGet, "/api/admin/profiles", login.Token, "")
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestWebsocketRejectsPlainRequest(t *testing.T) {
	s := newTestServer(t)

	status, _ := do(t, s, http.MethodGet, "/api/ws", "", "")
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestPasswordSignupExchangeAndLogin(t *testing.T) {
	s := newTestServer(t)

	status, _ := do(t, s, http.MethodPost, "/api/auth/password/signup", "",
		`{"email":"kim@example.com","password":"short","agree_terms":true,"agree_privacy":true,"agree_age":true}`)
	assert.Equal(t, http.StatusBadRequest, status)

	status, env := do(t, s, http.MethodPost, "/api/auth/password/signup", "",
		`{"email":"kim@example.com","password":"correct-horse","agree_terms":true,"agree_privacy":true,"agree_age":true}`)
	require.Equal(t, http.StatusCreated, status)
	var cred struct {
		Credential string `json:"credential"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &cred))

	status, env = do(t, s, http.MethodPost, "/api/auth/session", "", `{"credential":"`+cred.Credential+`"}`)
	require.Equal(t, http.StatusOK, status)
	var sess struct {
		Token   string `json:"token"`
		Profile struct {
			CreditBalance int `json:"credit_balance"`
		} `json:"profile"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &sess))
	assert.Equal(t, 3, sess.Profile.CreditBalance)

	status, _ = do(t, s, http.MethodPost, "/api/profile/email-reward", sess.Token, "")
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = do(t, s, http.MethodPost, "/api/auth/password/login", "", `{"email":"kim@example.com","password":"wrong-horse"}`)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = do(t, s, http.MethodPost, "/api/auth/password/login", "", `{"email":"kim@example.com","password":"correct-horse"}`)
	assert.Equal(t, http.StatusOK, status)
}
