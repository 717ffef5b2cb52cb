package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"prodapi/models"
	"prodapi/pkg/session"
)

// helper to perform requests with an optional bearer token
func performRequest(r http.Handler, method, path string, body io.Reader, token string, contentType string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

// memorySource backs the auth core without a database; failure injects a
// store fault.
type memorySource struct {
	byName  map[string]*models.User
	failure error
}

func (m *memorySource) ByUsername(_ context.Context, username string) (*models.User, error) {
	if m.failure != nil {
		return nil, m.failure
	}
	u, ok := m.byName[username]
	if !ok {
		return nil, session.ErrUserNotFound
	}
	return u, nil
}

func newMemorySource(t *testing.T) *memorySource {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)
	inactiveHash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)
	return &memorySource{byName: map[string]*models.User{
		"alice": {Username: "alice", Email: "alice@example.com", HashedPassword: hash, IsActive: true},
		"bob":   {Username: "bob", Email: "bob@example.com", HashedPassword: inactiveHash, IsActive: false},
	}}
}

func setupAuthTestServer(t *testing.T, source session.UserSource) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, err := loadConfig("no-such-config.yml")
	require.NoError(t, err)
	c.Auth.Secret = "test-secret"
	setupConfig(c, zap.NewNop())
	setupAuth(c, source)
	r := gin.New()
	setupRoutes(r)
	return r
}

func login(t *testing.T, r http.Handler, username, password string) *httptest.ResponseRecorder {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"username": username, "password": password})
	return performRequest(r, http.MethodPost, "/api/v1/auth/login", bytes.NewBuffer(body), "", "application/json")
}

func TestLoginAndProtectedFlow(t *testing.T) {
	r := setupAuthTestServer(t, newMemorySource(t))

	resp := login(t, r, "alice", "secret123")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var loginResp map[string]string
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &loginResp))
	token := loginResp["token"]
	require.NotEmpty(t, token)
	require.Equal(t, "bearer", loginResp["token_type"])

	// protected call with the fresh token succeeds
	resp = performRequest(r, http.MethodGet, "/api/v1/auth/me", nil, token, "")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	var me models.User
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &me))
	require.Equal(t, "alice", me.Username)

	// logout revokes the presented token
	resp = performRequest(r, http.MethodPost, "/api/v1/auth/logout", nil, token, "")
	require.Equal(t, http.StatusOK, resp.Code)

	// the same token is now rejected
	resp = performRequest(r, http.MethodGet, "/api/v1/auth/me", nil, token, "")
	require.Equal(t, http.StatusUnauthorized, resp.Code)
	require.Equal(t, "Bearer", resp.Header().Get("WWW-Authenticate"))
}

func TestLoginWrongPassword(t *testing.T) {
	r := setupAuthTestServer(t, newMemorySource(t))

	resp := login(t, r, "alice", "wrong")
	require.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestLoginUnknownUser(t *testing.T) {
	r := setupAuthTestServer(t, newMemorySource(t))

	resp := login(t, r, "ghost", "secret123")
	require.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestProtectedWithoutToken(t *testing.T) {
	r := setupAuthTestServer(t, newMemorySource(t))

	resp := performRequest(r, http.MethodGet, "/api/v1/auth/me", nil, "", "")
	require.Equal(t, http.StatusUnauthorized, resp.Code)
	require.Equal(t, "Bearer", resp.Header().Get("WWW-Authenticate"))
}

func TestProtectedWithGarbageToken(t *testing.T) {
	r := setupAuthTestServer(t, newMemorySource(t))

	resp := performRequest(r, http.MethodGet, "/api/v1/auth/me", nil, "not-a-token", "")
	require.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestExpiredTokenRejected(t *testing.T) {
	r := setupAuthTestServer(t, newMemorySource(t))

	// mint an already-expired token through the shared registry; it stays
	// registered, only the decode gate fails
	expired := session.NewIssuer([]byte(cfg.Auth.Secret), -time.Minute, registry)
	token, err := expired.Issue("alice")
	require.NoError(t, err)
	require.True(t, registry.Active(token))

	resp := performRequest(r, http.MethodGet, "/api/v1/auth/me", nil, token, "")
	require.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestInactiveAccountDistinctFromUnauthorized(t *testing.T) {
	r := setupAuthTestServer(t, newMemorySource(t))

	// credentials are fine, the account is disabled
	resp := login(t, r, "bob", "secret123")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	var loginResp map[string]string
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &loginResp))

	resp = performRequest(r, http.MethodGet, "/api/v1/auth/me", nil, loginResp["token"], "")
	require.Equal(t, http.StatusBadRequest, resp.Code)
	require.Empty(t, resp.Header().Get("WWW-Authenticate"))
}

func TestDisabledMidSession(t *testing.T) {
	source := newMemorySource(t)
	r := setupAuthTestServer(t, source)

	resp := login(t, r, "alice", "secret123")
	require.Equal(t, http.StatusOK, resp.Code)
	var loginResp map[string]string
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &loginResp))
	token := loginResp["token"]

	resp = performRequest(r, http.MethodGet, "/api/v1/auth/me", nil, token, "")
	require.Equal(t, http.StatusOK, resp.Code)

	// disabling the account flips the outcome to inactive, not unauthorized
	source.byName["alice"].IsActive = false
	resp = performRequest(r, http.MethodGet, "/api/v1/auth/me", nil, token, "")
	require.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestStoreFaultIsServerError(t *testing.T) {
	source := newMemorySource(t)
	r := setupAuthTestServer(t, source)

	resp := login(t, r, "alice", "secret123")
	require.Equal(t, http.StatusOK, resp.Code)
	var loginResp map[string]string
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &loginResp))
	token := loginResp["token"]

	source.failure = errors.New("store unreachable")

	resp = performRequest(r, http.MethodGet, "/api/v1/auth/me", nil, token, "")
	require.Equal(t, http.StatusInternalServerError, resp.Code)

	resp = login(t, r, "alice", "secret123")
	require.Equal(t, http.StatusInternalServerError, resp.Code)
}
