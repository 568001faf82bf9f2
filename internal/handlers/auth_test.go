package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/serroba/golinks/internal/auth"
	"github.com/serroba/golinks/internal/config"
	"github.com/serroba/golinks/internal/handlers"
	"github.com/serroba/golinks/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSessionSecret = "test-session-secret"

func newAuthRouter(t *testing.T, providerNames []string, policy auth.Policy) (*chi.Mux, *store.MemoryStore) {
	t.Helper()

	memStore := store.NewMemoryStore()

	registry := auth.NewRegistry(
		auth.NewTestProvider(),
		auth.NewGoogleProvider(),
		auth.NewOIDCProvider(),
	)

	providers, err := auth.Assemble(providerNames, registry)
	require.NoError(t, err)

	cfg := &config.Config{
		SessionSecret:     testSessionSecret,
		SessionMaxAge:     time.Hour,
		GoogleClientID:    "client-id",
		GoogleCallbackURL: "https://go.example.com/auth/google/callback",
	}

	handler := handlers.NewAuthHandler(
		cfg,
		providers,
		auth.NewVerifier(memStore, policy, zap.NewNop()),
		auth.NewCodec(memStore, zap.NewNop()),
		zap.NewNop(),
	)

	router := chi.NewMux()
	handler.RegisterRoutes(router)

	return router, memStore
}

func sessionCookie(resp *http.Response) *http.Cookie {
	for _, cookie := range resp.Cookies() {
		if cookie.Name == handlers.SessionCookieName {
			return cookie
		}
	}

	return nil
}

func TestAuthLoginTestProvider(t *testing.T) {
	policy := auth.Policy{Users: []string{"mbland@acm.org"}}

	t.Run("verified login issues a session cookie and redirects home", func(t *testing.T) {
		t.Setenv(auth.TestIDEnvVar, "mbland@acm.org")

		router, memStore := newAuthRouter(t, []string{"test"}, policy)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/auth/test", nil))

		resp := rec.Result()
		defer resp.Body.Close()

		assert.Equal(t, http.StatusTemporaryRedirect, resp.StatusCode)
		assert.Equal(t, "/", resp.Header.Get("Location"))

		cookie := sessionCookie(resp)
		require.NotNil(t, cookie, "session cookie must be set")
		assert.True(t, cookie.HttpOnly)

		claims := &jwt.RegisteredClaims{}
		token, err := jwt.ParseWithClaims(cookie.Value, claims, func(_ *jwt.Token) (any, error) {
			return []byte(testSessionSecret), nil
		})
		require.NoError(t, err)
		assert.True(t, token.Valid)
		assert.Equal(t, "mbland@acm.org", claims.Subject)

		exists, err := memStore.Exists(context.Background(), "mbland@acm.org")
		require.NoError(t, err)
		assert.True(t, exists, "verified user must be persisted")
	})

	t.Run("fail sentinel denies access", func(t *testing.T) {
		t.Setenv(auth.TestIDEnvVar, auth.FailSentinel)

		router, _ := newAuthRouter(t, []string{"test"}, policy)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/auth/test", nil))

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("candidate outside the policy denies access", func(t *testing.T) {
		t.Setenv(auth.TestIDEnvVar, "nobody@other.org")

		router, _ := newAuthRouter(t, []string{"test"}, policy)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/auth/test", nil))

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("unset test identifier is a server error", func(t *testing.T) {
		t.Setenv(auth.TestIDEnvVar, "")

		router, _ := newAuthRouter(t, []string{"test"}, policy)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/auth/test", nil))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})

	t.Run("unknown provider is 404", func(t *testing.T) {
		router, _ := newAuthRouter(t, []string{"test"}, policy)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/auth/bogus", nil))

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("unassembled provider is 404", func(t *testing.T) {
		// google is registered but not assembled for this deployment
		router, _ := newAuthRouter(t, []string{"test"}, policy)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/auth/google", nil))

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestAuthLoginOAuth(t *testing.T) {
	policy := auth.Policy{Domains: []string{"example.com"}}

	t.Run("redirects to the provider with a state cookie", func(t *testing.T) {
		router, _ := newAuthRouter(t, []string{"google"}, policy)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/auth/google", nil))

		resp := rec.Result()
		defer resp.Body.Close()

		require.Equal(t, http.StatusTemporaryRedirect, resp.StatusCode)

		location, err := url.Parse(resp.Header.Get("Location"))
		require.NoError(t, err)
		assert.Equal(t, "accounts.google.com", location.Host)
		assert.Equal(t, "client-id", location.Query().Get("client_id"))

		var state string

		for _, cookie := range resp.Cookies() {
			if cookie.Name == "oauthstate" {
				state = cookie.Value
			}
		}

		require.NotEmpty(t, state, "state cookie must be set")
		assert.Equal(t, state, location.Query().Get("state"))
	})

	t.Run("callback rejects a state mismatch", func(t *testing.T) {
		router, _ := newAuthRouter(t, []string{"google"}, policy)

		req := httptest.NewRequest(http.MethodGet, "/auth/google/callback?state=forged&code=abc", nil)
		req.AddCookie(&http.Cookie{Name: "oauthstate", Value: "genuine"})

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("callback without a state cookie is rejected", func(t *testing.T) {
		router, _ := newAuthRouter(t, []string{"google"}, policy)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/auth/google/callback?state=abc", nil))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestAuthLogout(t *testing.T) {
	router, _ := newAuthRouter(t, []string{"test"}, auth.Policy{Users: []string{"mbland@acm.org"}})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/auth/logout", nil))

	resp := rec.Result()
	defer resp.Body.Close()

	assert.Equal(t, http.StatusTemporaryRedirect, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))

	cookie := sessionCookie(resp)
	require.NotNil(t, cookie)
	assert.Empty(t, cookie.Value)
	assert.True(t, cookie.Expires.Before(time.Now()))
}
