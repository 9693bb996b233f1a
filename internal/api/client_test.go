package api

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chungmin23/storefront/internal/storage"
)

func testClient(t *testing.T, handler http.Handler) (*Client, storage.Store) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	store := storage.NewMemory()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(srv.URL, 5*time.Second, store, log), store
}

func TestBearerInjection(t *testing.T) {
	var gotAuth string
	client, store := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{}`))
	}))

	require.NoError(t, store.Set(storage.KeyAccessToken, "tok-123"))
	require.NoError(t, client.Get(context.Background(), "/products", nil, nil))
	assert.Equal(t, "Bearer tok-123", gotAuth)
}

func TestRefreshAndRetryOnce(t *testing.T) {
	var requests []string
	client, store := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests = append(requests, r.URL.Path)
		switch r.URL.Path {
		case "/member/refresh":
			w.Write([]byte(`{"accessToken":"fresh","refreshToken":"fresh-r"}`))
		default:
			if r.Header.Get("Authorization") != "Bearer fresh" {
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"error":"token expired"}`))
				return
			}
			w.Write([]byte(`{"ok":true}`))
		}
	}))

	require.NoError(t, store.Set(storage.KeyAccessToken, "stale"))
	require.NoError(t, store.Set(storage.KeyRefreshToken, "refresh-1"))

	var out struct {
		OK bool `json:"ok"`
	}
	require.NoError(t, client.Get(context.Background(), "/orders/my", nil, &out))
	assert.True(t, out.OK)

	// One failed attempt, one refresh, one successful retry.
	assert.Equal(t, []string{"/orders/my", "/member/refresh", "/orders/my"}, requests)

	token, _ := store.Get(storage.KeyAccessToken)
	assert.Equal(t, "fresh", token)
	refresh, _ := store.Get(storage.KeyRefreshToken)
	assert.Equal(t, "fresh-r", refresh)
}

func TestFailedRefreshClearsSession(t *testing.T) {
	client, store := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/member/refresh" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"token expired"}`))
	}))

	require.NoError(t, store.Set(storage.KeyAccessToken, "stale"))
	require.NoError(t, store.Set(storage.KeyRefreshToken, "stale-r"))
	require.NoError(t, store.Set(storage.KeyUser, `{"email":"user@mall.dev"}`))

	err := client.Get(context.Background(), "/orders/my", nil, nil)
	require.ErrorIs(t, err, ErrSessionExpired)

	_, hasAccess := store.Get(storage.KeyAccessToken)
	_, hasRefresh := store.Get(storage.KeyRefreshToken)
	_, hasUser := store.Get(storage.KeyUser)
	assert.False(t, hasAccess, "access token should be cleared")
	assert.False(t, hasRefresh, "refresh token should be cleared")
	assert.False(t, hasUser, "user blob should be cleared")
}

func TestUnauthorizedWithoutRefreshTokenSurfacesServerError(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"bad credentials"}`))
	}))

	err := client.Get(context.Background(), "/member/login", nil, nil)

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "bad credentials", apiErr.Message)
}

func TestServerErrorMessagePreservedVerbatim(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"coupon already used"}`))
	}))

	err := client.Post(context.Background(), "/orders", map[string]string{}, nil)

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "coupon already used", apiErr.Message)
}

func TestUnreachableServer(t *testing.T) {
	store := storage.NewMemory()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	client := New("http://127.0.0.1:1", 500*time.Millisecond, store, log)

	err := client.Get(context.Background(), "/products", nil, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnreachable))
	assert.False(t, errors.Is(err, ErrSessionExpired))
}
