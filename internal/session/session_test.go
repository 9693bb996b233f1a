package session

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/chungmin23/storefront/internal/api"
	"github.com/chungmin23/storefront/internal/models"
	"github.com/chungmin23/storefront/internal/storage"
)

func testSession(t *testing.T, handler http.Handler) (*Store, storage.Store) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	persist := storage.NewMemory()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	client := api.New(srv.URL, 5*time.Second, persist, log)
	return New(client, persist, log), persist
}

func loginHandler(t *testing.T) http.Handler {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /member/login", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("login body is not form-encoded: %v", err)
		}
		if r.PostFormValue("username") != "user@mall.dev" || r.PostFormValue("password") != "user1234" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"error": "bad credentials"})
			return
		}
		json.NewEncoder(w).Encode(models.AuthResponse{
			Email:        "user@mall.dev",
			Nickname:     "user",
			RoleNames:    []string{"USER"},
			AccessToken:  "access-1",
			RefreshToken: "refresh-1",
		})
	})
	return mux
}

func TestLoginPersistsSession(t *testing.T) {
	s, persist := testSession(t, loginHandler(t))

	user, err := s.Login(context.Background(), "user@mall.dev", "user1234")
	if err != nil {
		t.Fatalf("Login() error: %v", err)
	}
	if user.Email != "user@mall.dev" || !user.HasRole("USER") {
		t.Errorf("Login() user = %+v", user)
	}

	token, _ := persist.Get(storage.KeyAccessToken)
	if token != "access-1" {
		t.Errorf("persisted access token = %q, want %q", token, "access-1")
	}
	refresh, _ := persist.Get(storage.KeyRefreshToken)
	if refresh != "refresh-1" {
		t.Errorf("persisted refresh token = %q, want %q", refresh, "refresh-1")
	}
	if !s.IsAuthenticated() {
		t.Error("IsAuthenticated() = false after login")
	}
}

func TestLoginBadCredentials(t *testing.T) {
	s, _ := testSession(t, loginHandler(t))

	_, err := s.Login(context.Background(), "user@mall.dev", "wrong")
	if err == nil {
		t.Fatal("Login() succeeded with bad credentials")
	}

	var apiErr *api.Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("Login() error = %v, want *api.Error", err)
	}
	if apiErr.Message != "bad credentials" {
		t.Errorf("server message = %q, want verbatim %q", apiErr.Message, "bad credentials")
	}
	if s.IsAuthenticated() {
		t.Error("IsAuthenticated() = true after failed login")
	}
}

func TestCheckReconcilesWithoutNetwork(t *testing.T) {
	// No server at all: Check must stay offline.
	persist := storage.NewMemory()
	persist.Set(storage.KeyAccessToken, "token")
	persist.Set(storage.KeyUser, `{"email":"user@mall.dev","nickname":"user","roleNames":["USER"]}`)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	client := api.New("http://127.0.0.1:1", time.Second, persist, log)
	s := New(client, persist, log)

	user := s.Current()
	if user == nil || user.Email != "user@mall.dev" {
		t.Fatalf("Current() = %+v, want persisted user", user)
	}
}

func TestCheckDropsCorruptUserBlob(t *testing.T) {
	persist := storage.NewMemory()
	persist.Set(storage.KeyAccessToken, "token")
	persist.Set(storage.KeyUser, "{not json")

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	client := api.New("http://127.0.0.1:1", time.Second, persist, log)
	s := New(client, persist, log)

	if s.IsAuthenticated() {
		t.Error("IsAuthenticated() = true with a corrupt user blob")
	}
}

func TestLogoutClearsEverything(t *testing.T) {
	s, persist := testSession(t, loginHandler(t))

	if _, err := s.Login(context.Background(), "user@mall.dev", "user1234"); err != nil {
		t.Fatalf("Login() error: %v", err)
	}

	s.Logout()

	for _, key := range []string{storage.KeyAccessToken, storage.KeyRefreshToken, storage.KeyUser} {
		if _, ok := persist.Get(key); ok {
			t.Errorf("key %q still present after logout", key)
		}
	}
	if s.IsAuthenticated() {
		t.Error("IsAuthenticated() = true after logout")
	}
}

func TestSignupValidation(t *testing.T) {
	s, _ := testSession(t, loginHandler(t))

	tests := []struct {
		name string
		req  SignupRequest
	}{
		{"missing email", SignupRequest{Password: "longenough", Nickname: "n"}},
		{"malformed email", SignupRequest{Email: "not-an-email", Password: "longenough", Nickname: "n"}},
		{"short password", SignupRequest{Email: "a@b.dev", Password: "short", Nickname: "n"}},
		{"missing nickname", SignupRequest{Email: "a@b.dev", Password: "longenough"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Signup(context.Background(), tt.req)
			if err == nil {
				t.Fatal("Signup() accepted an invalid request")
			}
		})
	}
}
