// Package session holds the authenticated identity. Tokens and the user blob
// persist in the key-value store; Check reconciles in-memory state from that
// store without any network call and is safe to run on every startup.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"

	"github.com/chungmin23/storefront/internal/api"
	"github.com/chungmin23/storefront/internal/models"
	"github.com/chungmin23/storefront/internal/storage"
)

var (
	ErrLoginFailed   = errors.New("login failed")
	ErrNotLoggedIn   = errors.New("not logged in")
	ErrInvalidSignup = errors.New("invalid signup request")
)

// SignupRequest is the payload for POST /member/join.
type SignupRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"pw" validate:"required,min=8"`
	Nickname string `json:"nickname" validate:"required"`
}

// Store owns the current session. All mutation goes through the backend;
// local state mirrors the last successful response.
type Store struct {
	client   *api.Client
	store    storage.Store
	log      *slog.Logger
	validate *validator.Validate

	mu   sync.RWMutex
	user *models.User
}

// New creates a session store and reconciles state from persisted storage.
func New(client *api.Client, store storage.Store, log *slog.Logger) *Store {
	s := &Store{
		client:   client,
		store:    store,
		log:      log,
		validate: validator.New(),
	}
	s.Check()
	return s
}

// Login authenticates with form-encoded credentials (the backend's security
// filter reads username/password form fields) and persists the token pair
// and user blob on success.
func (s *Store) Login(ctx context.Context, email, password string) (*models.User, error) {
	form := url.Values{}
	form.Set("username", email)
	form.Set("password", password)

	var resp models.AuthResponse
	if err := s.client.PostForm(ctx, "/member/login", form, &resp); err != nil {
		return nil, err
	}
	if resp.AccessToken == "" {
		return nil, fmt.Errorf("%w: response carried no access token", ErrLoginFailed)
	}

	user := &models.User{
		Email:     resp.Email,
		Nickname:  resp.Nickname,
		Social:    resp.Social,
		RoleNames: resp.RoleNames,
	}

	if err := s.persist(resp, user); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.user = user
	s.mu.Unlock()

	s.log.Info("logged in", "email", user.Email)
	return user, nil
}

// Signup registers a new member and auto-chains to login on success.
func (s *Store) Signup(ctx context.Context, req SignupRequest) (*models.User, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignup, err)
	}

	if err := s.client.Post(ctx, "/member/join", req, nil); err != nil {
		return nil, err
	}

	return s.Login(ctx, req.Email, req.Password)
}

// Logout destroys the session locally. The backend keeps no session state
// beyond the refresh token, which simply stops being used.
func (s *Store) Logout() {
	s.store.Delete(storage.KeyAccessToken)
	s.store.Delete(storage.KeyRefreshToken)
	s.store.Delete(storage.KeyUser)

	s.mu.Lock()
	s.user = nil
	s.mu.Unlock()

	s.log.Info("logged out")
}

// Check reconciles in-memory state from persisted storage. It makes no
// network call and is idempotent.
func (s *Store) Check() *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	token, ok := s.store.Get(storage.KeyAccessToken)
	if !ok || token == "" {
		s.user = nil
		return nil
	}

	raw, ok := s.store.Get(storage.KeyUser)
	if !ok {
		s.user = nil
		return nil
	}

	var user models.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		s.log.Warn("stored user blob is corrupt, dropping session", "error", err)
		s.user = nil
		return nil
	}

	s.user = &user
	return &user
}

// Current returns the logged-in user, or nil.
func (s *Store) Current() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// IsAuthenticated reports whether a session is present.
func (s *Store) IsAuthenticated() bool {
	return s.Current() != nil
}

// TokenExpiry returns the access token's exp claim. The token is decoded
// without signature verification; only the server can vouch for it, the
// client just reads the timestamp for display.
func (s *Store) TokenExpiry() (time.Time, bool) {
	raw, ok := s.store.Get(storage.KeyAccessToken)
	if !ok || raw == "" {
		return time.Time{}, false
	}

	token, _, err := jwt.NewParser().ParseUnverified(raw, jwt.MapClaims{})
	if err != nil {
		return time.Time{}, false
	}
	exp, err := token.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

func (s *Store) persist(resp models.AuthResponse, user *models.User) error {
	if err := s.store.Set(storage.KeyAccessToken, resp.AccessToken); err != nil {
		return err
	}
	if err := s.store.Set(storage.KeyRefreshToken, resp.RefreshToken); err != nil {
		return err
	}

	blob, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode user: %w", err)
	}
	return s.store.Set(storage.KeyUser, string(blob))
}
