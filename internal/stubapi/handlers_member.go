package stubapi

import (
	"encoding/json"
	"net/http"

	"github.com/chungmin23/storefront/internal/models"
)

// handleLogin handles POST /api/member/login. The real backend's security
// filter reads form-encoded username/password, so the twin does too.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form body")
		return
	}

	email := r.PostFormValue("username")
	password := r.PostFormValue("password")

	s.mu.Lock()
	m, ok := s.members[email]
	s.mu.Unlock()

	if !ok || m.Password != password {
		writeError(w, http.StatusUnauthorized, "bad credentials")
		return
	}

	s.writeAuthResponse(w, m)
}

// handleJoin handles POST /api/member/join.
func (s *Server) handleJoin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"pw"`
		Nickname string `json:"nickname"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	s.mu.Lock()
	if _, exists := s.members[req.Email]; exists {
		s.mu.Unlock()
		writeError(w, http.StatusConflict, "member already exists")
		return
	}
	s.members[req.Email] = &member{
		Email:    req.Email,
		Password: req.Password,
		Nickname: req.Nickname,
		Roles:    []string{"USER"},
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]string{"result": "joined"})
}

// handleRefresh handles GET /api/member/refresh?refreshToken=...
// A valid refresh token yields a rotated token pair.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("refreshToken")
	if raw == "" {
		writeError(w, http.StatusBadRequest, "refreshToken is required")
		return
	}

	email, _, err := s.parseToken(raw, "refresh")
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid refresh token")
		return
	}

	s.mu.Lock()
	m, ok := s.members[email]
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusUnauthorized, "unknown member")
		return
	}

	access, err := s.mintToken(m.Email, m.Roles, "access", accessTTL)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to sign token")
		return
	}
	refresh, err := s.mintToken(m.Email, m.Roles, "refresh", refreshTTL)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to sign token")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"accessToken":  access,
		"refreshToken": refresh,
	})
}

func (s *Server) writeAuthResponse(w http.ResponseWriter, m *member) {
	access, err := s.mintToken(m.Email, m.Roles, "access", accessTTL)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to sign token")
		return
	}
	refresh, err := s.mintToken(m.Email, m.Roles, "refresh", refreshTTL)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to sign token")
		return
	}

	writeJSON(w, http.StatusOK, models.AuthResponse{
		Email:        m.Email,
		Nickname:     m.Nickname,
		RoleNames:    m.Roles,
		AccessToken:  access,
		RefreshToken: refresh,
	})
}
