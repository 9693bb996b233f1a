package stubapi

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const emailKey contextKey = "email"
const rolesKey contextKey = "roles"

const (
	accessTTL  = 20 * time.Minute
	refreshTTL = 7 * 24 * time.Hour
)

// mintToken signs an HS256 token for a member. typ distinguishes access
// tokens from refresh tokens so one cannot stand in for the other.
func (s *Server) mintToken(email string, roles []string, typ string, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"email": email,
		"roles": roles,
		"typ":   typ,
		"exp":   time.Now().Add(ttl).Unix(),
		"iat":   time.Now().Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// parseToken verifies a token and returns its email and roles.
func (s *Server) parseToken(raw, wantTyp string) (string, []string, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return "", nil, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", nil, fmt.Errorf("unexpected claims type")
	}
	if typ, _ := claims["typ"].(string); typ != wantTyp {
		return "", nil, fmt.Errorf("wrong token type %q", typ)
	}

	email, _ := claims["email"].(string)
	if email == "" {
		return "", nil, fmt.Errorf("email claim missing")
	}

	var roles []string
	if raw, ok := claims["roles"].([]any); ok {
		for _, r := range raw {
			if name, ok := r.(string); ok {
				roles = append(roles, name)
			}
		}
	}

	return email, roles, nil
}

// requireAuth validates the bearer token and stashes identity in the context.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := strings.TrimSpace(r.Header.Get("Authorization"))
		if raw == "" {
			writeError(w, http.StatusUnauthorized, "missing token")
			return
		}

		parts := strings.SplitN(raw, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		email, roles, err := s.parseToken(parts[1], "access")
		if err != nil {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		ctx := context.WithValue(r.Context(), emailKey, email)
		ctx = context.WithValue(ctx, rolesKey, roles)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireAdmin gates admin routes on the ADMIN role.
func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		roles, _ := r.Context().Value(rolesKey).([]string)
		for _, role := range roles {
			if role == "ADMIN" {
				next.ServeHTTP(w, r)
				return
			}
		}
		writeError(w, http.StatusForbidden, "admin role required")
	})
}

// callerEmail returns the authenticated member's email from the context.
func callerEmail(r *http.Request) string {
	email, _ := r.Context().Value(emailKey).(string)
	return email
}
