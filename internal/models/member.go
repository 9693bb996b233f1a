package models

// User is the authenticated identity persisted between sessions.
type User struct {
	Email     string   `json:"email"`
	Nickname  string   `json:"nickname"`
	Social    bool     `json:"social"`
	RoleNames []string `json:"roleNames"`
}

// HasRole reports whether the user carries the given role name.
func (u User) HasRole(role string) bool {
	for _, r := range u.RoleNames {
		if r == role {
			return true
		}
	}
	return false
}

// AuthResponse is the login/refresh response carrying identity and tokens.
type AuthResponse struct {
	Email        string   `json:"email"`
	Nickname     string   `json:"nickname"`
	Social       bool     `json:"social"`
	RoleNames    []string `json:"roleNames"`
	AccessToken  string   `json:"accessToken"`
	RefreshToken string   `json:"refreshToken"`
}
