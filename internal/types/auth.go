package types

import (
	"time"

	"github.com/google/uuid"
)

// User is an authenticated account. Identity is delegated to the OAuth provider,
// so no credentials are stored.
type User struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// UserInfo is the GET /api/user-info response body.
type UserInfo struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
}

// GoogleUserInfo is the subset of the OpenID userinfo document the login flow uses.
type GoogleUserInfo struct {
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	GivenName     string `json:"given_name"`
	Name          string `json:"name"`
}

// DisplayName picks the best available username for a new account.
func (g *GoogleUserInfo) DisplayName() string {
	switch {
	case g.GivenName != "":
		return g.GivenName
	case g.Name != "":
		return g.Name
	default:
		return g.Email
	}
}
