package auth

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Seeded role names. Roles are data, not code constants; these are only the
// defaults the workflow rules reason about.
const (
	RoleAdmin    = "admin"
	RoleManager  = "manager"
	RoleEmployee = "employee"
)

// User is the authenticated actor attached to the request context. It is
// rebuilt from token claims on every request; the permission list reflects
// the grants at login time, not the current database state.
type User struct {
	ID          int64    `json:"id"`
	Username    string   `json:"username"`
	Email       string   `json:"email"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions,omitempty"`
}

func (u *User) HasPermission(permission string) bool {
	for _, p := range u.Permissions {
		if p == permission {
			return true
		}
	}
	return false
}

func (u *User) HasAnyPermission(permissions ...string) bool {
	for _, required := range permissions {
		if u.HasPermission(required) {
			return true
		}
	}
	return false
}

func (u *User) HasRole(names ...string) bool {
	for _, name := range names {
		if u.Role == name {
			return true
		}
	}
	return false
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Claims carried by the access token. Embedding the permission list avoids a
// permission lookup per request; changes take effect on the next login or
// refresh.
type Claims struct {
	UserID      string   `json:"user_id"`
	Username    string   `json:"username"`
	Email       string   `json:"email"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions,omitempty"`
	jwt.RegisteredClaims
}

// TokenGenerator creates and validates the two token kinds. Access and
// refresh tokens are signed with distinct secrets.
type TokenGenerator interface {
	GenerateAccessToken(user *User) (string, error)
	GenerateRefreshToken(userID int64) (string, error)
	ValidateAccessToken(tokenString string) (*Claims, error)
	ValidateRefreshToken(tokenString string) (*Claims, error)
}

type AuthTokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    int64  `json:"expires_at"`
}

type ctxKey string

const ContextUserKey ctxKey = "user"

func UserFromContext(ctx context.Context) (*User, bool) {
	u, ok := ctx.Value(ContextUserKey).(*User)
	return u, ok
}

func ContextWithUser(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, ContextUserKey, u)
}

// Account is the repository view of a user row joined with its role and the
// role's granted permission set.
type Account struct {
	ID           int64      `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	Department   string     `json:"department"`
	Position     string     `json:"position"`
	HireDate     *time.Time `json:"hire_date,omitempty"`
	IsActive     bool       `json:"is_active"`
	RoleID       int64      `json:"role_id"`
	Role         string     `json:"role"`
	Permissions  []string   `json:"permissions,omitempty"`
}

// ToActor converts an account into the context actor shape.
func (a *Account) ToActor() *User {
	return &User{
		ID:          a.ID,
		Username:    a.Username,
		Email:       a.Email,
		Role:        a.Role,
		Permissions: a.Permissions,
	}
}
