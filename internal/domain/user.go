package domain

import (
	"time"
)

type User struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	Avatar     *string   `json:"avatar,omitempty"`
	Role       string    `json:"role,omitempty"`
	IsVerified bool      `json:"isVerified,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Session is the ambient auth state the client attaches to backend calls.
type Session struct {
	AccessToken string    `json:"accessToken"`
	User        *User     `json:"user,omitempty"`
	ExpiresAt   time.Time `json:"expiresAt,omitempty"`
}

func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type Registration struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResult is the data block of /auth/login and /auth/register.
type AuthResult struct {
	AccessToken string `json:"accessToken"`
	User        *User  `json:"user"`
}
