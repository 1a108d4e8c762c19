package models

import (
	"time"
)

// Author represents an account that can write articles
type Author struct {
	ID           int64     `json:"id" db:"id"`
	Slug         string    `json:"slug" db:"slug"`
	UserName     string    `json:"user_name" db:"user_name"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	IsStaff      bool      `json:"is_staff" db:"is_staff"`
	IsActive     bool      `json:"is_active" db:"is_active"`
	Joined       time.Time `json:"joined" db:"joined"`
}

// Identity returns the authenticated identity of this author
func (a *Author) Identity() *Identity {
	return &Identity{
		AuthorID: a.ID,
		Slug:     a.Slug,
		UserName: a.UserName,
		IsStaff:  a.IsStaff,
	}
}

// Identity is the caller of a request. A nil *Identity is an anonymous caller.
type Identity struct {
	AuthorID int64  `json:"id"`
	Slug     string `json:"slug"`
	UserName string `json:"user_name"`
	IsStaff  bool   `json:"is_staff"`
}

// RegisterInput is the payload for creating an account
type RegisterInput struct {
	UserName string `json:"user_name" binding:"required,max=100"`
	Email    string `json:"email" binding:"required,email,max=100"`
	Password string `json:"password" binding:"required"`
}

// AuthorPatch is the payload for updating one's own account
type AuthorPatch struct {
	UserName *string `json:"user_name,omitempty" binding:"omitempty,min=1,max=100"`
	Email    *string `json:"email,omitempty" binding:"omitempty,email,max=100"`
	Password *string `json:"password,omitempty" binding:"omitempty,min=1"`
}

// LoginInput is the payload for obtaining a token
type LoginInput struct {
	UserName string `json:"user_name" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthToken is a bearer token issued at login
type AuthToken struct {
	Token     string    `json:"token"`
	TokenType string    `json:"token_type"`
	ExpiresAt time.Time `json:"expires_at"`
	Author    *Identity `json:"author"`
}

// Patch converts a full replacement payload into a patch touching every field
func (in *RegisterInput) Patch() *AuthorPatch {
	return &AuthorPatch{UserName: &in.UserName, Email: &in.Email, Password: &in.Password}
}
