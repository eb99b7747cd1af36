package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// UserRole distinguishes the two caller identities.
type UserRole string

// Roles.
const (
	RoleAdmin   UserRole = "ADMIN"
	RoleStudent UserRole = "STUDENT"
)

// Admin is a back-office account with a bcrypt password hash.
type Admin struct {
	ID           string    `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	Name         *string   `db:"name" json:"name,omitempty"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// JWTClaims carries the authenticated caller identity. StudentToken is
// only set for student sessions.
type JWTClaims struct {
	SubjectID    string   `json:"uid"`
	Role         UserRole `json:"role"`
	StudentToken string   `json:"student_token,omitempty"`
	jwt.RegisteredClaims
}

// LoginRequest is the admin login payload.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse returns the issued admin session.
type LoginResponse struct {
	Token string `json:"token"`
	Admin Admin  `json:"admin"`
}
