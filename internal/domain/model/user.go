package model

import (
	"time"
)

const (
	RoleStudent    = "student"
	RoleInstructor = "instructor"
)

// User is a row of the users table. Role is derived from IsAdmin.
type User struct {
	ID           int64     `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"` // Not exposed
	IsAdmin      bool      `json:"is_admin" db:"is_admin"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

func (u *User) Role() string {
	return RoleFromAdmin(u.IsAdmin)
}

func RoleFromAdmin(isAdmin bool) string {
	if isAdmin {
		return RoleInstructor
	}
	return RoleStudent
}
