package models

import "time"

// User roles.
const (
	RoleAdmin     = "admin"
	RoleCapturist = "capturista"
)

type User struct {
	ID           string
	UserName     string
	PasswordHash []byte
	Name         string
	Role         string
	CreatedAt    time.Time
}
