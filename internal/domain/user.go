package domain

import (
	"time"
)

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleTanod    Role = "tanod"
	RoleResident Role = "resident"
)

type User struct {
	ID            int64     `json:"id"`
	Username      string    `json:"username"`
	PasswordHash  string    `json:"-"`
	FullName      string    `json:"fullName"`
	Email         string    `json:"email"`
	ContactNumber string    `json:"contactNumber"`
	Role          Role      `json:"role"`
	IsActive      bool      `json:"isActive"`
	CreatedAt     time.Time `json:"createdAt"`
	Version       int32     `json:"-"`
}
