package domain

import "time"

// Role identifies a user's role. Roles are opaque string identifiers compared
// for equality; the role guard works against an allow-list of them.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleMember  Role = "member"
)

// User is the core user entity. PasswordHash is never serialized to clients.
type User struct {
	ID           string
	Email        string // unique, stored lower-cased
	Username     string
	PasswordHash string
	Role         Role
	CompanyID    string // optional organizational reference
	DepartmentID string // optional organizational reference
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Public is the client-facing view of a user, with the password hash omitted.
type Public struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	Role         Role      `json:"role"`
	CompanyID    string    `json:"company_id,omitempty"`
	DepartmentID string    `json:"department_id,omitempty"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Public returns the user without credential material.
func (u *User) Public() Public {
	return Public{
		ID:           u.ID,
		Email:        u.Email,
		Username:     u.Username,
		Role:         u.Role,
		CompanyID:    u.CompanyID,
		DepartmentID: u.DepartmentID,
		IsActive:     u.IsActive,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}
