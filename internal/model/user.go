package model

import (
	"time"

	"github.com/google/uuid"
)

// Role is a role tag held by a user.
type Role string

const (
	RoleAdmin     Role = "ADMIN"
	RoleDoctor    Role = "DOCTOR"
	RoleDispenser Role = "DISPENSER"
)

// AllRoles lists every role the system recognizes.
var AllRoles = []Role{RoleAdmin, RoleDoctor, RoleDispenser}

// ValidRole reports whether s names a known role.
func ValidRole(s string) bool {
	switch Role(s) {
	case RoleAdmin, RoleDoctor, RoleDispenser:
		return true
	}
	return false
}

// RoleSet is a typed set of role tags. Authorization checks go through
// membership tests here rather than ad-hoc string comparisons in handlers.
type RoleSet map[Role]struct{}

func NewRoleSet(roles ...Role) RoleSet {
	set := make(RoleSet, len(roles))
	for _, r := range roles {
		set[r] = struct{}{}
	}
	return set
}

func RoleSetFromStrings(roles []string) RoleSet {
	set := make(RoleSet, len(roles))
	for _, r := range roles {
		set[Role(r)] = struct{}{}
	}
	return set
}

func (s RoleSet) Has(role Role) bool {
	_, ok := s[role]
	return ok
}

func (s RoleSet) HasAny(roles ...Role) bool {
	for _, r := range roles {
		if s.Has(r) {
			return true
		}
	}
	return false
}

func (s RoleSet) Strings() []string {
	out := make([]string, 0, len(s))
	for r := range s {
		out = append(out, string(r))
	}
	return out
}

// Caller is the authenticated identity resolved once per request and passed
// explicitly into every core operation.
type Caller struct {
	ID          uuid.UUID
	DisplayName string
	Email       string
	Roles       RoleSet
}

// User represents a system user. Identity is immutable after creation; roles
// are assigned at creation time.
type User struct {
	Base
	DisplayName  string `json:"display_name" db:"display_name"`
	Email        string `json:"email" db:"email"`
	PasswordHash string `json:"-" db:"password_hash"`
	Roles        []Role `json:"roles" db:"-"`
}

// UserRole is a role assignment row.
type UserRole struct {
	UserID   uuid.UUID `json:"user_id" db:"user_id"`
	RoleName Role      `json:"role_name" db:"role_name"`
}

// CreateUserRequest represents admin user creation parameters
type CreateUserRequest struct {
	DisplayName string   `json:"display_name" binding:"required"`
	Email       string   `json:"email" binding:"required,email"`
	Password    string   `json:"password" binding:"required,min=6"`
	Roles       []string `json:"roles" binding:"required,min=1,dive,oneof=ADMIN DOCTOR DISPENSER"`
}

// UserResponse is the user shape returned to admins (no password hash).
type UserResponse struct {
	ID          uuid.UUID `json:"id"`
	DisplayName string    `json:"display_name"`
	Email       string    `json:"email"`
	Roles       []Role    `json:"roles"`
	CreatedAt   time.Time `json:"created_at"`
}

func (u *User) Response() *UserResponse {
	return &UserResponse{
		ID:          u.ID,
		DisplayName: u.DisplayName,
		Email:       u.Email,
		Roles:       u.Roles,
		CreatedAt:   u.CreatedAt,
	}
}
