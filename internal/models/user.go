package models

import "strings"

type Role string

const (
	RoleStudent Role = "student"
	RoleAdmin   Role = "admin"
)

// User is the identity record returned by the users/me endpoint.
type User struct {
	ID       string `json:"id,omitempty"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	FullName string `json:"full_name,omitempty"`
	Role     Role   `json:"role,omitempty"`
	IsActive bool   `json:"is_active"`
}

// GetName returns the best display name available for the user.
func (u *User) GetName() string {
	if u == nil {
		return "Student"
	}
	if len(strings.TrimSpace(u.FullName)) > 0 {
		return u.FullName
	} else if len(u.Username) > 0 {
		return u.Username
	} else if len(u.Email) > 0 {
		return u.Email
	}
	return "Student"
}

// GetIdentity returns the login identifier of the user.
func (u *User) GetIdentity() string {
	if u == nil {
		return ""
	}
	if len(u.Username) > 0 {
		return u.Username
	} else if len(u.Email) > 0 {
		return u.Email
	}
	return u.ID
}

// RegisterRequest is the JSON payload accepted by the registration endpoint.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Username string `json:"username"`
}

// UpdateUserRequest carries the mutable fields of the current user.
type UpdateUserRequest struct {
	FullName *string `json:"full_name,omitempty"`
	Email    *string `json:"email,omitempty"`
	Password *string `json:"password,omitempty"`
}
