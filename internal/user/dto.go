package user

import (
	"strings"
	"time"
)

type CreateUserDTO struct {
	Username   string     `json:"username"`
	Email      string     `json:"email"`
	Password   string     `json:"password"`
	FirstName  string     `json:"first_name"`
	LastName   string     `json:"last_name"`
	RoleID     int64      `json:"role_id"`
	Department string     `json:"department"`
	Position   string     `json:"position"`
	ManagerID  *int64     `json:"manager_id"`
	HireDate   *time.Time `json:"hire_date"`
}

// UpdateUserDTO carries only the fields the caller wants changed.
type UpdateUserDTO struct {
	Username   *string    `json:"username"`
	Email      *string    `json:"email"`
	FirstName  *string    `json:"first_name"`
	LastName   *string    `json:"last_name"`
	RoleID     *int64     `json:"role_id"`
	Department *string    `json:"department"`
	Position   *string    `json:"position"`
	ManagerID  *int64     `json:"manager_id"`
	HireDate   *time.Time `json:"hire_date"`
	IsActive   *bool      `json:"is_active"`
}

type ValidationError struct {
	Msg string
}

func (v ValidationError) Error() string { return v.Msg }

func (v ValidationError) IsValidation() bool { return true }

func (d CreateUserDTO) Validate() error {
	if strings.TrimSpace(d.Username) == "" {
		return ValidationError{Msg: "username is required"}
	}
	if strings.TrimSpace(d.Email) == "" || !strings.Contains(d.Email, "@") {
		return ValidationError{Msg: "a valid email is required"}
	}
	if len(d.Password) < 8 {
		return ValidationError{Msg: "password must be at least 8 characters"}
	}
	if strings.TrimSpace(d.FirstName) == "" || strings.TrimSpace(d.LastName) == "" {
		return ValidationError{Msg: "first_name and last_name are required"}
	}
	if d.RoleID == 0 {
		return ValidationError{Msg: "role_id is required"}
	}
	return nil
}

func (d UpdateUserDTO) Validate() error {
	if d.Username != nil && strings.TrimSpace(*d.Username) == "" {
		return ValidationError{Msg: "username cannot be empty"}
	}
	if d.Email != nil && (strings.TrimSpace(*d.Email) == "" || !strings.Contains(*d.Email, "@")) {
		return ValidationError{Msg: "email must be valid"}
	}
	if d.RoleID != nil && *d.RoleID == 0 {
		return ValidationError{Msg: "role_id cannot be zero"}
	}
	return nil
}
