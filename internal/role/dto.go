package role

import "strings"

type CreateRoleDTO struct {
	Name          string  `json:"name"`
	Description   string  `json:"description"`
	PermissionIDs []int64 `json:"permissions"`
}

// UpdateRoleDTO replaces the grant set when PermissionIDs is present; a nil
// slice leaves the grants untouched.
type UpdateRoleDTO struct {
	Name          *string  `json:"name"`
	Description   *string  `json:"description"`
	PermissionIDs *[]int64 `json:"permissions"`
}

type ValidationError struct {
	Msg string
}

func (v ValidationError) Error() string { return v.Msg }

func (v ValidationError) IsValidation() bool { return true }

func (d CreateRoleDTO) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return ValidationError{Msg: "name is required"}
	}
	return nil
}

func (d UpdateRoleDTO) Validate() error {
	if d.Name != nil && strings.TrimSpace(*d.Name) == "" {
		return ValidationError{Msg: "name cannot be empty"}
	}
	return nil
}
