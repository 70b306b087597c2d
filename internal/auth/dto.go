package auth

// LoginDTO accepts a username or an email in the identifier field.
type LoginDTO struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

type RefreshTokenDTO struct {
	RefreshToken string `json:"refresh_token"`
}

type RegisterDTO struct {
	Username   string `json:"username"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Department string `json:"department"`
	Position   string `json:"position"`
	// RoleID is honored only when the caller is an admin; everyone else gets
	// the default employee role.
	RoleID int64 `json:"role_id,omitempty"`
}

// ValidationError represents a simple validation error from DTO validation.
type ValidationError struct {
	Msg string
}

func (v ValidationError) Error() string { return v.Msg }

func (v ValidationError) IsValidation() bool { return true }

func (d LoginDTO) Validate() error {
	if d.Identifier == "" {
		return ValidationError{Msg: "identifier is required"}
	}
	if d.Password == "" {
		return ValidationError{Msg: "password is required"}
	}
	return nil
}

func (d RefreshTokenDTO) Validate() error {
	if d.RefreshToken == "" {
		return ValidationError{Msg: "refresh_token is required"}
	}
	return nil
}

func (d RegisterDTO) Validate() error {
	if d.Username == "" {
		return ValidationError{Msg: "username is required"}
	}
	if d.Email == "" {
		return ValidationError{Msg: "email is required"}
	}
	if d.Password == "" {
		return ValidationError{Msg: "password is required"}
	}
	if len(d.Password) < 8 {
		return ValidationError{Msg: "password must be at least 8 characters"}
	}
	if d.FirstName == "" || d.LastName == "" {
		return ValidationError{Msg: "first_name and last_name are required"}
	}
	return nil
}
