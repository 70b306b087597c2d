package user

import "time"

// User is the directory view of an employee: the users row joined with its
// role name and the display name of its manager.
type User struct {
	ID          int64      `json:"id"`
	Username    string     `json:"username"`
	Email       string     `json:"email"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	Department  string     `json:"department"`
	Position    string     `json:"position"`
	HireDate    *time.Time `json:"hire_date,omitempty"`
	IsActive    bool       `json:"is_active"`
	RoleID      int64      `json:"role_id"`
	RoleName    string     `json:"role_name"`
	ManagerID   *int64     `json:"manager_id,omitempty"`
	ManagerName *string    `json:"manager_name,omitempty"`
}

func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}
