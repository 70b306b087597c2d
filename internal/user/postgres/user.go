package user

import (
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/frahmantamala/performance-evaluation/internal"
	user_datamodel "github.com/frahmantamala/performance-evaluation/internal/core/datamodel/user"
	"github.com/frahmantamala/performance-evaluation/internal/user"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db: db,
	}
}

const directoryQuery = `
	SELECT u.id, u.username, u.email, u.first_name, u.last_name,
	       u.department, u.position, u.hire_date, u.is_active,
	       u.role_id, r.name, u.manager_id,
	       m.first_name || ' ' || m.last_name AS manager_name
	FROM users u
	JOIN roles r ON r.id = u.role_id
	LEFT JOIN users m ON m.id = u.manager_id`

func (r *Repository) List(includeInactive bool) ([]*user.User, error) {
	query := directoryQuery
	if !includeInactive {
		query += ` WHERE u.is_active = true`
	}
	query += ` ORDER BY u.first_name, u.last_name`

	return r.queryUsers(query)
}

func (r *Repository) GetByID(id int64) (*user.User, error) {
	users, err := r.queryUsers(directoryQuery+` WHERE u.id = ?`, id)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, internal.ErrUserNotFound
	}
	return users[0], nil
}

// TeamOf lists the active direct reports of a manager; deeper levels of the
// hierarchy are not expanded.
func (r *Repository) TeamOf(managerID int64) ([]*user.User, error) {
	return r.queryUsers(
		directoryQuery+` WHERE u.manager_id = ? AND u.is_active = true ORDER BY u.first_name, u.last_name`,
		managerID)
}

func (r *Repository) queryUsers(query string, args ...interface{}) ([]*user.User, error) {
	rows, err := r.db.Raw(query, args...).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*user.User
	for rows.Next() {
		var u user.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.FirstName, &u.LastName,
			&u.Department, &u.Position, &u.HireDate, &u.IsActive,
			&u.RoleID, &u.RoleName, &u.ManagerID, &u.ManagerName); err != nil {
			return nil, err
		}
		users = append(users, &u)
	}
	return users, rows.Err()
}

func (r *Repository) ExistsByUsernameOrEmail(username, email string, excludeID int64) (bool, error) {
	var count int64
	query := r.db.Model(&user_datamodel.User{}).
		Where("username = ? OR email = ?", username, email)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *Repository) Create(u *user.User, passwordHash string) (int64, error) {
	record := user_datamodel.User{
		Username:     u.Username,
		Email:        u.Email,
		PasswordHash: passwordHash,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Department:   u.Department,
		Position:     u.Position,
		HireDate:     u.HireDate,
		IsActive:     u.IsActive,
		RoleID:       u.RoleID,
		ManagerID:    u.ManagerID,
	}

	if err := r.db.Create(&record).Error; err != nil {
		return 0, err
	}
	return record.ID, nil
}

func (r *Repository) Update(u *user.User) error {
	updates := map[string]interface{}{
		"username":   u.Username,
		"email":      u.Email,
		"first_name": u.FirstName,
		"last_name":  u.LastName,
		"department": u.Department,
		"position":   u.Position,
		"hire_date":  u.HireDate,
		"is_active":  u.IsActive,
		"role_id":    u.RoleID,
		"manager_id": u.ManagerID,
		"updated_at": time.Now(),
	}

	result := r.db.Model(&user_datamodel.User{}).Where("id = ?", u.ID).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return internal.ErrUserNotFound
	}
	return nil
}

func (r *Repository) SetActive(id int64, active bool) error {
	result := r.db.Model(&user_datamodel.User{}).Where("id = ?", id).
		Updates(map[string]interface{}{"is_active": active, "updated_at": time.Now()})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return internal.ErrUserNotFound
	}
	return nil
}

// Delete removes the row for good. Evaluations or reports referencing the
// user surface as a conflict instead of cascading away history.
func (r *Repository) Delete(id int64) error {
	err := r.db.Delete(&user_datamodel.User{}, id).Error
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return internal.NewConflictError("user has related records", "USER_IN_USE")
		}
		return err
	}
	return nil
}
