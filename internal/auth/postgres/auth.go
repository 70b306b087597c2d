package auth

import (
	"database/sql"
	"errors"

	"github.com/frahmantamala/performance-evaluation/internal"
	"github.com/frahmantamala/performance-evaluation/internal/auth"
	user_datamodel "github.com/frahmantamala/performance-evaluation/internal/core/datamodel/user"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db: db,
	}
}

const accountQuery = `
	SELECT u.id, u.username, u.email, u.password_hash, u.first_name, u.last_name,
	       u.department, u.position, u.hire_date, u.is_active, u.role_id, r.name
	FROM users u
	JOIN roles r ON r.id = u.role_id`

func (r *Repository) FindByIdentifier(identifier string) (*auth.Account, error) {
	return r.scanAccount(r.db.Raw(accountQuery+` WHERE u.username = ? OR u.email = ?`, identifier, identifier).Row())
}

func (r *Repository) FindByID(userID int64) (*auth.Account, error) {
	return r.scanAccount(r.db.Raw(accountQuery+` WHERE u.id = ?`, userID).Row())
}

func (r *Repository) scanAccount(row *sql.Row) (*auth.Account, error) {
	var account auth.Account
	err := row.Scan(&account.ID, &account.Username, &account.Email, &account.PasswordHash,
		&account.FirstName, &account.LastName, &account.Department, &account.Position,
		&account.HireDate, &account.IsActive, &account.RoleID, &account.Role)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, internal.ErrUserNotFound
		}
		return nil, err
	}

	permissions, err := r.permissionsForRole(account.RoleID)
	if err != nil {
		return nil, err
	}
	account.Permissions = permissions

	return &account, nil
}

// permissionsForRole returns only permissions with an explicit positive grant.
func (r *Repository) permissionsForRole(roleID int64) ([]string, error) {
	query := `SELECT p.name
	          FROM permissions p
	          JOIN role_permissions rp ON rp.permission_id = p.id
	          WHERE rp.role_id = ? AND rp.granted = true
	          ORDER BY p.name`

	rows, err := r.db.Raw(query, roleID).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var permissions []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		permissions = append(permissions, name)
	}
	return permissions, rows.Err()
}

func (r *Repository) ExistsByUsernameOrEmail(username, email string) (bool, error) {
	var count int64
	err := r.db.Model(&user_datamodel.User{}).
		Where("username = ? OR email = ?", username, email).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *Repository) RoleIDByName(name string) (int64, error) {
	var role user_datamodel.Role
	if err := r.db.Where("name = ?", name).First(&role).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, internal.ErrRoleNotFound
		}
		return 0, err
	}
	return role.ID, nil
}

func (r *Repository) CreateUser(account *auth.Account, passwordHash string) (int64, error) {
	record := user_datamodel.User{
		Username:     account.Username,
		Email:        account.Email,
		PasswordHash: passwordHash,
		FirstName:    account.FirstName,
		LastName:     account.LastName,
		Department:   account.Department,
		Position:     account.Position,
		HireDate:     account.HireDate,
		IsActive:     account.IsActive,
		RoleID:       account.RoleID,
	}

	if err := r.db.Create(&record).Error; err != nil {
		return 0, err
	}
	return record.ID, nil
}
