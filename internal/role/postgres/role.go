package role

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/frahmantamala/performance-evaluation/internal"
	user_datamodel "github.com/frahmantamala/performance-evaluation/internal/core/datamodel/user"
	"github.com/frahmantamala/performance-evaluation/internal/role"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) role.RepositoryAPI {
	return &Repository{db: db}
}

func (r *Repository) GetAll() ([]*role.Role, error) {
	query := `
		SELECT r.id, r.name, r.description,
		       (SELECT count(*) FROM users u WHERE u.role_id = r.id) AS user_count
		FROM roles r
		ORDER BY r.name`

	rows, err := r.db.Raw(query).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []*role.Role
	for rows.Next() {
		var item role.Role
		if err := rows.Scan(&item.ID, &item.Name, &item.Description, &item.UserCount); err != nil {
			return nil, err
		}
		roles = append(roles, &item)
	}
	return roles, rows.Err()
}

func (r *Repository) GetByID(id int64) (*role.Role, error) {
	var record user_datamodel.Role
	if err := r.db.First(&record, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrRoleNotFound
		}
		return nil, err
	}

	item := &role.Role{
		ID:          record.ID,
		Name:        record.Name,
		Description: record.Description,
	}

	if err := r.db.Model(&user_datamodel.User{}).
		Where("role_id = ?", id).Count(&item.UserCount).Error; err != nil {
		return nil, err
	}

	permissions, err := r.grantedPermissions(id)
	if err != nil {
		return nil, err
	}
	item.Permissions = permissions

	return item, nil
}

func (r *Repository) grantedPermissions(roleID int64) ([]role.Permission, error) {
	query := `
		SELECT p.id, p.name, p.description
		FROM permissions p
		JOIN role_permissions rp ON rp.permission_id = p.id
		WHERE rp.role_id = ? AND rp.granted = true
		ORDER BY p.name`

	rows, err := r.db.Raw(query, roleID).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var permissions []role.Permission
	for rows.Next() {
		var p role.Permission
		if err := rows.Scan(&p.ID, &p.Name, &p.Description); err != nil {
			return nil, err
		}
		permissions = append(permissions, p)
	}
	return permissions, rows.Err()
}

func (r *Repository) ExistsByName(name string, excludeID int64) (bool, error) {
	var count int64
	query := r.db.Model(&user_datamodel.Role{}).Where("name = ?", name)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *Repository) ListPermissions() ([]*role.Permission, error) {
	var records []user_datamodel.Permission
	if err := r.db.Order("name ASC").Find(&records).Error; err != nil {
		return nil, err
	}

	permissions := make([]*role.Permission, 0, len(records))
	for _, record := range records {
		permissions = append(permissions, &role.Permission{
			ID:          record.ID,
			Name:        record.Name,
			Description: record.Description,
		})
	}
	return permissions, nil
}

// Create inserts the role and its grant rows atomically.
func (r *Repository) Create(item *role.Role, permissionIDs []int64) (int64, error) {
	record := user_datamodel.Role{
		Name:        item.Name,
		Description: item.Description,
	}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&record).Error; err != nil {
			return err
		}
		return insertGrants(tx, record.ID, permissionIDs)
	})
	if err != nil {
		return 0, err
	}
	return record.ID, nil
}

// Update saves the profile fields and, when permissionIDs is non-nil, swaps
// the entire grant set inside the same transaction.
func (r *Repository) Update(item *role.Role, permissionIDs *[]int64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&user_datamodel.Role{}).Where("id = ?", item.ID).
			Updates(map[string]interface{}{
				"name":        item.Name,
				"description": item.Description,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return internal.ErrRoleNotFound
		}

		if permissionIDs == nil {
			return nil
		}

		if err := tx.Where("role_id = ?", item.ID).
			Delete(&user_datamodel.RolePermission{}).Error; err != nil {
			return err
		}
		return insertGrants(tx, item.ID, *permissionIDs)
	})
}

func insertGrants(tx *gorm.DB, roleID int64, permissionIDs []int64) error {
	for _, permissionID := range permissionIDs {
		grant := user_datamodel.RolePermission{
			RoleID:       roleID,
			PermissionID: permissionID,
			Granted:      true,
		}
		if err := tx.Create(&grant).Error; err != nil {
			return err
		}
	}
	return nil
}

// Delete removes the role and its grants. Users still holding the role block
// the delete.
func (r *Repository) Delete(id int64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var holders int64
		if err := tx.Model(&user_datamodel.User{}).
			Where("role_id = ?", id).Count(&holders).Error; err != nil {
			return err
		}
		if holders > 0 {
			return internal.ErrRoleInUse
		}

		if err := tx.Where("role_id = ?", id).
			Delete(&user_datamodel.RolePermission{}).Error; err != nil {
			return err
		}

		err := tx.Delete(&user_datamodel.Role{}, id).Error
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23503" {
				return internal.ErrRoleInUse
			}
		}
		return err
	})
}
