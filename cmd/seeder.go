package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/frahmantamala/performance-evaluation/internal/auth"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with the base roles, permissions and admin user",
	Long:  `Seed roles, the permission catalog, role grants and a default admin account. Safe to re-run.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		_, db, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}

		seedPermissions(db)
		roleIDs := seedRoles(db)
		seedGrants(db, roleIDs)
		seedAdminUser(db, roleIDs[auth.RoleAdmin])
	},
}

func seedPermissions(db *gorm.DB) {
	for _, name := range auth.AllPermissions {
		var id int64
		row := db.Raw("SELECT id FROM permissions WHERE name = ?", name).Row()
		if err := row.Scan(&id); err == nil {
			continue
		}
		if err := db.Exec("INSERT INTO permissions (name, description, created_at) VALUES (?, ?, now())",
			name, name).Error; err != nil {
			log.Fatalf("failed to insert permission %s: %v", name, err)
		}
		fmt.Println("seeded permission:", name)
	}
}

func seedRoles(db *gorm.DB) map[string]int64 {
	roles := []struct {
		Name string
		Desc string
	}{
		{auth.RoleAdmin, "full access to every module"},
		{auth.RoleManager, "manages evaluations for direct reports"},
		{auth.RoleEmployee, "works on own evaluations"},
	}

	ids := make(map[string]int64, len(roles))
	for _, r := range roles {
		var id int64
		row := db.Raw("SELECT id FROM roles WHERE name = ?", r.Name).Row()
		if err := row.Scan(&id); err == nil {
			ids[r.Name] = id
			continue
		}
		if err := db.Exec("INSERT INTO roles (name, description, created_at, updated_at) VALUES (?, ?, now(), now())",
			r.Name, r.Desc).Error; err != nil {
			log.Fatalf("failed to insert role %s: %v", r.Name, err)
		}
		row = db.Raw("SELECT id FROM roles WHERE name = ?", r.Name).Row()
		if err := row.Scan(&id); err != nil {
			log.Fatalf("failed to read back role %s: %v", r.Name, err)
		}
		ids[r.Name] = id
		fmt.Println("seeded role:", r.Name)
	}
	return ids
}

func seedGrants(db *gorm.DB, roleIDs map[string]int64) {
	for roleName, permissions := range auth.DefaultRoleGrants {
		roleID := roleIDs[roleName]
		for _, permission := range permissions {
			var pid int64
			row := db.Raw("SELECT id FROM permissions WHERE name = ?", permission).Row()
			if err := row.Scan(&pid); err != nil {
				log.Fatalf("permission %s missing while granting to %s: %v", permission, roleName, err)
			}

			var exists int
			row = db.Raw("SELECT 1 FROM role_permissions WHERE role_id = ? AND permission_id = ?", roleID, pid).Row()
			if err := row.Scan(&exists); err == nil {
				continue
			}
			if err := db.Exec("INSERT INTO role_permissions (role_id, permission_id, granted, created_at) VALUES (?, ?, true, now())",
				roleID, pid).Error; err != nil {
				log.Fatalf("failed to grant %s to %s: %v", permission, roleName, err)
			}
		}
		fmt.Printf("seeded grants for %s: %d permissions\n", roleName, len(permissions))
	}
}

func seedAdminUser(db *gorm.DB, adminRoleID int64) {
	const username = "admin"

	var exists int
	row := db.Raw("SELECT 1 FROM users WHERE username = ?", username).Row()
	if err := row.Scan(&exists); err == nil {
		fmt.Println("admin user already exists")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("failed to hash admin password: %v", err)
	}

	if err := db.Exec(`INSERT INTO users
		(username, email, password_hash, first_name, last_name, department, position, role_id, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, true, now(), now())`,
		username, "admin@example.com", string(hash),
		"System", "Administrator", "IT", "Administrator", adminRoleID).Error; err != nil {
		log.Fatalf("failed to insert admin user: %v", err)
	}
	fmt.Println("seeded admin user: admin / admin123 (change it)")
}
