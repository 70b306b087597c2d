package role

import (
	"log/slog"
	"testing"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/frahmantamala/performance-evaluation/internal"
)

func TestRole(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Role Module Suite")
}

type mockRoleRepository struct {
	roles       map[int64]*Role
	grants      map[int64][]int64
	permissions []*Permission
	holders     map[int64]int64 // roleID -> users holding it
	nextID      int64
}

func newMockRoleRepository() *mockRoleRepository {
	return &mockRoleRepository{
		roles: map[int64]*Role{
			1: {ID: 1, Name: "admin", Description: "full access"},
			2: {ID: 2, Name: "manager", Description: "team scope"},
			3: {ID: 3, Name: "employee", Description: "own scope"},
		},
		grants: map[int64][]int64{
			1: {1, 2, 3, 4},
			2: {1, 2},
			3: {2},
		},
		permissions: []*Permission{
			{ID: 1, Name: "evaluations.create"},
			{ID: 2, Name: "evaluations.read"},
			{ID: 3, Name: "evaluations.update"},
			{ID: 4, Name: "evaluations.delete"},
		},
		holders: map[int64]int64{1: 1, 2: 2, 3: 10},
		nextID:  4,
	}
}

func (m *mockRoleRepository) permissionsByIDs(ids []int64) []Permission {
	var out []Permission
	for _, id := range ids {
		for _, p := range m.permissions {
			if p.ID == id {
				out = append(out, *p)
			}
		}
	}
	return out
}

func (m *mockRoleRepository) GetAll() ([]*Role, error) {
	var out []*Role
	for _, r := range m.roles {
		clone := *r
		clone.UserCount = m.holders[r.ID]
		out = append(out, &clone)
	}
	return out, nil
}

func (m *mockRoleRepository) GetByID(id int64) (*Role, error) {
	r, ok := m.roles[id]
	if !ok {
		return nil, internal.ErrRoleNotFound
	}
	clone := *r
	clone.UserCount = m.holders[id]
	clone.Permissions = m.permissionsByIDs(m.grants[id])
	return &clone, nil
}

func (m *mockRoleRepository) ExistsByName(name string, excludeID int64) (bool, error) {
	for _, r := range m.roles {
		if r.ID != excludeID && r.Name == name {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockRoleRepository) ListPermissions() ([]*Permission, error) {
	return m.permissions, nil
}

func (m *mockRoleRepository) Create(role *Role, permissionIDs []int64) (int64, error) {
	created := *role
	created.ID = m.nextID
	m.nextID++
	m.roles[created.ID] = &created
	m.grants[created.ID] = permissionIDs
	return created.ID, nil
}

func (m *mockRoleRepository) Update(role *Role, permissionIDs *[]int64) error {
	existing, ok := m.roles[role.ID]
	if !ok {
		return internal.ErrRoleNotFound
	}
	existing.Name = role.Name
	existing.Description = role.Description
	if permissionIDs != nil {
		m.grants[role.ID] = *permissionIDs
	}
	return nil
}

func (m *mockRoleRepository) Delete(id int64) error {
	if _, ok := m.roles[id]; !ok {
		return internal.ErrRoleNotFound
	}
	if m.holders[id] > 0 {
		return internal.ErrRoleInUse
	}
	delete(m.roles, id)
	delete(m.grants, id)
	return nil
}

var _ = ginkgo.Describe("RoleService", func() {
	var (
		service  *Service
		mockRepo *mockRoleRepository
	)

	ginkgo.BeforeEach(func() {
		mockRepo = newMockRoleRepository()
		service = NewService(mockRepo, slog.Default())
	})

	ginkgo.Describe("CreateRole", func() {
		ginkgo.It("creates a role with its granted permissions", func() {
			created, err := service.CreateRole(CreateRoleDTO{
				Name:          "reviewer",
				Description:   "read only",
				PermissionIDs: []int64{2},
			})

			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(created.Permissions).To(gomega.HaveLen(1))
			gomega.Expect(created.Permissions[0].Name).To(gomega.Equal("evaluations.read"))
		})

		ginkgo.It("rejects duplicate names", func() {
			_, err := service.CreateRole(CreateRoleDTO{Name: "admin"})

			gomega.Expect(err).To(gomega.MatchError(internal.ErrRoleExists))
		})

		ginkgo.It("rejects an empty name", func() {
			_, err := service.CreateRole(CreateRoleDTO{Name: "  "})

			gomega.Expect(err).To(gomega.HaveOccurred())
			_, ok := err.(ValidationError)
			gomega.Expect(ok).To(gomega.BeTrue())
		})
	})

	ginkgo.Describe("UpdateRole", func() {
		ginkgo.It("replaces the grant set when permissions are provided", func() {
			newGrants := []int64{1, 2, 3}
			updated, err := service.UpdateRole(3, UpdateRoleDTO{PermissionIDs: &newGrants})

			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(updated.Permissions).To(gomega.HaveLen(3))
		})

		ginkgo.It("leaves grants untouched when permissions are omitted", func() {
			desc := "renamed"
			updated, err := service.UpdateRole(3, UpdateRoleDTO{Description: &desc})

			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(updated.Description).To(gomega.Equal("renamed"))
			gomega.Expect(updated.Permissions).To(gomega.HaveLen(1))
		})

		ginkgo.It("rejects renaming onto an existing role", func() {
			taken := "admin"
			_, err := service.UpdateRole(3, UpdateRoleDTO{Name: &taken})

			gomega.Expect(err).To(gomega.MatchError(internal.ErrRoleExists))
		})
	})

	ginkgo.Describe("DeleteRole", func() {
		ginkgo.It("refuses while users still hold the role", func() {
			err := service.DeleteRole(3)

			gomega.Expect(err).To(gomega.MatchError(internal.ErrRoleInUse))
		})

		ginkgo.It("deletes an unused role", func() {
			created, err := service.CreateRole(CreateRoleDTO{Name: "temp"})
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			gomega.Expect(service.DeleteRole(created.ID)).To(gomega.Succeed())

			_, err = service.GetRole(created.ID)
			gomega.Expect(err).To(gomega.MatchError(internal.ErrRoleNotFound))
		})

		ginkgo.It("returns not found for unknown roles", func() {
			gomega.Expect(service.DeleteRole(999)).To(gomega.MatchError(internal.ErrRoleNotFound))
		})
	})

	ginkgo.Describe("GetRolePermissions", func() {
		ginkgo.It("returns only the granted set", func() {
			permissions, err := service.GetRolePermissions(2)

			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(permissions).To(gomega.HaveLen(2))
		})
	})
})
