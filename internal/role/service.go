package role

import (
	"log/slog"

	"github.com/frahmantamala/performance-evaluation/internal"
)

type RepositoryAPI interface {
	GetAll() ([]*Role, error)
	GetByID(id int64) (*Role, error)
	ExistsByName(name string, excludeID int64) (bool, error)
	ListPermissions() ([]*Permission, error)
	Create(role *Role, permissionIDs []int64) (int64, error)
	Update(role *Role, permissionIDs *[]int64) error
	Delete(id int64) error
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (s *Service) GetAllRoles() ([]*Role, error) {
	roles, err := s.repo.GetAll()
	if err != nil {
		return nil, internal.NewInternalError("failed to list roles", err)
	}
	return roles, nil
}

func (s *Service) GetRole(id int64) (*Role, error) {
	return s.repo.GetByID(id)
}

// GetRolePermissions returns only the granted permissions of a role.
func (s *Service) GetRolePermissions(id int64) ([]Permission, error) {
	role, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	return role.Permissions, nil
}

func (s *Service) ListPermissions() ([]*Permission, error) {
	permissions, err := s.repo.ListPermissions()
	if err != nil {
		return nil, internal.NewInternalError("failed to list permissions", err)
	}
	return permissions, nil
}

// CreateRole creates the role and its grants in one transaction so a failed
// grant never leaves a half-configured role behind.
func (s *Service) CreateRole(dto CreateRoleDTO) (*Role, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	exists, err := s.repo.ExistsByName(dto.Name, 0)
	if err != nil {
		return nil, internal.NewInternalError("failed to check role name", err)
	}
	if exists {
		return nil, internal.ErrRoleExists
	}

	role := &Role{
		Name:        dto.Name,
		Description: dto.Description,
	}

	id, err := s.repo.Create(role, dto.PermissionIDs)
	if err != nil {
		return nil, internal.NewInternalError("failed to create role", err)
	}

	s.logger.Info("role created", "role_id", id, "name", dto.Name)
	return s.repo.GetByID(id)
}

// UpdateRole updates the profile fields and, when a permission list is given,
// replaces the whole grant set.
func (s *Service) UpdateRole(id int64, dto UpdateRoleDTO) (*Role, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	if dto.Name != nil && *dto.Name != existing.Name {
		exists, err := s.repo.ExistsByName(*dto.Name, id)
		if err != nil {
			return nil, internal.NewInternalError("failed to check role name", err)
		}
		if exists {
			return nil, internal.ErrRoleExists
		}
		existing.Name = *dto.Name
	}
	if dto.Description != nil {
		existing.Description = *dto.Description
	}

	if err := s.repo.Update(existing, dto.PermissionIDs); err != nil {
		return nil, internal.NewInternalError("failed to update role", err)
	}

	s.logger.Info("role updated", "role_id", id)
	return s.repo.GetByID(id)
}

// DeleteRole refuses to delete a role that users still hold.
func (s *Service) DeleteRole(id int64) error {
	if _, err := s.repo.GetByID(id); err != nil {
		return err
	}

	if err := s.repo.Delete(id); err != nil {
		return err
	}

	s.logger.Info("role deleted", "role_id", id)
	return nil
}
