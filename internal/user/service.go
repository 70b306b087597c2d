package user

import (
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/frahmantamala/performance-evaluation/internal"
)

// Repository defines the data access methods for the user directory.
type Repository interface {
	List(includeInactive bool) ([]*User, error)
	GetByID(id int64) (*User, error)
	ExistsByUsernameOrEmail(username, email string, excludeID int64) (bool, error)
	Create(user *User, passwordHash string) (int64, error)
	Update(user *User) error
	SetActive(id int64, active bool) error
	Delete(id int64) error
	TeamOf(managerID int64) ([]*User, error)
}

type Service struct {
	repo       Repository
	bcryptCost int
	logger     *slog.Logger
}

func NewService(repo Repository, bcryptCost int, logger *slog.Logger) *Service {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		repo:       repo,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

// List returns active users; includeInactive widens it to everyone.
func (s *Service) List(includeInactive bool) ([]*User, error) {
	users, err := s.repo.List(includeInactive)
	if err != nil {
		return nil, internal.NewInternalError("failed to list users", err)
	}
	return users, nil
}

func (s *Service) Get(id int64) (*User, error) {
	return s.repo.GetByID(id)
}

func (s *Service) Create(dto CreateUserDTO) (*User, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	exists, err := s.repo.ExistsByUsernameOrEmail(dto.Username, dto.Email, 0)
	if err != nil {
		return nil, internal.NewInternalError("failed to check existing users", err)
	}
	if exists {
		return nil, internal.ErrDuplicateUser
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(dto.Password), s.bcryptCost)
	if err != nil {
		return nil, internal.NewInternalError("failed to hash password", err)
	}

	user := &User{
		Username:   dto.Username,
		Email:      dto.Email,
		FirstName:  dto.FirstName,
		LastName:   dto.LastName,
		Department: dto.Department,
		Position:   dto.Position,
		HireDate:   dto.HireDate,
		IsActive:   true,
		RoleID:     dto.RoleID,
		ManagerID:  dto.ManagerID,
	}

	id, err := s.repo.Create(user, string(hash))
	if err != nil {
		return nil, internal.NewInternalError("failed to create user", err)
	}

	s.logger.Info("user created", "user_id", id, "username", dto.Username)
	return s.repo.GetByID(id)
}

func (s *Service) Update(id int64, dto UpdateUserDTO) (*User, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	if dto.Username != nil {
		existing.Username = *dto.Username
	}
	if dto.Email != nil {
		existing.Email = *dto.Email
	}
	if dto.Username != nil || dto.Email != nil {
		exists, err := s.repo.ExistsByUsernameOrEmail(existing.Username, existing.Email, id)
		if err != nil {
			return nil, internal.NewInternalError("failed to check existing users", err)
		}
		if exists {
			return nil, internal.ErrDuplicateUser
		}
	}
	if dto.FirstName != nil {
		existing.FirstName = *dto.FirstName
	}
	if dto.LastName != nil {
		existing.LastName = *dto.LastName
	}
	if dto.RoleID != nil {
		existing.RoleID = *dto.RoleID
	}
	if dto.Department != nil {
		existing.Department = *dto.Department
	}
	if dto.Position != nil {
		existing.Position = *dto.Position
	}
	if dto.ManagerID != nil {
		existing.ManagerID = dto.ManagerID
	}
	if dto.HireDate != nil {
		existing.HireDate = dto.HireDate
	}
	if dto.IsActive != nil {
		existing.IsActive = *dto.IsActive
	}

	if err := s.repo.Update(existing); err != nil {
		return nil, internal.NewInternalError("failed to update user", err)
	}

	return s.repo.GetByID(id)
}

// Deactivate soft deletes a user. Deactivating an already inactive user is a
// success, so repeated deletes behave identically.
func (s *Service) Deactivate(id int64) error {
	existing, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}

	if !existing.IsActive {
		return nil
	}

	if err := s.repo.SetActive(id, false); err != nil {
		return internal.NewInternalError("failed to deactivate user", err)
	}

	s.logger.Info("user deactivated", "user_id", id)
	return nil
}

// Delete removes the row permanently. Rows referencing the user block it.
func (s *Service) Delete(id int64) error {
	if _, err := s.repo.GetByID(id); err != nil {
		return err
	}

	if err := s.repo.Delete(id); err != nil {
		return err
	}

	s.logger.Info("user permanently deleted", "user_id", id)
	return nil
}

// Team returns the manager's direct reports; reports of reports are not
// included.
func (s *Service) Team(managerID int64) ([]*User, error) {
	team, err := s.repo.TeamOf(managerID)
	if err != nil {
		return nil, internal.NewInternalError("failed to list team", err)
	}
	return team, nil
}
