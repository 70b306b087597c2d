package course

import (
	"log/slog"

	"github.com/frahmantamala/performance-evaluation/internal"
	"github.com/frahmantamala/performance-evaluation/internal/auth"
)

// Repository reads and writes training assignments. All access is scoped to
// one user; there is no cross-user view.
type Repository interface {
	CoursesFor(userID int64) ([]*Course, error)
	UpdateProgress(userID, courseID int64, progress int, status string) error
	AssignmentFor(userID, courseID int64) (*Course, error)
}

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// MyCourses lists the caller's assigned courses with their progress.
func (s *Service) MyCourses(actor *auth.User) ([]*Course, error) {
	courses, err := s.repo.CoursesFor(actor.ID)
	if err != nil {
		return nil, internal.NewInternalError("failed to list courses", err)
	}
	return courses, nil
}

// UpdateProgress overwrites the caller's progress on one assigned course.
// NotFound when the course is not assigned to them.
func (s *Service) UpdateProgress(actor *auth.User, courseID int64, dto UpdateProgressDTO) (*Course, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateProgress(actor.ID, courseID, dto.Progress, dto.Status); err != nil {
		return nil, err
	}

	s.logger.Info("course progress updated",
		"user_id", actor.ID, "course_id", courseID,
		"progress", dto.Progress, "status", dto.Status)
	return s.repo.AssignmentFor(actor.ID, courseID)
}
