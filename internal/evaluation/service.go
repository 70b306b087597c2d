package evaluation

import (
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/frahmantamala/performance-evaluation/internal"
	"github.com/frahmantamala/performance-evaluation/internal/auth"
)

// Repository defines the data access methods for evaluations and their
// evidence files.
type Repository interface {
	Create(e *Evaluation) (int64, error)
	GetByID(id int64) (*Evaluation, error)
	ListAll() ([]*Evaluation, error)
	ListForManager(managerID int64) ([]*Evaluation, error)
	ListByEvaluatee(evaluateeID int64) ([]*Evaluation, error)
	ListByEvaluator(evaluatorID int64) ([]*Evaluation, error)
	Update(e *Evaluation) error
	Delete(id int64) error
	IsDirectReport(userID, managerID int64) (bool, error)
	CompletedResults(evaluateeID int64) ([]*Result, error)
	CreateEvidence(ev *Evidence) (int64, error)
	GetEvidence(id int64) (*Evidence, error)
	ListEvidences(evaluationID int64) ([]*Evidence, error)
}

type Service struct {
	repo                Repository
	allowEmployeeUpdate bool
	logger              *slog.Logger
}

func NewService(repo Repository, allowEmployeeUpdate bool, logger *slog.Logger) *Service {
	return &Service{
		repo:                repo,
		allowEmployeeUpdate: allowEmployeeUpdate,
		logger:              logger,
	}
}

// List returns the evaluations the actor may see: admins everything, managers
// their direct reports, everyone else their own. Custom roles reach here only
// through the read-permission route gate, so they get the self scope rather
// than a rejection.
func (s *Service) List(actor *auth.User) ([]*Evaluation, error) {
	switch {
	case actor.IsAdmin():
		return s.repo.ListAll()
	case actor.HasRole(auth.RoleManager):
		return s.repo.ListForManager(actor.ID)
	default:
		return s.repo.ListByEvaluatee(actor.ID)
	}
}

func (s *Service) ListAsEvaluatee(actor *auth.User) ([]*Evaluation, error) {
	return s.repo.ListByEvaluatee(actor.ID)
}

func (s *Service) ListAsEvaluator(actor *auth.User) ([]*Evaluation, error) {
	return s.repo.ListByEvaluator(actor.ID)
}

func (s *Service) Get(actor *auth.User, id int64) (*Evaluation, error) {
	eval, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	ok, err := s.canView(actor, eval)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, internal.ErrForbidden
	}
	return eval, nil
}

// Create starts an evaluation in pending. Managers may only evaluate direct
// reports; employees only themselves.
func (s *Service) Create(actor *auth.User, dto CreateEvaluationDTO) (*Evaluation, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	switch {
	case actor.IsAdmin():
	case actor.HasRole(auth.RoleManager):
		isReport, err := s.repo.IsDirectReport(dto.EvaluateeID, actor.ID)
		if err != nil {
			return nil, internal.NewInternalError("failed to check team membership", err)
		}
		if !isReport {
			return nil, internal.ErrOutOfScope
		}
	case actor.HasRole(auth.RoleEmployee):
		if dto.EvaluateeID != actor.ID {
			return nil, internal.NewForbiddenError("employees may only evaluate themselves", internal.ErrCodeOutOfScope)
		}
	default:
		return nil, internal.ErrForbidden
	}

	eval := &Evaluation{
		CycleID:     dto.CycleID,
		TemplateID:  dto.TemplateID,
		EvaluatorID: actor.ID,
		EvaluateeID: dto.EvaluateeID,
		Responses:   dto.Responses,
		Score:       dto.Score,
		Comments:    dto.Comments,
		Status:      StatusPending,
		DueDate:     dto.DueDate,
		Objective:   dto.Objective,
	}

	id, err := s.repo.Create(eval)
	if err != nil {
		return nil, internal.NewInternalError("failed to create evaluation", err)
	}

	s.logger.Info("evaluation created",
		"evaluation_id", id, "evaluator_id", actor.ID, "evaluatee_id", dto.EvaluateeID)
	return s.repo.GetByID(id)
}

// Update edits content and may advance the status. Completed evaluations are
// frozen.
func (s *Service) Update(actor *auth.User, id int64, dto UpdateEvaluationDTO) (*Evaluation, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	eval, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	ok, err := s.canModify(actor, eval, s.allowEmployeeUpdate)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, internal.ErrForbidden
	}

	if eval.IsCompleted() {
		return nil, internal.ErrAlreadyCompleted
	}

	if dto.Responses != nil {
		eval.Responses = dto.Responses
	}
	if dto.Score != nil {
		eval.Score = dto.Score
	}
	if dto.Comments != nil {
		eval.Comments = *dto.Comments
	}
	if dto.Status != nil {
		if !CanTransition(eval.Status, *dto.Status) {
			return nil, internal.ErrInvalidStatus
		}
		eval.Status = *dto.Status
		if eval.Status == StatusCompleted && eval.SubmittedAt == nil {
			now := time.Now()
			eval.SubmittedAt = &now
		}
	}

	if err := s.repo.Update(eval); err != nil {
		return nil, internal.NewInternalError("failed to update evaluation", err)
	}

	return s.repo.GetByID(id)
}

// SaveProgress stores partial answers. Only the evaluatee, acting as an
// employee, may save, and only into the two intermediate states.
func (s *Service) SaveProgress(actor *auth.User, id int64, dto SaveProgressDTO) (*Evaluation, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	if dto.Status != StatusPending && dto.Status != StatusInProgress {
		return nil, internal.ErrInvalidStatus
	}

	if !actor.HasRole(auth.RoleEmployee) {
		return nil, internal.NewForbiddenError("only the evaluatee may save progress", internal.ErrCodeOutOfScope)
	}

	eval, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	if eval.EvaluateeID != actor.ID {
		return nil, internal.NewForbiddenError("only the evaluatee may save progress", internal.ErrCodeOutOfScope)
	}

	if eval.IsCompleted() {
		return nil, internal.ErrAlreadyCompleted
	}

	if !CanTransition(eval.Status, dto.Status) {
		return nil, internal.ErrInvalidStatus
	}

	if dto.Responses != nil {
		eval.Responses = dto.Responses
	}
	eval.Status = dto.Status

	if err := s.repo.Update(eval); err != nil {
		return nil, internal.NewInternalError("failed to save progress", err)
	}

	return s.repo.GetByID(id)
}

// Submit closes the evaluation: status completed, submitted_at stamped.
// Submitting twice conflicts.
func (s *Service) Submit(actor *auth.User, id int64) (*Evaluation, error) {
	eval, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	ok, err := s.canModify(actor, eval, true)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, internal.ErrForbidden
	}

	if eval.IsCompleted() {
		return nil, internal.ErrAlreadyCompleted
	}

	now := time.Now()
	eval.Status = StatusCompleted
	eval.SubmittedAt = &now

	if err := s.repo.Update(eval); err != nil {
		return nil, internal.NewInternalError("failed to submit evaluation", err)
	}

	s.logger.Info("evaluation submitted", "evaluation_id", id, "by", actor.ID)
	return s.repo.GetByID(id)
}

// Delete removes the evaluation permanently. Admins anywhere; managers within
// their team.
func (s *Service) Delete(actor *auth.User, id int64) error {
	eval, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}

	switch {
	case actor.IsAdmin():
	case actor.HasRole(auth.RoleManager):
		isReport, err := s.repo.IsDirectReport(eval.EvaluateeID, actor.ID)
		if err != nil {
			return internal.NewInternalError("failed to check team membership", err)
		}
		if !isReport {
			return internal.ErrOutOfScope
		}
	default:
		return internal.ErrForbidden
	}

	if err := s.repo.Delete(id); err != nil {
		return internal.NewInternalError("failed to delete evaluation", err)
	}

	s.logger.Info("evaluation deleted", "evaluation_id", id, "by", actor.ID)
	return nil
}

// MyResults lists the caller's completed evaluations, newest first.
func (s *Service) MyResults(actor *auth.User) ([]*Result, error) {
	results, err := s.repo.CompletedResults(actor.ID)
	if err != nil {
		return nil, internal.NewInternalError("failed to list results", err)
	}
	return results, nil
}

// AttachEvidence stores an uploaded file against the evaluation. The stored
// name is randomized; the original name survives for download headers.
func (s *Service) AttachEvidence(actor *auth.User, evaluationID int64, fileName string, data []byte) (*Evidence, error) {
	if len(data) == 0 {
		return nil, ValidationError{Msg: "file is empty"}
	}

	eval, err := s.repo.GetByID(evaluationID)
	if err != nil {
		return nil, err
	}

	ok, err := s.canAttach(actor, eval)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, internal.NewForbiddenError("not allowed to attach evidence", internal.ErrCodeOutOfScope)
	}

	evidence := &Evidence{
		EvaluationID: evaluationID,
		FileName:     fileName,
		StorageName:  uuid.NewString() + filepath.Ext(fileName),
		FileData:     data,
		UploadedBy:   actor.ID,
		UploadedAt:   time.Now(),
	}

	id, err := s.repo.CreateEvidence(evidence)
	if err != nil {
		return nil, internal.NewInternalError("failed to store evidence", err)
	}
	evidence.ID = id

	s.logger.Info("evidence attached",
		"evaluation_id", evaluationID, "evidence_id", id, "file", fileName, "bytes", len(data))
	return evidence, nil
}

// Evidence fetches one evidence file, enforcing the same visibility as the
// evaluation it belongs to.
func (s *Service) Evidence(actor *auth.User, evidenceID int64) (*Evidence, error) {
	evidence, err := s.repo.GetEvidence(evidenceID)
	if err != nil {
		return nil, err
	}

	eval, err := s.repo.GetByID(evidence.EvaluationID)
	if err != nil {
		return nil, err
	}

	ok, err := s.canView(actor, eval)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, internal.ErrForbidden
	}
	return evidence, nil
}

func (s *Service) ListEvidences(actor *auth.User, evaluationID int64) ([]*Evidence, error) {
	if _, err := s.Get(actor, evaluationID); err != nil {
		return nil, err
	}
	return s.repo.ListEvidences(evaluationID)
}

func (s *Service) canView(actor *auth.User, eval *Evaluation) (bool, error) {
	if actor.IsAdmin() || eval.EvaluatorID == actor.ID || eval.EvaluateeID == actor.ID {
		return true, nil
	}
	if actor.HasRole(auth.RoleManager) {
		return s.repo.IsDirectReport(eval.EvaluateeID, actor.ID)
	}
	return false, nil
}

func (s *Service) canModify(actor *auth.User, eval *Evaluation, allowEvaluatee bool) (bool, error) {
	if actor.IsAdmin() {
		return true, nil
	}
	if actor.HasRole(auth.RoleManager) {
		return s.repo.IsDirectReport(eval.EvaluateeID, actor.ID)
	}
	if allowEvaluatee && eval.EvaluateeID == actor.ID {
		return true, nil
	}
	return false, nil
}

func (s *Service) canAttach(actor *auth.User, eval *Evaluation) (bool, error) {
	if actor.IsAdmin() || eval.EvaluateeID == actor.ID {
		return true, nil
	}
	if actor.HasRole(auth.RoleManager) {
		return s.repo.IsDirectReport(eval.EvaluateeID, actor.ID)
	}
	return false, nil
}
