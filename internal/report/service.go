package report

import (
	"encoding/json"
	"log/slog"

	"github.com/frahmantamala/performance-evaluation/internal"
)

// Repository stores the generated snapshots.
type Repository interface {
	List(filter ListFilter) ([]*Report, error)
	GetByID(id int64) (*Report, error)
	Create(r *Report) (int64, error)
	Delete(id int64) error
}

// TableGenerator produces a report payload for a type and filter set.
type TableGenerator interface {
	Generate(reportType string, filters Filters) (*Table, error)
	Dashboard() (*Dashboard, error)
}

type Service struct {
	repo      Repository
	generator TableGenerator
	logger    *slog.Logger
}

func NewService(repo Repository, generator TableGenerator, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		generator: generator,
		logger:    logger,
	}
}

func (s *Service) List(filter ListFilter) ([]*Report, error) {
	if filter.Limit <= 0 || filter.Limit > 200 {
		filter.Limit = 50
	}
	reports, err := s.repo.List(filter)
	if err != nil {
		return nil, internal.NewInternalError("failed to list reports", err)
	}
	return reports, nil
}

func (s *Service) Get(id int64) (*Report, error) {
	return s.repo.GetByID(id)
}

func (s *Service) Types() []TypeInfo {
	return Types()
}

func (s *Service) Dashboard() (*Dashboard, error) {
	dashboard, err := s.generator.Dashboard()
	if err != nil {
		return nil, internal.NewInternalError("failed to build dashboard", err)
	}
	return dashboard, nil
}

// Create runs the recipe now and stores the snapshot attributed to the
// caller.
func (s *Service) Create(name, reportType string, filters Filters, generatedBy int64) (*Report, error) {
	if name == "" {
		return nil, ValidationError{Msg: "name is required"}
	}
	if !SupportedType(reportType) {
		return nil, internal.ErrUnsupportedReportType
	}

	table, err := s.generator.Generate(reportType, filters)
	if err != nil {
		if _, ok := internal.IsAppError(err); ok {
			return nil, err
		}
		return nil, internal.NewInternalError("failed to generate report", err)
	}

	filtersJSON, err := json.Marshal(filters)
	if err != nil {
		return nil, internal.NewInternalError("failed to encode filters", err)
	}
	dataJSON, err := json.Marshal(table)
	if err != nil {
		return nil, internal.NewInternalError("failed to encode report data", err)
	}

	record := &Report{
		Name:        name,
		Type:        reportType,
		Filters:     filtersJSON,
		Data:        dataJSON,
		GeneratedBy: generatedBy,
	}

	id, err := s.repo.Create(record)
	if err != nil {
		return nil, internal.NewInternalError("failed to store report", err)
	}

	s.logger.Info("report generated",
		"report_id", id, "type", reportType, "rows", len(table.Rows), "generated_by", generatedBy)
	return s.repo.GetByID(id)
}

func (s *Service) Delete(id int64) error {
	if err := s.repo.Delete(id); err != nil {
		return err
	}
	s.logger.Info("report deleted", "report_id", id)
	return nil
}

// Table decodes a stored report payload back into its table shape.
func (s *Service) Table(r *Report) (*Table, error) {
	var table Table
	if err := json.Unmarshal(r.Data, &table); err != nil {
		return nil, internal.NewInternalError("stored report payload is corrupt", err)
	}
	return &table, nil
}

type ValidationError struct {
	Msg string
}

func (v ValidationError) Error() string { return v.Msg }

func (v ValidationError) IsValidation() bool { return true }
