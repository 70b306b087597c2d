package report

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

var spanishMonths = [...]string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

// Scheduler generates the recurring reports in-process: weekly pending
// evaluations every Monday morning and the previous month's performance on
// the first of each month. Failures are logged and the next run proceeds.
type Scheduler struct {
	cron         *cron.Cron
	service      *Service
	systemUserID int64
	logger       *slog.Logger
}

func NewScheduler(service *Service, systemUserID int64, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		cron:         cron.New(),
		service:      service,
		systemUserID: systemUserID,
		logger:       logger,
	}
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc("0 8 * * 1", s.guarded("weekly pending report", s.weeklyPending)); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc("0 9 1 * *", s.guarded("monthly performance report", s.monthlyPerformance)); err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("report scheduler started", "system_user_id", s.systemUserID)
	return nil
}

// Stop waits for any running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("report scheduler stopped")
}

// guarded keeps one bad run from taking the process down with it.
func (s *Scheduler) guarded(jobName string, job func() error) func() {
	return func() {
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("scheduled report panicked", "job", jobName, "panic", r)
			}
		}()

		if err := job(); err != nil {
			s.logger.Error("scheduled report failed", "job", jobName, "error", err)
			return
		}
		s.logger.Info("scheduled report generated", "job", jobName)
	}
}

func (s *Scheduler) weeklyPending() error {
	name := fmt.Sprintf("Reporte Semanal - Evaluaciones Pendientes %s",
		time.Now().Format("02/01/2006"))

	_, err := s.service.Create(name, TypePendingEvaluations, Filters{}, s.systemUserID)
	return err
}

// monthlyPerformance covers the previous calendar month.
func (s *Scheduler) monthlyPerformance() error {
	now := time.Now()
	firstOfThisMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	from := firstOfThisMonth.AddDate(0, -1, 0)
	to := firstOfThisMonth.Add(-time.Second)

	name := fmt.Sprintf("Reporte Mensual - Rendimiento %s %d",
		spanishMonths[from.Month()-1], from.Year())

	_, err := s.service.Create(name, TypeGeneralPerformance, Filters{
		DateFrom: &from,
		DateTo:   &to,
	}, s.systemUserID)
	return err
}
