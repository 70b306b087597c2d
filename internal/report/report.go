package report

import (
	"encoding/json"
	"time"
)

// Report type names. These are the values stored in reports.type and accepted
// by the generator; labels are the human-facing names the UI shows.
const (
	TypeUserEvaluations       = "evaluaciones_por_usuario"
	TypeDepartmentEvaluations = "evaluaciones_por_departamento"
	TypeGeneralPerformance    = "rendimiento_general"
	TypePendingEvaluations    = "evaluaciones_pendientes"
)

// TypeInfo pairs a report type with its display label.
type TypeInfo struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Types enumerates the supported recipes in display order.
func Types() []TypeInfo {
	return []TypeInfo{
		{Value: TypeUserEvaluations, Label: "Evaluaciones por Usuario"},
		{Value: TypeDepartmentEvaluations, Label: "Evaluaciones por Departamento"},
		{Value: TypeGeneralPerformance, Label: "Rendimiento General"},
		{Value: TypePendingEvaluations, Label: "Evaluaciones Pendientes"},
	}
}

// SupportedType reports whether the generator has a recipe for the type.
func SupportedType(reportType string) bool {
	for _, t := range Types() {
		if t.Value == reportType {
			return true
		}
	}
	return false
}

// Due-date buckets of the pending-evaluations report.
const (
	BucketOverdue = "Vencida"
	BucketDueSoon = "Por vencer"
	BucketOnTime  = "En tiempo"
)

// DueBucket classifies a due date against today: overdue when the due day has
// passed, due-soon within the next seven days, on-time otherwise. A missing
// due date counts as on-time.
func DueBucket(due *time.Time, now time.Time) string {
	if due == nil {
		return BucketOnTime
	}

	// compare calendar days in now's zone, not 24h epoch buckets
	today := calendarDay(now, now.Location())
	dueDay := calendarDay(*due, now.Location())

	switch {
	case dueDay.Before(today):
		return BucketOverdue
	case !dueDay.After(today.AddDate(0, 0, 7)):
		return BucketDueSoon
	default:
		return BucketOnTime
	}
}

func calendarDay(t time.Time, loc *time.Location) time.Time {
	year, month, day := t.In(loc).Date()
	return time.Date(year, month, day, 0, 0, 0, 0, loc)
}

// Table is the generic payload every recipe produces: an ordered column list
// plus rows of values in that order. Maps would lose the column order, so
// exports always walk this shape.
type Table struct {
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

// Filters narrows a recipe's scan. Zero values mean no constraint.
type Filters struct {
	Department string     `json:"department,omitempty"`
	Status     string     `json:"status,omitempty"`
	DateFrom   *time.Time `json:"dateFrom,omitempty"`
	DateTo     *time.Time `json:"dateTo,omitempty"`
}

// Report is a stored snapshot: the filters it was generated with and the
// table payload, both as JSON.
type Report struct {
	ID              int64           `json:"id"`
	Name            string          `json:"name"`
	Type            string          `json:"type"`
	Filters         json.RawMessage `json:"filters"`
	Data            json.RawMessage `json:"data"`
	GeneratedBy     int64           `json:"generated_by"`
	GeneratedByName string          `json:"generated_by_name,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// ListFilter narrows the stored-reports listing.
type ListFilter struct {
	Type        string
	GeneratedBy int64
	From        *time.Time
	To          *time.Time
	Limit       int
	Offset      int
}

// DashboardStats are the headline counters of the dashboard endpoint.
type DashboardStats struct {
	TotalUsers           int64 `json:"totalUsers"`
	TotalEvaluations     int64 `json:"totalEvaluations"`
	PendingEvaluations   int64 `json:"pendingEvaluations"`
	CompletedEvaluations int64 `json:"completedEvaluations"`
}

type DepartmentStat struct {
	Department string `json:"department" db:"department"`
	Count      int64  `json:"count" db:"count"`
}

type RecentEvaluation struct {
	ID            int64      `json:"id" db:"id"`
	EvaluatorName *string    `json:"evaluator_name" db:"evaluator_name"`
	EvaluateeName *string    `json:"evaluatee_name" db:"evaluatee_name"`
	Status        string     `json:"status" db:"status"`
	Score         *float64   `json:"score" db:"score"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	SubmittedAt   *time.Time `json:"submitted_at" db:"submitted_at"`
}

type Dashboard struct {
	Stats             DashboardStats     `json:"stats"`
	RecentEvaluations []RecentEvaluation `json:"recentEvaluations"`
	DepartmentStats   []DepartmentStat   `json:"departmentStats"`
}
