package report

import (
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/frahmantamala/performance-evaluation/internal"
)

// Generator runs the aggregation recipes straight against the pool. Each
// recipe returns a Table so exports keep the column order.
type Generator struct {
	db *sqlx.DB
}

func NewGenerator(db *sqlx.DB) *Generator {
	return &Generator{db: db}
}

// Generate dispatches on the report type.
func (g *Generator) Generate(reportType string, filters Filters) (*Table, error) {
	switch reportType {
	case TypeUserEvaluations:
		return g.userEvaluations(filters)
	case TypeDepartmentEvaluations:
		return g.departmentEvaluations(filters)
	case TypeGeneralPerformance:
		return g.generalPerformance(filters)
	case TypePendingEvaluations:
		return g.pendingEvaluations(filters)
	default:
		return nil, internal.ErrUnsupportedReportType
	}
}

// userEvaluations: per-employee evaluation counts and completed-score average.
func (g *Generator) userEvaluations(filters Filters) (*Table, error) {
	query := `
		SELECT
			u.id,
			u.first_name || ' ' || u.last_name AS nombre_completo,
			u.department,
			u.position,
			COUNT(e.id) AS total_evaluaciones,
			COUNT(CASE WHEN e.status = 'completed' THEN 1 END) AS evaluaciones_completadas,
			COUNT(CASE WHEN e.status = 'pending' THEN 1 END) AS evaluaciones_pendientes,
			AVG(CASE WHEN e.status = 'completed' AND e.score IS NOT NULL THEN e.score END) AS promedio_score
		FROM users u
		LEFT JOIN evaluations e ON e.evaluatee_id = u.id
		WHERE u.is_active = true`

	var args []interface{}
	if filters.Department != "" {
		query += ` AND u.department = ?`
		args = append(args, filters.Department)
	}
	if filters.DateFrom != nil {
		query += ` AND e.created_at >= ?`
		args = append(args, *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query += ` AND e.created_at <= ?`
		args = append(args, *filters.DateTo)
	}

	query += ` GROUP BY u.id, u.first_name, u.last_name, u.department, u.position
		ORDER BY u.last_name`

	return g.queryTable(query, args...)
}

// departmentEvaluations: evaluation volume and score average per department.
func (g *Generator) departmentEvaluations(filters Filters) (*Table, error) {
	query := `
		SELECT
			u.department,
			COUNT(DISTINCT u.id) AS total_empleados,
			COUNT(e.id) AS total_evaluaciones,
			COUNT(CASE WHEN e.status = 'completed' THEN 1 END) AS evaluaciones_completadas,
			AVG(CASE WHEN e.status = 'completed' AND e.score IS NOT NULL THEN e.score END) AS promedio_score
		FROM users u
		LEFT JOIN evaluations e ON e.evaluatee_id = u.id
		WHERE u.is_active = true AND u.department <> ''`

	var args []interface{}
	if filters.DateFrom != nil {
		query += ` AND e.created_at >= ?`
		args = append(args, *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query += ` AND e.created_at <= ?`
		args = append(args, *filters.DateTo)
	}

	query += ` GROUP BY u.department ORDER BY u.department`

	return g.queryTable(query, args...)
}

// generalPerformance: one row per evaluation with both parties named.
func (g *Generator) generalPerformance(filters Filters) (*Table, error) {
	query := `
		SELECT
			e.id,
			u1.first_name || ' ' || u1.last_name AS evaluador,
			u2.first_name || ' ' || u2.last_name AS evaluado,
			u2.department,
			e.objective,
			e.score,
			e.status,
			e.created_at,
			e.submitted_at
		FROM evaluations e
		LEFT JOIN users u1 ON u1.id = e.evaluator_id
		LEFT JOIN users u2 ON u2.id = e.evaluatee_id
		WHERE 1=1`

	var args []interface{}
	if filters.Status != "" {
		query += ` AND e.status = ?`
		args = append(args, filters.Status)
	}
	if filters.Department != "" {
		query += ` AND u2.department = ?`
		args = append(args, filters.Department)
	}
	if filters.DateFrom != nil {
		query += ` AND e.created_at >= ?`
		args = append(args, *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query += ` AND e.created_at <= ?`
		args = append(args, *filters.DateTo)
	}

	query += ` ORDER BY e.created_at DESC`

	return g.queryTable(query, args...)
}

// pendingEvaluations: open evaluations with a due-date bucket computed per
// row, soonest due first.
func (g *Generator) pendingEvaluations(filters Filters) (*Table, error) {
	query := `
		SELECT
			e.id,
			e.objective,
			u1.first_name || ' ' || u1.last_name AS evaluador,
			u2.first_name || ' ' || u2.last_name AS evaluado,
			u2.department,
			e.due_date,
			e.created_at
		FROM evaluations e
		LEFT JOIN users u1 ON u1.id = e.evaluator_id
		LEFT JOIN users u2 ON u2.id = e.evaluatee_id
		WHERE e.status = 'pending'`

	var args []interface{}
	if filters.Department != "" {
		query += ` AND u2.department = ?`
		args = append(args, filters.Department)
	}

	query += ` ORDER BY e.due_date ASC`

	rows, err := g.db.Queryx(g.db.Rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	now := time.Now()
	table := &Table{
		Columns: []string{"id", "objective", "evaluador", "evaluado", "department",
			"due_date", "estado_vencimiento", "created_at"},
	}

	for rows.Next() {
		var (
			id                  int64
			objective           string
			evaluador, evaluado *string
			department          *string
			dueDate             *time.Time
			createdAt           time.Time
		)
		if err := rows.Scan(&id, &objective, &evaluador, &evaluado, &department, &dueDate, &createdAt); err != nil {
			return nil, err
		}

		table.Rows = append(table.Rows, []any{
			id, objective, evaluador, evaluado, department,
			dueDate, DueBucket(dueDate, now), createdAt,
		})
	}
	return table, rows.Err()
}

// Dashboard aggregates the headline counters, the five newest evaluations and
// the per-department headcount.
func (g *Generator) Dashboard() (*Dashboard, error) {
	var stats DashboardStats

	counts := []struct {
		dest  *int64
		query string
		args  []interface{}
	}{
		{&stats.TotalUsers, `SELECT COUNT(*) FROM users WHERE is_active = true`, nil},
		{&stats.TotalEvaluations, `SELECT COUNT(*) FROM evaluations`, nil},
		{&stats.PendingEvaluations, `SELECT COUNT(*) FROM evaluations WHERE status = ?`, []interface{}{"pending"}},
		{&stats.CompletedEvaluations, `SELECT COUNT(*) FROM evaluations WHERE status = ?`, []interface{}{"completed"}},
	}
	for _, c := range counts {
		if err := g.db.Get(c.dest, g.db.Rebind(c.query), c.args...); err != nil {
			return nil, err
		}
	}

	recent := []RecentEvaluation{}
	recentQuery := `
		SELECT e.id,
		       u1.first_name || ' ' || u1.last_name AS evaluator_name,
		       u2.first_name || ' ' || u2.last_name AS evaluatee_name,
		       e.status, e.score, e.created_at, e.submitted_at
		FROM evaluations e
		LEFT JOIN users u1 ON u1.id = e.evaluator_id
		LEFT JOIN users u2 ON u2.id = e.evaluatee_id
		ORDER BY e.created_at DESC
		LIMIT 5`
	if err := g.db.Select(&recent, recentQuery); err != nil {
		return nil, err
	}

	departments := []DepartmentStat{}
	departmentQuery := `
		SELECT department, COUNT(*) AS count
		FROM users
		WHERE is_active = true AND department <> ''
		GROUP BY department
		ORDER BY count DESC`
	if err := g.db.Select(&departments, departmentQuery); err != nil {
		return nil, err
	}

	return &Dashboard{
		Stats:             stats,
		RecentEvaluations: recent,
		DepartmentStats:   departments,
	}, nil
}

// queryTable runs a recipe and captures the result with its column order.
func (g *Generator) queryTable(query string, args ...interface{}) (*Table, error) {
	rows, err := g.db.Queryx(g.db.Rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	table := &Table{Columns: columns}
	for rows.Next() {
		values, err := rows.SliceScan()
		if err != nil {
			return nil, err
		}
		for i, v := range values {
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		table.Rows = append(table.Rows, values)
	}
	return table, rows.Err()
}
