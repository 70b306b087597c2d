package report

import (
	"database/sql"

	"gorm.io/gorm"

	"github.com/frahmantamala/performance-evaluation/internal"
	report_datamodel "github.com/frahmantamala/performance-evaluation/internal/core/datamodel/report"
	"github.com/frahmantamala/performance-evaluation/internal/report"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) report.Repository {
	return &Repository{db: db}
}

func (r *Repository) List(filter report.ListFilter) ([]*report.Report, error) {
	query := `
		SELECT r.id, r.name, r.type, r.filters, r.data, r.generated_by,
		       u.first_name || ' ' || u.last_name AS generated_by_name,
		       r.created_at
		FROM reports r
		LEFT JOIN users u ON u.id = r.generated_by
		WHERE 1=1`

	var args []interface{}
	if filter.Type != "" {
		query += ` AND r.type = ?`
		args = append(args, filter.Type)
	}
	if filter.GeneratedBy != 0 {
		query += ` AND r.generated_by = ?`
		args = append(args, filter.GeneratedBy)
	}
	if filter.From != nil {
		query += ` AND r.created_at >= ?`
		args = append(args, *filter.From)
	}
	if filter.To != nil {
		query += ` AND r.created_at <= ?`
		args = append(args, *filter.To)
	}

	query += ` ORDER BY r.created_at DESC LIMIT ? OFFSET ?`
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.Raw(query, args...).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []*report.Report
	for rows.Next() {
		item, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, item)
	}
	return reports, rows.Err()
}

func (r *Repository) GetByID(id int64) (*report.Report, error) {
	query := `
		SELECT r.id, r.name, r.type, r.filters, r.data, r.generated_by,
		       u.first_name || ' ' || u.last_name AS generated_by_name,
		       r.created_at
		FROM reports r
		LEFT JOIN users u ON u.id = r.generated_by
		WHERE r.id = ?`

	rows, err := r.db.Raw(query, id).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, internal.ErrReportNotFound
	}
	return scanReport(rows)
}

func scanReport(rows *sql.Rows) (*report.Report, error) {
	var item report.Report
	var filters, data sql.NullString
	var generatedByName sql.NullString

	if err := rows.Scan(&item.ID, &item.Name, &item.Type, &filters, &data,
		&item.GeneratedBy, &generatedByName, &item.CreatedAt); err != nil {
		return nil, err
	}

	if filters.Valid {
		item.Filters = []byte(filters.String)
	} else {
		item.Filters = []byte("{}")
	}
	if data.Valid {
		item.Data = []byte(data.String)
	} else {
		item.Data = []byte("{}")
	}
	item.GeneratedByName = generatedByName.String

	return &item, nil
}

func (r *Repository) Create(item *report.Report) (int64, error) {
	record := report_datamodel.Report{
		Name:        item.Name,
		Type:        item.Type,
		Filters:     string(item.Filters),
		Data:        string(item.Data),
		GeneratedBy: item.GeneratedBy,
	}

	if err := r.db.Create(&record).Error; err != nil {
		return 0, err
	}
	return record.ID, nil
}

func (r *Repository) Delete(id int64) error {
	result := r.db.Delete(&report_datamodel.Report{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return internal.ErrReportNotFound
	}
	return nil
}
