package evaluation

import (
	"database/sql"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/frahmantamala/performance-evaluation/internal"
	eval_datamodel "github.com/frahmantamala/performance-evaluation/internal/core/datamodel/evaluation"
	user_datamodel "github.com/frahmantamala/performance-evaluation/internal/core/datamodel/user"
	"github.com/frahmantamala/performance-evaluation/internal/evaluation"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

const listQuery = `
	SELECT e.id, e.cycle_id, e.template_id, e.evaluator_id, e.evaluatee_id,
	       u1.first_name || ' ' || u1.last_name AS evaluator_name,
	       u2.first_name || ' ' || u2.last_name AS evaluatee_name,
	       ec.name AS cycle_name, et.name AS template_name,
	       e.responses, e.score, e.comments, e.status, e.due_date,
	       e.objective, e.submitted_at, e.created_at, e.updated_at
	FROM evaluations e
	LEFT JOIN users u1 ON u1.id = e.evaluator_id
	LEFT JOIN users u2 ON u2.id = e.evaluatee_id
	LEFT JOIN evaluation_cycles ec ON ec.id = e.cycle_id
	LEFT JOIN evaluation_templates et ON et.id = e.template_id`

func (r *Repository) GetByID(id int64) (*evaluation.Evaluation, error) {
	evaluations, err := r.queryEvaluations(listQuery+` WHERE e.id = ?`, id)
	if err != nil {
		return nil, err
	}
	if len(evaluations) == 0 {
		return nil, internal.ErrEvaluationNotFound
	}
	return evaluations[0], nil
}

func (r *Repository) ListAll() ([]*evaluation.Evaluation, error) {
	return r.queryEvaluations(listQuery + ` ORDER BY e.created_at DESC`)
}

// ListForManager scopes to evaluations whose evaluatee reports directly to
// the manager.
func (r *Repository) ListForManager(managerID int64) ([]*evaluation.Evaluation, error) {
	return r.queryEvaluations(
		listQuery+` WHERE e.evaluatee_id IN (SELECT id FROM users WHERE manager_id = ?) ORDER BY e.created_at DESC`,
		managerID)
}

func (r *Repository) ListByEvaluatee(evaluateeID int64) ([]*evaluation.Evaluation, error) {
	return r.queryEvaluations(listQuery+` WHERE e.evaluatee_id = ? ORDER BY e.created_at DESC`, evaluateeID)
}

func (r *Repository) ListByEvaluator(evaluatorID int64) ([]*evaluation.Evaluation, error) {
	return r.queryEvaluations(listQuery+` WHERE e.evaluator_id = ? ORDER BY e.created_at DESC`, evaluatorID)
}

func (r *Repository) queryEvaluations(query string, args ...interface{}) ([]*evaluation.Evaluation, error) {
	rows, err := r.db.Raw(query, args...).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var evaluations []*evaluation.Evaluation
	for rows.Next() {
		var e evaluation.Evaluation
		var evaluatorName, evaluateeName sql.NullString
		var responses sql.NullString
		if err := rows.Scan(&e.ID, &e.CycleID, &e.TemplateID, &e.EvaluatorID, &e.EvaluateeID,
			&evaluatorName, &evaluateeName, &e.CycleName, &e.TemplateName,
			&responses, &e.Score, &e.Comments, &e.Status, &e.DueDate,
			&e.Objective, &e.SubmittedAt, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		e.EvaluatorName = evaluatorName.String
		e.EvaluateeName = evaluateeName.String
		if responses.Valid {
			e.Responses = []byte(responses.String)
		} else {
			e.Responses = []byte("{}")
		}
		evaluations = append(evaluations, &e)
	}
	return evaluations, rows.Err()
}

func (r *Repository) Create(e *evaluation.Evaluation) (int64, error) {
	record := eval_datamodel.Evaluation{
		CycleID:     e.CycleID,
		TemplateID:  e.TemplateID,
		EvaluatorID: e.EvaluatorID,
		EvaluateeID: e.EvaluateeID,
		Responses:   responsesOrDefault(e.Responses),
		Score:       e.Score,
		Comments:    e.Comments,
		Status:      e.Status,
		DueDate:     e.DueDate,
		Objective:   e.Objective,
	}

	if err := r.db.Create(&record).Error; err != nil {
		return 0, err
	}
	return record.ID, nil
}

func (r *Repository) Update(e *evaluation.Evaluation) error {
	updates := map[string]interface{}{
		"responses":    responsesOrDefault(e.Responses),
		"score":        e.Score,
		"comments":     e.Comments,
		"status":       e.Status,
		"submitted_at": e.SubmittedAt,
		"updated_at":   time.Now(),
	}

	result := r.db.Model(&eval_datamodel.Evaluation{}).Where("id = ?", e.ID).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return internal.ErrEvaluationNotFound
	}
	return nil
}

func (r *Repository) Delete(id int64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("evaluation_id = ?", id).
			Delete(&eval_datamodel.Evidence{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&eval_datamodel.Evaluation{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return internal.ErrEvaluationNotFound
		}
		return nil
	})
}

func (r *Repository) IsDirectReport(userID, managerID int64) (bool, error) {
	var count int64
	err := r.db.Model(&user_datamodel.User{}).
		Where("id = ? AND manager_id = ?", userID, managerID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *Repository) CompletedResults(evaluateeID int64) ([]*evaluation.Result, error) {
	query := `
		SELECT e.id, ec.name AS cycle, et.name AS template, e.score, e.comments,
		       e.submitted_at, e.responses
		FROM evaluations e
		LEFT JOIN evaluation_cycles ec ON ec.id = e.cycle_id
		LEFT JOIN evaluation_templates et ON et.id = e.template_id
		WHERE e.evaluatee_id = ? AND e.status = 'completed'
		ORDER BY e.submitted_at DESC`

	rows, err := r.db.Raw(query, evaluateeID).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*evaluation.Result
	for rows.Next() {
		var result evaluation.Result
		var responses sql.NullString
		if err := rows.Scan(&result.ID, &result.Cycle, &result.Template, &result.Score,
			&result.Comments, &result.SubmittedAt, &responses); err != nil {
			return nil, err
		}
		if responses.Valid {
			result.Responses = []byte(responses.String)
		} else {
			result.Responses = []byte("{}")
		}
		results = append(results, &result)
	}
	return results, rows.Err()
}

func (r *Repository) CreateEvidence(ev *evaluation.Evidence) (int64, error) {
	record := eval_datamodel.Evidence{
		EvaluationID: ev.EvaluationID,
		FileName:     ev.FileName,
		StorageName:  ev.StorageName,
		FileData:     ev.FileData,
		UploadedBy:   ev.UploadedBy,
		UploadedAt:   ev.UploadedAt,
	}

	if err := r.db.Create(&record).Error; err != nil {
		return 0, err
	}
	return record.ID, nil
}

func (r *Repository) GetEvidence(id int64) (*evaluation.Evidence, error) {
	var record eval_datamodel.Evidence
	if err := r.db.First(&record, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrEvidenceNotFound
		}
		return nil, err
	}
	return evidenceFromRecord(&record), nil
}

// ListEvidences returns metadata only; file bytes stay in the database until
// a download asks for one.
func (r *Repository) ListEvidences(evaluationID int64) ([]*evaluation.Evidence, error) {
	var records []eval_datamodel.Evidence
	err := r.db.Select("id", "evaluation_id", "file_name", "storage_name", "uploaded_by", "uploaded_at").
		Where("evaluation_id = ?", evaluationID).
		Order("uploaded_at DESC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}

	evidences := make([]*evaluation.Evidence, 0, len(records))
	for i := range records {
		evidences = append(evidences, evidenceFromRecord(&records[i]))
	}
	return evidences, nil
}

func evidenceFromRecord(record *eval_datamodel.Evidence) *evaluation.Evidence {
	return &evaluation.Evidence{
		ID:           record.ID,
		EvaluationID: record.EvaluationID,
		FileName:     record.FileName,
		StorageName:  record.StorageName,
		FileData:     record.FileData,
		UploadedBy:   record.UploadedBy,
		UploadedAt:   record.UploadedAt,
	}
}

func responsesOrDefault(responses []byte) string {
	if len(responses) == 0 {
		return "{}"
	}
	return string(responses)
}
