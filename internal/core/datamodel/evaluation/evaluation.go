package evaluation

import "time"

type Evaluation struct {
	ID          int64      `gorm:"primaryKey"`
	CycleID     *int64     `gorm:"column:cycle_id"`
	TemplateID  *int64     `gorm:"column:template_id"`
	EvaluatorID int64      `gorm:"column:evaluator_id;not null;index"`
	EvaluateeID int64      `gorm:"column:evaluatee_id;not null;index"`
	Responses   string     `gorm:"column:responses;type:jsonb;default:'{}'"`
	Score       *float64   `gorm:"column:score"`
	Comments    string     `gorm:"column:comments"`
	Status      string     `gorm:"column:status;default:pending;index"`
	DueDate     *time.Time `gorm:"column:due_date;type:date"`
	Objective   string     `gorm:"column:objective"`
	SubmittedAt *time.Time `gorm:"column:submitted_at"`
	CreatedAt   time.Time  `gorm:"column:created_at;default:now()"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;default:now()"`
}

func (Evaluation) TableName() string {
	return "evaluations"
}

type Evidence struct {
	ID           int64     `gorm:"primaryKey"`
	EvaluationID int64     `gorm:"column:evaluation_id;not null;index"`
	FileName     string    `gorm:"column:file_name;not null"`
	StorageName  string    `gorm:"column:storage_name;not null"`
	FileData     []byte    `gorm:"column:file_data"`
	UploadedBy   int64     `gorm:"column:uploaded_by;not null"`
	UploadedAt   time.Time `gorm:"column:uploaded_at;default:now()"`
}

func (Evidence) TableName() string {
	return "evaluation_evidences"
}

type Cycle struct {
	ID        int64     `gorm:"primaryKey"`
	Name      string    `gorm:"column:name;not null"`
	StartDate time.Time `gorm:"column:start_date;type:date"`
	EndDate   time.Time `gorm:"column:end_date;type:date"`
	CreatedAt time.Time `gorm:"column:created_at;default:now()"`
}

func (Cycle) TableName() string {
	return "evaluation_cycles"
}

type Template struct {
	ID          int64     `gorm:"primaryKey"`
	Name        string    `gorm:"column:name;not null"`
	Description string    `gorm:"column:description"`
	Questions   string    `gorm:"column:questions;type:jsonb;default:'[]'"`
	CreatedAt   time.Time `gorm:"column:created_at;default:now()"`
}

func (Template) TableName() string {
	return "evaluation_templates"
}
