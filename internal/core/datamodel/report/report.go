package report

import "time"

// Report is an immutable snapshot of an aggregation run.
type Report struct {
	ID          int64     `gorm:"primaryKey"`
	Name        string    `gorm:"column:name;not null"`
	Type        string    `gorm:"column:type;not null;index"`
	Filters     string    `gorm:"column:filters;type:jsonb;default:'{}'"`
	Data        string    `gorm:"column:data;type:jsonb;default:'{}'"`
	GeneratedBy int64     `gorm:"column:generated_by;not null"`
	CreatedAt   time.Time `gorm:"column:created_at;default:now()"`
}

func (Report) TableName() string {
	return "reports"
}
