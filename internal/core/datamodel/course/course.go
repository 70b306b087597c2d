package course

import "time"

type Course struct {
	ID        int64     `gorm:"primaryKey"`
	Title     string    `gorm:"column:title;not null"`
	Link      string    `gorm:"column:link"`
	CreatedAt time.Time `gorm:"column:created_at;default:now()"`
}

func (Course) TableName() string {
	return "courses"
}

// UserCourse is the assignment row tracking one user's progress through a
// course.
type UserCourse struct {
	ID        int64     `gorm:"primaryKey"`
	UserID    int64     `gorm:"column:user_id;not null;index"`
	CourseID  int64     `gorm:"column:course_id;not null"`
	Progress  int       `gorm:"column:progress;default:0"`
	Status    string    `gorm:"column:status;default:pending"`
	CreatedAt time.Time `gorm:"column:created_at;default:now()"`
	UpdatedAt time.Time `gorm:"column:updated_at;default:now()"`
}

func (UserCourse) TableName() string {
	return "user_courses"
}
