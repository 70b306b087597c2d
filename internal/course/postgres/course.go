package course

import (
	"time"

	"gorm.io/gorm"

	"github.com/frahmantamala/performance-evaluation/internal"
	"github.com/frahmantamala/performance-evaluation/internal/course"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

const assignmentQuery = `
	SELECT c.id, c.title, c.link, uc.progress, uc.status, uc.updated_at
	FROM courses c
	JOIN user_courses uc ON uc.course_id = c.id
	WHERE uc.user_id = ?`

func (r *Repository) CoursesFor(userID int64) ([]*course.Course, error) {
	rows, err := r.db.Raw(assignmentQuery+` ORDER BY c.title`, userID).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var courses []*course.Course
	for rows.Next() {
		var c course.Course
		if err := rows.Scan(&c.ID, &c.Title, &c.Link, &c.Progress, &c.Status, &c.UpdatedAt); err != nil {
			return nil, err
		}
		courses = append(courses, &c)
	}
	return courses, rows.Err()
}

func (r *Repository) AssignmentFor(userID, courseID int64) (*course.Course, error) {
	var c course.Course
	row := r.db.Raw(assignmentQuery+` AND c.id = ?`, userID, courseID).Row()
	if err := row.Scan(&c.ID, &c.Title, &c.Link, &c.Progress, &c.Status, &c.UpdatedAt); err != nil {
		return nil, internal.ErrCourseNotFound
	}
	return &c, nil
}

func (r *Repository) UpdateProgress(userID, courseID int64, progress int, status string) error {
	result := r.db.Exec(`
		UPDATE user_courses
		SET progress = ?, status = ?, updated_at = ?
		WHERE user_id = ? AND course_id = ?`,
		progress, status, time.Now(), userID, courseID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return internal.ErrCourseNotFound
	}
	return nil
}
