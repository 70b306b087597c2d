package course_test

import (
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/frahmantamala/performance-evaluation/internal"
	coursePostgres "github.com/frahmantamala/performance-evaluation/internal/course/postgres"
)

func TestCoursePostgres(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Course Postgres Suite")
}

// SQLite-compatible models for testing

type SQLiteCourse struct {
	ID    int64  `gorm:"primaryKey"`
	Title string `gorm:"column:title"`
	Link  string `gorm:"column:link"`
}

func (SQLiteCourse) TableName() string { return "courses" }

type SQLiteUserCourse struct {
	ID        int64     `gorm:"primaryKey"`
	UserID    int64     `gorm:"column:user_id"`
	CourseID  int64     `gorm:"column:course_id"`
	Progress  int       `gorm:"column:progress;default:0"`
	Status    string    `gorm:"column:status;default:pending"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (SQLiteUserCourse) TableName() string { return "user_courses" }

var _ = Describe("CourseRepository", func() {
	var (
		db   *gorm.DB
		repo *coursePostgres.Repository
	)

	BeforeEach(func() {
		var err error
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())

		Expect(db.AutoMigrate(&SQLiteCourse{}, &SQLiteUserCourse{})).To(Succeed())

		courses := []SQLiteCourse{
			{ID: 1, Title: "Seguridad de la Información", Link: "https://example.com/seguridad"},
			{ID: 2, Title: "Liderazgo", Link: "https://example.com/liderazgo"},
		}
		Expect(db.Create(&courses).Error).To(Succeed())

		assignments := []SQLiteUserCourse{
			{UserID: 3, CourseID: 1, Progress: 25, Status: "in_progress", UpdatedAt: time.Now()},
			{UserID: 3, CourseID: 2, Progress: 0, Status: "pending", UpdatedAt: time.Now()},
			{UserID: 4, CourseID: 1, Progress: 0, Status: "pending", UpdatedAt: time.Now()},
		}
		Expect(db.Create(&assignments).Error).To(Succeed())

		repo = coursePostgres.NewRepository(db)
	})

	Describe("CoursesFor", func() {
		It("joins the caller's assignments with the course catalog", func() {
			courses, err := repo.CoursesFor(3)

			Expect(err).NotTo(HaveOccurred())
			Expect(courses).To(HaveLen(2))
			Expect(courses[0].Title).To(Equal("Liderazgo"))
			Expect(courses[1].Title).To(Equal("Seguridad de la Información"))
			Expect(courses[1].Progress).To(Equal(25))
			Expect(courses[1].Status).To(Equal("in_progress"))
		})

		It("returns nothing for a user with no assignments", func() {
			courses, err := repo.CoursesFor(99)

			Expect(err).NotTo(HaveOccurred())
			Expect(courses).To(BeEmpty())
		})
	})

	Describe("UpdateProgress", func() {
		It("persists progress and status for the caller only", func() {
			Expect(repo.UpdateProgress(3, 1, 80, "in_progress")).To(Succeed())

			mine, err := repo.AssignmentFor(3, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(mine.Progress).To(Equal(80))
			Expect(mine.Status).To(Equal("in_progress"))

			theirs, err := repo.AssignmentFor(4, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(theirs.Progress).To(Equal(0))
		})

		It("reports unassigned courses as not found", func() {
			err := repo.UpdateProgress(4, 2, 10, "in_progress")

			Expect(err).To(MatchError(internal.ErrCourseNotFound))
		})
	})

	Describe("AssignmentFor", func() {
		It("reports a missing assignment as not found", func() {
			_, err := repo.AssignmentFor(99, 1)

			Expect(err).To(MatchError(internal.ErrCourseNotFound))
		})
	})
})
