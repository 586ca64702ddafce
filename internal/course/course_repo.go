package course

import (
	"context"
	"database/sql"

	"gorm.io/gorm"

	"github.com/sengwoong/lecture-server/internal/shared/connection"
)

//go:generate mockgen -source=course_repo.go -destination=mock/course_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, c *Course) error
	FindByID(ctx context.Context, id string) (*Course, error)
	FindAllByInstructor(ctx context.Context, instructorID string) ([]Course, error)
	CreateEnrollment(ctx context.Context, e *Enrollment) error
	IsEnrolled(ctx context.Context, courseID, studentID string) (bool, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: connection.GormTx(tx)}
}

func (r *repository) Create(ctx context.Context, c *Course) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *repository) FindByID(ctx context.Context, id string) (*Course, error) {
	var c Course
	err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error
	return &c, err
}

func (r *repository) FindAllByInstructor(ctx context.Context, instructorID string) ([]Course, error) {
	var rows []Course
	err := r.db.WithContext(ctx).
		Where("instructor_id = ?", instructorID).
		Order("start_date DESC, code ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) CreateEnrollment(ctx context.Context, e *Enrollment) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *repository) IsEnrolled(ctx context.Context, courseID, studentID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&Enrollment{}).
		Where("course_id = ? AND student_id = ?", courseID, studentID).
		Count(&count).Error
	return count > 0, err
}
