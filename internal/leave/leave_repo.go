package leave

import (
	"context"
	"database/sql"

	"gorm.io/gorm"

	"github.com/sengwoong/lecture-server/internal/shared/connection"
)

//go:generate mockgen -source=leave_repo.go -destination=mock/leave_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, l *LeaveRequest) error
	FindByID(ctx context.Context, id string) (*LeaveRequest, error)
	FindAllByStudent(ctx context.Context, studentID string) ([]LeaveRequest, error)
	Update(ctx context.Context, l *LeaveRequest) error
	Delete(ctx context.Context, l *LeaveRequest) error
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

func (r *repository) Create(ctx context.Context, l *LeaveRequest) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *repository) FindByID(ctx context.Context, id string) (*LeaveRequest, error) {
	var l LeaveRequest
	err := r.db.WithContext(ctx).
		Preload("Evidence").
		First(&l, "id = ?", id).Error
	return &l, err
}

func (r *repository) FindAllByStudent(ctx context.Context, studentID string) ([]LeaveRequest, error) {
	var rows []LeaveRequest
	err := r.db.WithContext(ctx).
		Preload("Evidence").
		Where("student_id = ?", studentID).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) Update(ctx context.Context, l *LeaveRequest) error {
	return r.db.WithContext(ctx).Omit("Evidence").Save(l).Error
}

func (r *repository) Delete(ctx context.Context, l *LeaveRequest) error {
	if err := r.db.WithContext(ctx).
		Where("leave_id = ?", l.ID).
		Delete(&Evidence{}).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).Delete(l).Error
}
