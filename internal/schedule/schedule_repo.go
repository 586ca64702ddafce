package schedule

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/sengwoong/lecture-server/internal/shared/connection"
)

//go:generate mockgen -source=schedule_repo.go -destination=mock/schedule_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, o *ScheduleOccurrence) error
	FindByID(ctx context.Context, id string) (*ScheduleOccurrence, error)
	FindByCourseAndDate(ctx context.Context, courseID string, date time.Time) (*ScheduleOccurrence, error)
	FindMakeupForCancellation(ctx context.Context, cancellationID string) (*ScheduleOccurrence, error)
	Delete(ctx context.Context, id string) error
	CountRecordsForOccurrence(ctx context.Context, courseID string, date time.Time, scheduleID string) (int64, error)
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

func (r *repository) Create(ctx context.Context, o *ScheduleOccurrence) error {
	return r.db.WithContext(ctx).Create(o).Error
}

func (r *repository) FindByID(ctx context.Context, id string) (*ScheduleOccurrence, error) {
	var o ScheduleOccurrence
	err := r.db.WithContext(ctx).First(&o, "id = ?", id).Error
	return &o, err
}

func (r *repository) FindByCourseAndDate(ctx context.Context, courseID string, date time.Time) (*ScheduleOccurrence, error) {
	var o ScheduleOccurrence
	err := r.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Where("date = ?", date.Format("2006-01-02")).
		First(&o).Error
	return &o, err
}

func (r *repository) FindMakeupForCancellation(ctx context.Context, cancellationID string) (*ScheduleOccurrence, error) {
	var o ScheduleOccurrence
	err := r.db.WithContext(ctx).
		Where("related_schedule_id = ?", cancellationID).
		Where("kind = ?", KindMakeup).
		First(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &o, err
}

func (r *repository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&ScheduleOccurrence{}, "id = ?", id).Error
}

func (r *repository) CountRecordsForOccurrence(ctx context.Context, courseID string, date time.Time, scheduleID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("attendance_records").
		Where("schedule_id = ? OR (course_id = ? AND date = ?)", scheduleID, courseID, date.Format("2006-01-02")).
		Count(&count).Error
	return count, err
}
