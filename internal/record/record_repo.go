package record

import (
	"context"
	"database/sql"
	"time"

	"gorm.io/gorm"

	"github.com/sengwoong/lecture-server/internal/domain"
	"github.com/sengwoong/lecture-server/internal/shared/connection"
)

// Filter narrows record reads; zero-valued fields are ignored.
type Filter struct {
	StudentID string
	CourseID  string
	From      *time.Time
	To        *time.Time
	Status    domain.RawStatus
}

//go:generate mockgen -source=record_repo.go -destination=mock/record_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	CreateRecord(ctx context.Context, r *AttendanceRecord) error
	CreateDetail(ctx context.Context, d *AttendanceDetail) error
	UpdateRecord(ctx context.Context, r *AttendanceRecord) error
	UpdateDetail(ctx context.Context, d *AttendanceDetail) error
	FindByID(ctx context.Context, id string) (*AttendanceRecord, error)
	FindByKey(ctx context.Context, courseID, studentID string, date time.Time) (*AttendanceRecord, error)
	FindPage(ctx context.Context, f Filter, offset, limit int) ([]AttendanceRecord, error)
	CountByFilter(ctx context.Context, f Filter) (int64, error)
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

func (r *repository) CreateRecord(ctx context.Context, rec *AttendanceRecord) error {
	return r.db.WithContext(ctx).Omit("Detail", "Leave").Create(rec).Error
}

func (r *repository) CreateDetail(ctx context.Context, d *AttendanceDetail) error {
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *repository) UpdateRecord(ctx context.Context, rec *AttendanceRecord) error {
	return r.db.WithContext(ctx).Omit("Detail", "Leave").Save(rec).Error
}

func (r *repository) UpdateDetail(ctx context.Context, d *AttendanceDetail) error {
	return r.db.WithContext(ctx).Save(d).Error
}

func (r *repository) FindByID(ctx context.Context, id string) (*AttendanceRecord, error) {
	var rec AttendanceRecord
	err := r.db.WithContext(ctx).
		Preload("Detail").
		Preload("Leave").
		First(&rec, "id = ?", id).Error
	return &rec, err
}

func (r *repository) FindByKey(ctx context.Context, courseID, studentID string, date time.Time) (*AttendanceRecord, error) {
	var rec AttendanceRecord
	err := r.db.WithContext(ctx).
		Preload("Detail").
		Preload("Leave").
		Where("course_id = ?", courseID).
		Where("student_id = ?", studentID).
		Where("date = ?", date.Format("2006-01-02")).
		First(&rec).Error
	return &rec, err
}

func (r *repository) filtered(ctx context.Context, f Filter) *gorm.DB {
	db := r.db.WithContext(ctx).Model(&AttendanceRecord{})
	if f.CourseID != "" {
		db = db.Where("attendance_records.course_id = ?", f.CourseID)
	}
	if f.StudentID != "" {
		db = db.Where("attendance_records.student_id = ?", f.StudentID)
	}
	if f.From != nil {
		db = db.Where("attendance_records.date >= ?", f.From.Format("2006-01-02"))
	}
	if f.To != nil {
		db = db.Where("attendance_records.date <= ?", f.To.Format("2006-01-02"))
	}
	if f.Status != "" {
		db = db.Joins("JOIN attendance_details ON attendance_details.record_id = attendance_records.id").
			Where("attendance_details.status = ?", f.Status)
	}
	return db
}

func (r *repository) FindPage(ctx context.Context, f Filter, offset, limit int) ([]AttendanceRecord, error) {
	var rows []AttendanceRecord
	err := r.filtered(ctx, f).
		Preload("Detail").
		Preload("Leave").
		Order("attendance_records.date ASC, attendance_records.id ASC").
		Offset(offset).
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

func (r *repository) CountByFilter(ctx context.Context, f Filter) (int64, error) {
	var count int64
	err := r.filtered(ctx, f).Count(&count).Error
	return count, err
}
