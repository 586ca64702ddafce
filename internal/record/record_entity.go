package record

import (
	"time"

	"github.com/google/uuid"

	"github.com/sengwoong/lecture-server/internal/domain"
)

// AttendanceRecord is the canonical row per (student, course, date). It is
// created lazily on the first write for its key and owns up to one detail
// and up to one leave request; the two sub-records are independent, a
// leave request may sit next to an already-recorded absence.
type AttendanceRecord struct {
	ID         uuid.UUID  `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	CourseID   uuid.UUID  `gorm:"column:course_id;type:uuid;not null;uniqueIndex:idx_records_course_student_date"`
	StudentID  uuid.UUID  `gorm:"column:student_id;type:uuid;not null;uniqueIndex:idx_records_course_student_date"`
	Date       time.Time  `gorm:"column:date;type:date;not null;uniqueIndex:idx_records_course_student_date"`
	ScheduleID *uuid.UUID `gorm:"column:schedule_id;type:uuid;index"`
	Notes      *string    `gorm:"column:notes;type:text"`
	CreatedAt  time.Time  `gorm:"column:created_at"`
	UpdatedAt  time.Time  `gorm:"column:updated_at"`

	Detail *AttendanceDetail `gorm:"foreignKey:RecordID;references:ID"`
	Leave  *LeaveRef         `gorm:"foreignKey:RecordID;references:ID"`
}

func (AttendanceRecord) TableName() string {
	return "attendance_records"
}

// AttendanceDetail is the raw attendance fact. RequiresJustification is
// recomputed on every write from the raw status.
type AttendanceDetail struct {
	ID                    uuid.UUID          `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	RecordID              uuid.UUID          `gorm:"column:record_id;type:uuid;not null;uniqueIndex"`
	Status                domain.RawStatus   `gorm:"column:status;type:varchar(20);not null"`
	Method                domain.CheckMethod `gorm:"column:method;type:varchar(20);not null;default:'AUTO'"`
	CheckTime             time.Time          `gorm:"column:check_time;type:timestamptz;not null"`
	RequiresJustification bool               `gorm:"column:requires_justification;not null;default:false"`
	CreatedAt             time.Time          `gorm:"column:created_at"`
	UpdatedAt             time.Time          `gorm:"column:updated_at"`
}

func (AttendanceDetail) TableName() string {
	return "attendance_details"
}

// LeaveRef is a read-only view of the leave request owned by a record;
// the full entity lives in the leave package.
type LeaveRef struct {
	ID       uuid.UUID          `gorm:"type:uuid;primaryKey"`
	RecordID uuid.UUID          `gorm:"column:record_id;type:uuid"`
	Status   domain.LeaveStatus `gorm:"column:status"`
}

func (LeaveRef) TableName() string {
	return "leave_requests"
}
