package leave

import (
	"time"

	"github.com/google/uuid"

	"github.com/sengwoong/lecture-server/internal/domain"
)

// LeaveRequest is the justification a student files against a record
// whose detail demands one. The unique index on record_id allows at most
// one request per record.
type LeaveRequest struct {
	ID            uuid.UUID          `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	RecordID      uuid.UUID          `gorm:"column:record_id;type:uuid;not null;uniqueIndex"`
	StudentID     uuid.UUID          `gorm:"column:student_id;type:uuid;not null;index"`
	CourseID      uuid.UUID          `gorm:"column:course_id;type:uuid;not null;index"`
	StartDate     time.Time          `gorm:"column:start_date;type:date;not null"`
	EndDate       time.Time          `gorm:"column:end_date;type:date;not null"`
	Reason        string             `gorm:"column:reason;type:text;not null"`
	Status        domain.LeaveStatus `gorm:"column:status;type:varchar(20);not null;default:'PENDING'"`
	ReviewerID    *uuid.UUID         `gorm:"column:reviewer_id;type:uuid"`
	ReviewComment *string            `gorm:"column:review_comment;type:text"`
	DecidedAt     *time.Time         `gorm:"column:decided_at;type:timestamptz"`
	CreatedAt     time.Time          `gorm:"column:created_at"`
	UpdatedAt     time.Time          `gorm:"column:updated_at"`

	Evidence []Evidence `gorm:"foreignKey:LeaveID;references:ID"`
}

func (LeaveRequest) TableName() string {
	return "leave_requests"
}

// Evidence is one uploaded attachment. The handle points into the blob
// store; the row carries metadata only.
type Evidence struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	LeaveID    uuid.UUID `gorm:"column:leave_id;type:uuid;not null;index"`
	FileName   string    `gorm:"column:file_name;type:varchar(255);not null"`
	FileHandle string    `gorm:"column:file_handle;type:varchar(512);not null"`
	FileSize   int64     `gorm:"column:file_size;not null"`
	MimeType   string    `gorm:"column:mime_type;type:varchar(100);not null"`
	CreatedAt  time.Time `gorm:"column:created_at"`
}

func (Evidence) TableName() string {
	return "leave_evidence"
}
