package schedule

import (
	"time"

	"github.com/google/uuid"
)

const (
	KindCancellation = "CANCELLATION"
	KindMakeup       = "MAKEUP"
)

// ScheduleOccurrence is a persisted deviation from the weekly pattern.
// Regular meetings are never stored; they are computed on demand from the
// course template. A MAKEUP row points at the CANCELLATION it replaces via
// RelatedScheduleID; the unique index keeps that relation one-to-one.
type ScheduleOccurrence struct {
	ID                uuid.UUID  `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	CourseID          uuid.UUID  `gorm:"column:course_id;type:uuid;not null;uniqueIndex:idx_occurrences_course_date"`
	Date              time.Time  `gorm:"column:date;type:date;not null;uniqueIndex:idx_occurrences_course_date"`
	Kind              string     `gorm:"column:kind;type:varchar(20);not null"`
	RelatedScheduleID *uuid.UUID `gorm:"column:related_schedule_id;type:uuid;uniqueIndex"`
	RelatedDate       *time.Time `gorm:"column:related_date;type:date"`
	Week              int        `gorm:"column:week;type:int;not null"`
	StartTime         *string    `gorm:"column:start_time;type:time"`
	EndTime           *string    `gorm:"column:end_time;type:time"`
	Reason            *string    `gorm:"column:reason;type:text"`
	Notes             *string    `gorm:"column:notes;type:text"`
	CreatedAt         time.Time  `gorm:"column:created_at"`
	UpdatedAt         time.Time  `gorm:"column:updated_at"`
}

func (ScheduleOccurrence) TableName() string {
	return "schedule_occurrences"
}
