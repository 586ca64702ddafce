package course

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Course is the recurring weekly template an effective calendar is
// computed from. Weekdays holds the meeting days as a comma-separated
// list of MON..SUN tokens.
type Course struct {
	ID           uuid.UUID      `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	Name         string         `gorm:"column:name;type:varchar(150);not null"`
	Code         string         `gorm:"column:code;type:varchar(30);not null;uniqueIndex"`
	Semester     string         `gorm:"column:semester;type:varchar(20);not null"`
	InstructorID uuid.UUID      `gorm:"column:instructor_id;type:uuid;not null;index"`
	StartDate    time.Time      `gorm:"column:start_date;type:date;not null"`
	EndDate      time.Time      `gorm:"column:end_date;type:date;not null"`
	Weekdays     string         `gorm:"column:weekdays;type:varchar(30);not null"`
	StartTime    string         `gorm:"column:start_time;type:time;not null"`
	EndTime      string         `gorm:"column:end_time;type:time;not null"`
	Room         *string        `gorm:"column:room;type:varchar(50)"`
	Description  *string        `gorm:"column:description;type:text"`
	IsActive     bool           `gorm:"column:is_active;not null;default:true"`
	CreatedAt    time.Time      `gorm:"column:created_at"`
	UpdatedAt    time.Time      `gorm:"column:updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"column:deleted_at;index"`
}

func (Course) TableName() string {
	return "courses"
}

// Enrollment links a student to a course. The unique index makes
// re-enrolling a no-op conflict instead of a duplicate row.
type Enrollment struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	CourseID  uuid.UUID `gorm:"column:course_id;type:uuid;not null;uniqueIndex:idx_enrollments_course_student"`
	StudentID uuid.UUID `gorm:"column:student_id;type:uuid;not null;uniqueIndex:idx_enrollments_course_student"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (Enrollment) TableName() string {
	return "enrollments"
}

var weekdayTokens = map[string]time.Weekday{
	"SUN": time.Sunday,
	"MON": time.Monday,
	"TUE": time.Tuesday,
	"WED": time.Wednesday,
	"THU": time.Thursday,
	"FRI": time.Friday,
	"SAT": time.Saturday,
}

// ParseWeekday maps a MON..SUN token to its time.Weekday.
func ParseWeekday(token string) (time.Weekday, bool) {
	wd, ok := weekdayTokens[strings.ToUpper(strings.TrimSpace(token))]
	return wd, ok
}

// MeetsOn reports whether the weekly pattern includes wd.
func (c *Course) MeetsOn(wd time.Weekday) bool {
	for _, token := range strings.Split(c.Weekdays, ",") {
		if parsed, ok := ParseWeekday(token); ok && parsed == wd {
			return true
		}
	}
	return false
}

// InRange reports whether date falls inside the active date range,
// boundaries included.
func (c *Course) InRange(date time.Time) bool {
	return !date.Before(c.StartDate) && !date.After(c.EndDate)
}
