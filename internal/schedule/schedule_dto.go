package schedule

type CreateExceptionRequest struct {
	Date        string  `json:"date" binding:"required"`
	Kind        string  `json:"kind" binding:"required,oneof=CANCELLATION MAKEUP"`
	RelatedDate *string `json:"related_date"`
	StartTime   *string `json:"start_time"`
	EndTime     *string `json:"end_time"`
	Reason      *string `json:"reason"`
	Notes       *string `json:"notes"`
}

type ExceptionResponse struct {
	ID          string  `json:"id"`
	CourseID    string  `json:"course_id"`
	Date        string  `json:"date"`
	Kind        string  `json:"kind"`
	RelatedDate *string `json:"related_date,omitempty"`
	Week        int     `json:"week"`
	StartTime   *string `json:"start_time,omitempty"`
	EndTime     *string `json:"end_time,omitempty"`
	Reason      *string `json:"reason,omitempty"`
	Notes       *string `json:"notes,omitempty"`
}

// OccurrenceView is the computed per-date calendar answer. Persisted is
// false for virtual (regular / no-class) dates that have no stored row.
type OccurrenceView struct {
	CourseID    string  `json:"course_id"`
	Date        string  `json:"date"`
	Kind        string  `json:"kind"`
	HasClass    bool    `json:"has_class"`
	Week        int     `json:"week,omitempty"`
	StartTime   string  `json:"start_time,omitempty"`
	EndTime     string  `json:"end_time,omitempty"`
	RelatedDate *string `json:"related_date,omitempty"`
	Reason      *string `json:"reason,omitempty"`
	Persisted   bool    `json:"persisted"`
	ScheduleID  *string `json:"schedule_id,omitempty"`
}

// PlannedOccurrence is one computed recurrence match from BulkGenerate.
// These are never persisted.
type PlannedOccurrence struct {
	Date      string `json:"date"`
	Week      int    `json:"week"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}
