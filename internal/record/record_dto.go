package record

type UpsertRecordRequest struct {
	StudentID string  `json:"student_id" binding:"required,uuid"`
	CourseID  string  `json:"course_id" binding:"required,uuid"`
	Date      string  `json:"date" binding:"required"`
	Status    string  `json:"status" binding:"required"`
	Method    string  `json:"method"`
	Notes     *string `json:"notes"`
}

type BulkEntry struct {
	StudentID string  `json:"student_id"`
	Status    string  `json:"status"`
	Notes     *string `json:"notes"`
}

type BulkUpsertRequest struct {
	CourseID string      `json:"course_id" binding:"required,uuid"`
	Date     string      `json:"date" binding:"required"`
	Entries  []BulkEntry `json:"entries" binding:"required,min=1"`
}

type SkippedEntry struct {
	Index     int    `json:"index"`
	StudentID string `json:"student_id"`
	Reason    string `json:"reason"`
}

// BulkResult reports per-entry outcomes: unlike the single upsert, the
// batch tolerates partial success and skips invalid entries instead of
// aborting.
type BulkResult struct {
	Applied []RecordView   `json:"applied"`
	Skipped []SkippedEntry `json:"skipped"`
}

type DetailView struct {
	Status                string `json:"status"`
	Method                string `json:"method"`
	CheckTime             string `json:"check_time"`
	RequiresJustification bool   `json:"requires_justification"`
}

type LeaveView struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// RecordView is the merged read model: the derived status is computed by
// the resolver on every read and never stored.
type RecordView struct {
	ID            string      `json:"id"`
	CourseID      string      `json:"course_id"`
	StudentID     string      `json:"student_id"`
	Date          string      `json:"date"`
	DerivedStatus string      `json:"derived_status"`
	Notes         *string     `json:"notes,omitempty"`
	Detail        *DetailView `json:"detail,omitempty"`
	Leave         *LeaveView  `json:"leave,omitempty"`
}

type StudentSummary struct {
	StudentID      string  `json:"student_id"`
	Total          int     `json:"total"`
	Present        int     `json:"present"`
	Late           int     `json:"late"`
	Absent         int     `json:"absent"`
	Medical        int     `json:"medical"`
	Official       int     `json:"official"`
	Unconfirmed    int     `json:"unconfirmed"`
	AttendanceRate float64 `json:"attendance_rate"`
}

type CourseSummary struct {
	CourseID       string           `json:"course_id"`
	Total          int              `json:"total"`
	Present        int              `json:"present"`
	Late           int              `json:"late"`
	Absent         int              `json:"absent"`
	Medical        int              `json:"medical"`
	Official       int              `json:"official"`
	Unconfirmed    int              `json:"unconfirmed"`
	AttendanceRate float64          `json:"attendance_rate"`
	Students       []StudentSummary `json:"students"`
}
