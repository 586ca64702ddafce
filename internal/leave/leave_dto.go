package leave

type EvidenceInput struct {
	FileName   string `json:"file_name" binding:"required"`
	FileHandle string `json:"file_handle" binding:"required"`
	FileSize   int64  `json:"file_size" binding:"required,min=1"`
	MimeType   string `json:"mime_type" binding:"required"`
}

type FileLeaveRequest struct {
	RecordID  string          `json:"record_id" binding:"required,uuid"`
	StartDate string          `json:"start_date" binding:"required"`
	EndDate   string          `json:"end_date" binding:"required"`
	Reason    string          `json:"reason" binding:"required"`
	Evidence  []EvidenceInput `json:"evidence" binding:"dive"`
}

// EditLeaveRequest updates the mutable fields of a pending request.
// Nil fields keep their current value.
type EditLeaveRequest struct {
	StartDate *string `json:"start_date"`
	EndDate   *string `json:"end_date"`
	Reason    *string `json:"reason"`
}

type DecideLeaveRequest struct {
	Decision string  `json:"decision" binding:"required"`
	Comment  *string `json:"comment"`
}

type EvidenceView struct {
	ID         string `json:"id"`
	FileName   string `json:"file_name"`
	FileHandle string `json:"file_handle"`
	FileSize   int64  `json:"file_size"`
	MimeType   string `json:"mime_type"`
}

type LeaveResponse struct {
	ID            string         `json:"id"`
	RecordID      string         `json:"record_id"`
	StudentID     string         `json:"student_id"`
	CourseID      string         `json:"course_id"`
	StartDate     string         `json:"start_date"`
	EndDate       string         `json:"end_date"`
	Reason        string         `json:"reason"`
	Status        string         `json:"status"`
	ReviewerID    *string        `json:"reviewer_id,omitempty"`
	ReviewComment *string        `json:"review_comment,omitempty"`
	DecidedAt     *string        `json:"decided_at,omitempty"`
	Evidence      []EvidenceView `json:"evidence"`
}
