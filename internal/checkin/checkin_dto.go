package checkin

// CheckKind selects the capture channel a session is opened for.
type CheckKind string

const (
	KindQR       CheckKind = "QR"
	KindPassword CheckKind = "PASSWORD"
)

type IssueRequest struct {
	Date string `json:"date" binding:"required"`
	Kind string `json:"kind" binding:"required,oneof=QR PASSWORD"`
}

// IssueResponse carries either a signed token (QR) or a short code
// (PASSWORD), never both.
type IssueResponse struct {
	CourseID   string `json:"course_id"`
	Date       string `json:"date"`
	Kind       string `json:"kind"`
	Token      string `json:"token,omitempty"`
	Code       string `json:"code,omitempty"`
	ValidUntil string `json:"valid_until"`
}

type RedeemRequest struct {
	Token string `json:"token"`
	Code  string `json:"code"`
}

type RedeemResponse struct {
	RecordID  string `json:"record_id"`
	CourseID  string `json:"course_id"`
	StudentID string `json:"student_id"`
	Date      string `json:"date"`
	Status    string `json:"status"`
	Method    string `json:"method"`
	CheckTime string `json:"check_time"`
}
