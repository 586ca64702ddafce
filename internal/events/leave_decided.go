package events

import "time"

const LeaveDecidedTopic = "lecture.attendance.leave.decided.v1"

type LeaveDecidedEvent struct {
	EventType string    `json:"event_type"`
	LeaveID   string    `json:"leave_id"`
	RecordID  string    `json:"record_id"`
	CourseID  string    `json:"course_id"`
	StudentID string    `json:"student_id"`
	Decision  string    `json:"decision"`
	DeciderID string    `json:"decider_id"`
	Comment   *string   `json:"comment,omitempty"`
	DecidedAt time.Time `json:"decided_at"`
}
