package events

import "time"

const CheckinRecordedTopic = "lecture.attendance.checkin.v1"

type CheckinRecordedEvent struct {
	EventType  string    `json:"event_type"`
	RecordID   string    `json:"record_id"`
	CourseID   string    `json:"course_id"`
	StudentID  string    `json:"student_id"`
	Date       string    `json:"date"`
	Method     string    `json:"method"`
	OccurredAt time.Time `json:"occurred_at"`
}
