package domain

// RawStatus is the attendance fact recorded at check time.
type RawStatus string

const (
	StatusPresent  RawStatus = "PRESENT"
	StatusLate     RawStatus = "LATE"
	StatusAbsent   RawStatus = "ABSENT"
	StatusMedical  RawStatus = "MEDICAL"
	StatusOfficial RawStatus = "OFFICIAL"
)

// ValidRawStatus reports whether s is one of the five recordable statuses.
func ValidRawStatus(s RawStatus) bool {
	switch s {
	case StatusPresent, StatusLate, StatusAbsent, StatusMedical, StatusOfficial:
		return true
	}
	return false
}

// RequiresJustification marks the statuses a student may contest with a
// leave request.
func RequiresJustification(s RawStatus) bool {
	switch s {
	case StatusLate, StatusAbsent, StatusMedical:
		return true
	}
	return false
}

// CheckMethod is how an attendance fact was captured.
type CheckMethod string

const (
	MethodManual   CheckMethod = "MANUAL"
	MethodQR       CheckMethod = "QR"
	MethodPassword CheckMethod = "PASSWORD"
	MethodAuto     CheckMethod = "AUTO"
)

func ValidCheckMethod(m CheckMethod) bool {
	switch m {
	case MethodManual, MethodQR, MethodPassword, MethodAuto:
		return true
	}
	return false
}

// LeaveStatus is the approval state of a leave request.
type LeaveStatus string

const (
	LeavePending     LeaveStatus = "PENDING"
	LeaveUnderReview LeaveStatus = "UNDER_REVIEW"
	LeaveApproved    LeaveStatus = "APPROVED"
	LeaveRejected    LeaveStatus = "REJECTED"
)

// Terminal reports whether the state admits no further transitions.
func (s LeaveStatus) Terminal() bool {
	return s == LeaveApproved || s == LeaveRejected
}

// DerivedStatus is the resolver's computed display status. It is never
// persisted; it is recomputed from the sub-records on every read.
type DerivedStatus string

const (
	DerivedPresent     DerivedStatus = "PRESENT"
	DerivedLate        DerivedStatus = "LATE"
	DerivedAbsent      DerivedStatus = "ABSENT"
	DerivedMedical     DerivedStatus = "MEDICAL"
	DerivedOfficial    DerivedStatus = "OFFICIAL"
	DerivedUnconfirmed DerivedStatus = "UNCONFIRMED"
)

// AttendanceFact is the raw-detail slice of a record the resolver needs.
type AttendanceFact struct {
	Status RawStatus
}

// LeaveFact is the leave-request slice of a record the resolver needs.
type LeaveFact struct {
	Status LeaveStatus
}

// Resolve merges a record's optional sub-records into one display status.
//
// An approved leave counts as attended for display and statistics even
// though the stored raw detail is left untouched; the raw status remains
// the audit trail. Without an approved leave the detail's raw status wins,
// and a record with neither sub-record is unconfirmed.
func Resolve(detail *AttendanceFact, leave *LeaveFact) DerivedStatus {
	if leave != nil && leave.Status == LeaveApproved {
		return DerivedPresent
	}
	if detail != nil {
		return DerivedStatus(detail.Status)
	}
	return DerivedUnconfirmed
}
