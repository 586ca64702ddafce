package scheduleerrors

import (
	"net/http"

	"github.com/sengwoong/lecture-server/internal/shared/apperror"
)

var (
	ErrScheduleNotFound = apperror.New(
		apperror.CodeNotFound,
		"schedule occurrence not found",
		http.StatusNotFound,
	)
	ErrInvalidScheduleID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid schedule occurrence id",
		http.StatusBadRequest,
	)
	ErrInvalidDateFormat = apperror.New(
		apperror.CodeInvalidInput,
		"invalid date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrInvalidDateRange = apperror.New(
		apperror.CodeInvalidInput,
		"from must be before or equal to to",
		http.StatusBadRequest,
	)
	ErrOutsideCourseRange = apperror.New(
		apperror.CodeInvalidInput,
		"date is outside the course active range",
		http.StatusBadRequest,
	)
	ErrInvalidWeekday = apperror.New(
		apperror.CodeInvalidInput,
		"date does not fall on a meeting day of this course",
		http.StatusBadRequest,
	)
	ErrOccurrenceConflict = apperror.New(
		apperror.CodeConflict,
		"an occurrence already exists on this date",
		http.StatusConflict,
	)
	ErrNotCancelled = apperror.New(
		apperror.CodeInvalidState,
		"related date has no open cancellation",
		http.StatusBadRequest,
	)
	ErrAlreadyLinked = apperror.New(
		apperror.CodeConflict,
		"this cancellation already has a makeup class",
		http.StatusConflict,
	)
	ErrMakeupNotAfterCancellation = apperror.New(
		apperror.CodeInvalidInput,
		"makeup date must be after the cancelled date",
		http.StatusBadRequest,
	)
	ErrRelatedDateRequired = apperror.New(
		apperror.CodeInvalidInput,
		"related_date is required for a makeup class",
		http.StatusBadRequest,
	)
	ErrHasDependentMakeup = apperror.New(
		apperror.CodeConflict,
		"cancellation has a linked makeup class, delete the makeup first",
		http.StatusConflict,
	)
	ErrHasAttendanceRecords = apperror.New(
		apperror.CodeConflict,
		"attendance records already reference this occurrence",
		http.StatusConflict,
	)
	ErrNotCourseOwner = apperror.New(
		apperror.CodeForbidden,
		"only the owning instructor may change the schedule",
		http.StatusForbidden,
	)
)
