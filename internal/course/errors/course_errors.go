package courseerrors

import (
	"net/http"

	"github.com/sengwoong/lecture-server/internal/shared/apperror"
)

var (
	ErrCourseNotFound = apperror.New(
		apperror.CodeNotFound,
		"course not found",
		http.StatusNotFound,
	)
	ErrInvalidCourseID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid course id",
		http.StatusBadRequest,
	)
	ErrInvalidInstructorID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid instructor id",
		http.StatusBadRequest,
	)
	ErrInvalidDateFormat = apperror.New(
		apperror.CodeInvalidInput,
		"invalid date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrInvalidDateRange = apperror.New(
		apperror.CodeInvalidInput,
		"start_date must be before or equal end_date",
		http.StatusBadRequest,
	)
	ErrInvalidTimeFormat = apperror.New(
		apperror.CodeInvalidInput,
		"invalid time format, expected HH:MM",
		http.StatusBadRequest,
	)
	ErrInvalidTimeRange = apperror.New(
		apperror.CodeInvalidInput,
		"start_time must be before end_time",
		http.StatusBadRequest,
	)
	ErrInvalidStudentID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid student id",
		http.StatusBadRequest,
	)
	ErrAlreadyEnrolled = apperror.New(
		apperror.CodeConflict,
		"student is already enrolled in this course",
		http.StatusConflict,
	)
	ErrCourseInactive = apperror.New(
		apperror.CodeInvalidState,
		"course is not active",
		http.StatusBadRequest,
	)
	ErrDuplicateCode = apperror.New(
		apperror.CodeConflict,
		"a course with this code already exists",
		http.StatusConflict,
	)
)
