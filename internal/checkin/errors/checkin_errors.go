package checkinerrors

import (
	"net/http"

	"github.com/sengwoong/lecture-server/internal/shared/apperror"
)

var (
	ErrTokenInvalid = apperror.New(
		apperror.CodeInvalidInput,
		"check-in token is invalid",
		http.StatusBadRequest,
	)
	ErrTokenExpired = apperror.New(
		apperror.CodeExpired,
		"check-in token has expired",
		http.StatusGone,
	)
	ErrCodeInvalid = apperror.New(
		apperror.CodeInvalidInput,
		"check-in code is invalid",
		http.StatusBadRequest,
	)
	ErrCodeExpired = apperror.New(
		apperror.CodeExpired,
		"check-in code has expired",
		http.StatusGone,
	)
	ErrClassCancelled = apperror.New(
		apperror.CodeInvalidState,
		"class is cancelled on this date",
		http.StatusBadRequest,
	)
	ErrNotScheduled = apperror.New(
		apperror.CodeInvalidState,
		"no class is scheduled on this date",
		http.StatusBadRequest,
	)
	ErrAlreadyCheckedIn = apperror.New(
		apperror.CodeConflict,
		"attendance already recorded for this date",
		http.StatusConflict,
	)
	ErrNotEnrolled = apperror.New(
		apperror.CodeForbidden,
		"student is not enrolled in this course",
		http.StatusForbidden,
	)
	ErrNotCourseOwner = apperror.New(
		apperror.CodeForbidden,
		"only the course instructor can issue check-in tokens",
		http.StatusForbidden,
	)
	ErrInvalidKind = apperror.New(
		apperror.CodeInvalidInput,
		"kind must be QR or PASSWORD",
		http.StatusBadRequest,
	)
	ErrInvalidCourseID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid course id",
		http.StatusBadRequest,
	)
	ErrInvalidDateFormat = apperror.New(
		apperror.CodeInvalidInput,
		"invalid date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrCourseNotFound = apperror.New(
		apperror.CodeNotFound,
		"course not found",
		http.StatusNotFound,
	)
)
