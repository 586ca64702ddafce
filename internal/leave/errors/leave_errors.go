package leaveerrors

import (
	"net/http"

	"github.com/sengwoong/lecture-server/internal/shared/apperror"
)

var (
	ErrLeaveNotFound = apperror.New(
		apperror.CodeNotFound,
		"leave request not found",
		http.StatusNotFound,
	)
	ErrRecordNotFound = apperror.New(
		apperror.CodeNotFound,
		"attendance record not found",
		http.StatusNotFound,
	)
	ErrInvalidLeaveID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid leave request id",
		http.StatusBadRequest,
	)
	ErrInvalidRecordID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid record id",
		http.StatusBadRequest,
	)
	ErrInvalidStudentID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid student id",
		http.StatusBadRequest,
	)
	ErrInvalidDateFormat = apperror.New(
		apperror.CodeInvalidInput,
		"invalid date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrInvalidDateRange = apperror.New(
		apperror.CodeInvalidInput,
		"end_date must not be before start_date",
		http.StatusBadRequest,
	)
	ErrNotRecordOwner = apperror.New(
		apperror.CodeForbidden,
		"leave requests can only be managed by the record owner",
		http.StatusForbidden,
	)
	ErrNotJustifiable = apperror.New(
		apperror.CodeInvalidState,
		"this record does not require justification",
		http.StatusBadRequest,
	)
	ErrAlreadyFiled = apperror.New(
		apperror.CodeConflict,
		"a leave request already exists for this record",
		http.StatusConflict,
	)
	ErrImmutable = apperror.New(
		apperror.CodeInvalidState,
		"only pending leave requests can be modified",
		http.StatusConflict,
	)
	ErrAlreadyDecided = apperror.New(
		apperror.CodeInvalidState,
		"leave request is already decided",
		http.StatusConflict,
	)
	ErrInvalidDecision = apperror.New(
		apperror.CodeInvalidInput,
		"decision must be UNDER_REVIEW, APPROVED or REJECTED",
		http.StatusBadRequest,
	)
)
