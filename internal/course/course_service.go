package course

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"gorm.io/gorm"

	courseerrors "github.com/sengwoong/lecture-server/internal/course/errors"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

//go:generate mockgen -source=course_service.go -destination=mock/course_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, instructorID string, req CreateCourseRequest) (CourseResponse, error)
	GetByID(ctx context.Context, id string) (CourseResponse, error)
	GetAllByInstructor(ctx context.Context, instructorID string) ([]CourseResponse, error)
	Enroll(ctx context.Context, courseID, studentID string) (EnrollmentResponse, error)
}

type service struct {
	db     *sql.DB
	repo   Repository
	logger *zap.Logger
}

func NewService(db *sql.DB, repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("course.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("course.service")
	}
	return &service{db: db, repo: repo, logger: l}
}

func (s *service) Create(ctx context.Context, instructorID string, req CreateCourseRequest) (CourseResponse, error) {
	s.logger.Debug("create course requested",
		zap.String("instructor_id", instructorID),
		zap.String("code", req.Code),
	)

	instructorUUID, err := uuid.Parse(instructorID)
	if err != nil {
		return CourseResponse{}, courseerrors.ErrInvalidInstructorID
	}

	startDate, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		return CourseResponse{}, courseerrors.ErrInvalidDateFormat
	}
	endDate, err := time.Parse(dateLayout, req.EndDate)
	if err != nil {
		return CourseResponse{}, courseerrors.ErrInvalidDateFormat
	}
	if startDate.After(endDate) {
		return CourseResponse{}, courseerrors.ErrInvalidDateRange
	}

	startTime, err := time.Parse(timeLayout, req.StartTime)
	if err != nil {
		return CourseResponse{}, courseerrors.ErrInvalidTimeFormat
	}
	endTime, err := time.Parse(timeLayout, req.EndTime)
	if err != nil {
		return CourseResponse{}, courseerrors.ErrInvalidTimeFormat
	}
	if !startTime.Before(endTime) {
		return CourseResponse{}, courseerrors.ErrInvalidTimeRange
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("create course begin tx failed", zap.Error(err))
		return CourseResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	c := &Course{
		ID:           uuid.New(),
		Name:         req.Name,
		Code:         req.Code,
		Semester:     req.Semester,
		InstructorID: instructorUUID,
		StartDate:    startDate,
		EndDate:      endDate,
		Weekdays:     strings.Join(req.Weekdays, ","),
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
		Room:         req.Room,
		Description:  req.Description,
		IsActive:     true,
	}

	if err := qtx.Create(ctx, c); err != nil {
		if isUniqueViolation(err) {
			return CourseResponse{}, courseerrors.ErrDuplicateCode
		}
		s.logger.Error("create course persist failed", zap.Error(err))
		return CourseResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("create course commit failed", zap.Error(err))
		return CourseResponse{}, err
	}
	s.logger.Info("create course success",
		zap.String("course_id", c.ID.String()),
		zap.String("code", c.Code),
	)

	return mapToResponse(*c), nil
}

func (s *service) GetByID(ctx context.Context, id string) (CourseResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return CourseResponse{}, courseerrors.ErrInvalidCourseID
	}
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return CourseResponse{}, courseerrors.ErrCourseNotFound
		}
		return CourseResponse{}, err
	}
	return mapToResponse(*c), nil
}

func (s *service) GetAllByInstructor(ctx context.Context, instructorID string) ([]CourseResponse, error) {
	if _, err := uuid.Parse(instructorID); err != nil {
		return nil, courseerrors.ErrInvalidInstructorID
	}
	rows, err := s.repo.FindAllByInstructor(ctx, instructorID)
	if err != nil {
		return nil, err
	}
	resp := make([]CourseResponse, len(rows))
	for i, c := range rows {
		resp[i] = mapToResponse(c)
	}
	return resp, nil
}

func (s *service) Enroll(ctx context.Context, courseID, studentID string) (EnrollmentResponse, error) {
	courseUUID, err := uuid.Parse(courseID)
	if err != nil {
		return EnrollmentResponse{}, courseerrors.ErrInvalidCourseID
	}
	studentUUID, err := uuid.Parse(studentID)
	if err != nil {
		return EnrollmentResponse{}, courseerrors.ErrInvalidStudentID
	}

	c, err := s.repo.FindByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return EnrollmentResponse{}, courseerrors.ErrCourseNotFound
		}
		return EnrollmentResponse{}, err
	}
	if !c.IsActive {
		return EnrollmentResponse{}, courseerrors.ErrCourseInactive
	}

	e := &Enrollment{
		ID:        uuid.New(),
		CourseID:  courseUUID,
		StudentID: studentUUID,
	}
	if err := s.repo.CreateEnrollment(ctx, e); err != nil {
		if isUniqueViolation(err) {
			return EnrollmentResponse{}, courseerrors.ErrAlreadyEnrolled
		}
		s.logger.Error("enroll persist failed", zap.Error(err))
		return EnrollmentResponse{}, err
	}

	s.logger.Info("enroll success",
		zap.String("course_id", courseID),
		zap.String("student_id", studentID),
	)
	return EnrollmentResponse{
		ID:        e.ID.String(),
		CourseID:  courseID,
		StudentID: studentID,
	}, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func mapToResponse(c Course) CourseResponse {
	return CourseResponse{
		ID:           c.ID.String(),
		Name:         c.Name,
		Code:         c.Code,
		Semester:     c.Semester,
		InstructorID: c.InstructorID.String(),
		StartDate:    c.StartDate.Format(dateLayout),
		EndDate:      c.EndDate.Format(dateLayout),
		Weekdays:     strings.Split(c.Weekdays, ","),
		StartTime:    c.StartTime,
		EndTime:      c.EndTime,
		Room:         c.Room,
		Description:  c.Description,
		IsActive:     c.IsActive,
	}
}
