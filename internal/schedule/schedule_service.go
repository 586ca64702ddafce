package schedule

import (
	"context"
	"database/sql"
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"

	"github.com/sengwoong/lecture-server/internal/course"
	scheduleerrors "github.com/sengwoong/lecture-server/internal/schedule/errors"
)

const dateLayout = "2006-01-02"

// Resolved occurrence kinds. CANCELLED and MAKEUP come from stored
// exception rows; REGULAR and NO_CLASS are computed.
const (
	OccurrenceNoClass   = "NO_CLASS"
	OccurrenceRegular   = "REGULAR"
	OccurrenceCancelled = "CANCELLED"
	OccurrenceMakeup    = "MAKEUP"
)

//go:generate mockgen -source=schedule_service.go -destination=mock/schedule_service_mock.go -package=mock
type Service interface {
	ResolveOccurrence(ctx context.Context, courseID, date string) (OccurrenceView, error)
	CreateException(ctx context.Context, actorID, courseID string, req CreateExceptionRequest) (ExceptionResponse, error)
	DeleteException(ctx context.Context, actorID, id string) error
	BulkGenerate(ctx context.Context, courseID, from, to string, skipWeeks []int) ([]PlannedOccurrence, error)
}

type service struct {
	db      *sql.DB
	repo    Repository
	courses course.Repository
	logger  *zap.Logger
	sf      singleflight.Group
}

func NewService(db *sql.DB, repo Repository, courses course.Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("schedule.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("schedule.service")
	}
	return &service{db: db, repo: repo, courses: courses, logger: l}
}

// weekNumber bins dates into 7-day windows counted from the course start
// date, whether or not a bin contained a meeting day. The first bin is
// week 1.
func weekNumber(courseStart, date time.Time) int {
	days := int(date.Sub(courseStart).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days/7 + 1
}

func (s *service) ResolveOccurrence(ctx context.Context, courseID, date string) (OccurrenceView, error) {
	if _, err := uuid.Parse(courseID); err != nil {
		return OccurrenceView{}, scheduleerrors.ErrInvalidScheduleID
	}
	day, err := time.Parse(dateLayout, date)
	if err != nil {
		return OccurrenceView{}, scheduleerrors.ErrInvalidDateFormat
	}

	// Coalesce concurrent resolutions for the same calendar cell; during a
	// check-in window every student asks the same question at once.
	v, err, _ := s.sf.Do(courseID+"|"+date, func() (any, error) {
		return s.resolve(ctx, courseID, day)
	})
	if err != nil {
		return OccurrenceView{}, err
	}
	return v.(OccurrenceView), nil
}

func (s *service) resolve(ctx context.Context, courseID string, day time.Time) (OccurrenceView, error) {
	c, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return OccurrenceView{}, scheduleerrors.ErrScheduleNotFound
		}
		return OccurrenceView{}, err
	}

	view := OccurrenceView{
		CourseID: courseID,
		Date:     day.Format(dateLayout),
	}

	row, err := s.repo.FindByCourseAndDate(ctx, courseID, day)
	switch {
	case err == nil:
		return s.exceptionView(ctx, c, row, view)
	case errors.Is(err, gorm.ErrRecordNotFound):
		// fall through to the computed calendar
	default:
		return OccurrenceView{}, err
	}

	if c.InRange(day) && c.MeetsOn(day.Weekday()) {
		view.Kind = OccurrenceRegular
		view.HasClass = true
		view.Week = weekNumber(c.StartDate, day)
		view.StartTime = c.StartTime
		view.EndTime = c.EndTime
		return view, nil
	}

	view.Kind = OccurrenceNoClass
	return view, nil
}

func (s *service) exceptionView(ctx context.Context, c *course.Course, row *ScheduleOccurrence, view OccurrenceView) (OccurrenceView, error) {
	id := row.ID.String()
	view.Persisted = true
	view.ScheduleID = &id
	view.Week = row.Week
	view.Reason = row.Reason
	view.StartTime = orDefault(row.StartTime, c.StartTime)
	view.EndTime = orDefault(row.EndTime, c.EndTime)

	switch row.Kind {
	case KindCancellation:
		view.Kind = OccurrenceCancelled
		view.HasClass = false
		// surface the replacement date when one is already scheduled
		makeup, err := s.repo.FindMakeupForCancellation(ctx, id)
		if err != nil {
			return OccurrenceView{}, err
		}
		if makeup != nil {
			d := makeup.Date.Format(dateLayout)
			view.RelatedDate = &d
		}
	case KindMakeup:
		view.Kind = OccurrenceMakeup
		view.HasClass = true
		if row.RelatedDate != nil {
			d := row.RelatedDate.Format(dateLayout)
			view.RelatedDate = &d
		}
	}
	return view, nil
}

func (s *service) CreateException(ctx context.Context, actorID, courseID string, req CreateExceptionRequest) (ExceptionResponse, error) {
	s.logger.Debug("create exception requested",
		zap.String("course_id", courseID),
		zap.String("actor_id", actorID),
		zap.String("date", req.Date),
		zap.String("kind", req.Kind),
	)

	day, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		return ExceptionResponse{}, scheduleerrors.ErrInvalidDateFormat
	}

	c, err := s.findOwnedCourse(ctx, actorID, courseID)
	if err != nil {
		return ExceptionResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("create exception begin tx failed", zap.Error(err))
		return ExceptionResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	if _, err := qtx.FindByCourseAndDate(ctx, courseID, day); err == nil {
		return ExceptionResponse{}, scheduleerrors.ErrOccurrenceConflict
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return ExceptionResponse{}, err
	}

	var row *ScheduleOccurrence
	switch req.Kind {
	case KindCancellation:
		row, err = s.buildCancellation(c, day, req)
	case KindMakeup:
		row, err = s.buildMakeup(ctx, qtx, c, day, req)
	}
	if err != nil {
		s.logger.Warn("create exception rejected",
			zap.String("course_id", courseID),
			zap.String("date", req.Date),
			zap.Error(err),
		)
		return ExceptionResponse{}, err
	}

	if err := qtx.Create(ctx, row); err != nil {
		// Concurrent creators race past the read above; the index decides
		// the winner.
		if uniqueViolationOn(err, "related_schedule_id") {
			return ExceptionResponse{}, scheduleerrors.ErrAlreadyLinked
		}
		if isUniqueViolation(err) {
			return ExceptionResponse{}, scheduleerrors.ErrOccurrenceConflict
		}
		s.logger.Error("create exception persist failed", zap.Error(err))
		return ExceptionResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("create exception commit failed", zap.Error(err))
		return ExceptionResponse{}, err
	}
	s.logger.Info("create exception success",
		zap.String("schedule_id", row.ID.String()),
		zap.String("course_id", courseID),
		zap.String("kind", row.Kind),
		zap.String("date", req.Date),
	)

	return mapToExceptionResponse(*row), nil
}

func (s *service) buildCancellation(c *course.Course, day time.Time, req CreateExceptionRequest) (*ScheduleOccurrence, error) {
	if !c.InRange(day) {
		return nil, scheduleerrors.ErrOutsideCourseRange
	}
	if !c.MeetsOn(day.Weekday()) {
		return nil, scheduleerrors.ErrInvalidWeekday
	}

	return &ScheduleOccurrence{
		ID:        uuid.New(),
		CourseID:  c.ID,
		Date:      day,
		Kind:      KindCancellation,
		Week:      weekNumber(c.StartDate, day),
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Reason:    req.Reason,
		Notes:     req.Notes,
	}, nil
}

func (s *service) buildMakeup(ctx context.Context, qtx Repository, c *course.Course, day time.Time, req CreateExceptionRequest) (*ScheduleOccurrence, error) {
	if req.RelatedDate == nil {
		return nil, scheduleerrors.ErrRelatedDateRequired
	}
	relatedDay, err := time.Parse(dateLayout, *req.RelatedDate)
	if err != nil {
		return nil, scheduleerrors.ErrInvalidDateFormat
	}

	cancellation, err := qtx.FindByCourseAndDate(ctx, c.ID.String(), relatedDay)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, scheduleerrors.ErrNotCancelled
		}
		return nil, err
	}
	if cancellation.Kind != KindCancellation {
		return nil, scheduleerrors.ErrNotCancelled
	}

	existing, err := qtx.FindMakeupForCancellation(ctx, cancellation.ID.String())
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, scheduleerrors.ErrAlreadyLinked
	}

	if !day.After(relatedDay) {
		return nil, scheduleerrors.ErrMakeupNotAfterCancellation
	}

	cancellationID := cancellation.ID
	return &ScheduleOccurrence{
		ID:                uuid.New(),
		CourseID:          c.ID,
		Date:              day,
		Kind:              KindMakeup,
		RelatedScheduleID: &cancellationID,
		RelatedDate:       &relatedDay,
		Week:              cancellation.Week,
		StartTime:         req.StartTime,
		EndTime:           req.EndTime,
		Reason:            req.Reason,
		Notes:             req.Notes,
	}, nil
}

func (s *service) DeleteException(ctx context.Context, actorID, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return scheduleerrors.ErrInvalidScheduleID
	}

	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return scheduleerrors.ErrScheduleNotFound
		}
		return err
	}

	if _, err := s.findOwnedCourse(ctx, actorID, row.CourseID.String()); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	if row.Kind == KindCancellation {
		makeup, err := qtx.FindMakeupForCancellation(ctx, id)
		if err != nil {
			return err
		}
		if makeup != nil {
			return scheduleerrors.ErrHasDependentMakeup
		}
	}

	count, err := qtx.CountRecordsForOccurrence(ctx, row.CourseID.String(), row.Date, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return scheduleerrors.ErrHasAttendanceRecords
	}

	if err := qtx.Delete(ctx, id); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	s.logger.Info("delete exception success",
		zap.String("schedule_id", id),
		zap.String("kind", row.Kind),
	)
	return nil
}

func (s *service) BulkGenerate(ctx context.Context, courseID, from, to string, skipWeeks []int) ([]PlannedOccurrence, error) {
	c, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, scheduleerrors.ErrScheduleNotFound
		}
		return nil, err
	}

	start, err := time.Parse(dateLayout, from)
	if err != nil {
		return nil, scheduleerrors.ErrInvalidDateFormat
	}
	end, err := time.Parse(dateLayout, to)
	if err != nil {
		return nil, scheduleerrors.ErrInvalidDateFormat
	}
	if start.After(end) {
		return nil, scheduleerrors.ErrInvalidDateRange
	}

	// Recurrence only exists inside the course's active range.
	if start.Before(c.StartDate) {
		start = c.StartDate
	}
	if end.After(c.EndDate) {
		end = c.EndDate
	}

	var planned []PlannedOccurrence
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if !c.MeetsOn(d.Weekday()) {
			continue
		}
		week := weekNumber(c.StartDate, d)
		if week < 1 || slices.Contains(skipWeeks, week) {
			continue
		}
		planned = append(planned, PlannedOccurrence{
			Date:      d.Format(dateLayout),
			Week:      week,
			StartTime: c.StartTime,
			EndTime:   c.EndTime,
		})
	}
	return planned, nil
}

func (s *service) findOwnedCourse(ctx context.Context, actorID, courseID string) (*course.Course, error) {
	c, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, scheduleerrors.ErrScheduleNotFound
		}
		return nil, err
	}
	if c.InstructorID.String() != actorID {
		return nil, scheduleerrors.ErrNotCourseOwner
	}
	return c, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func uniqueViolationOn(err error, column string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505" &&
		strings.Contains(pgErr.ConstraintName, column)
}

func orDefault(v *string, fallback string) string {
	if v != nil && *v != "" {
		return *v
	}
	return fallback
}

func mapToExceptionResponse(o ScheduleOccurrence) ExceptionResponse {
	resp := ExceptionResponse{
		ID:        o.ID.String(),
		CourseID:  o.CourseID.String(),
		Date:      o.Date.Format(dateLayout),
		Kind:      o.Kind,
		Week:      o.Week,
		StartTime: o.StartTime,
		EndTime:   o.EndTime,
		Reason:    o.Reason,
		Notes:     o.Notes,
	}
	if o.RelatedDate != nil {
		d := o.RelatedDate.Format(dateLayout)
		resp.RelatedDate = &d
	}
	return resp
}
