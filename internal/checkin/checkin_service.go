package checkin

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"gorm.io/gorm"

	checkinerrors "github.com/sengwoong/lecture-server/internal/checkin/errors"
	"github.com/sengwoong/lecture-server/internal/course"
	"github.com/sengwoong/lecture-server/internal/domain"
	"github.com/sengwoong/lecture-server/internal/events"
	"github.com/sengwoong/lecture-server/internal/messaging/kafka"
	"github.com/sengwoong/lecture-server/internal/metrics"
	"github.com/sengwoong/lecture-server/internal/record"
	"github.com/sengwoong/lecture-server/internal/schedule"
	"github.com/sengwoong/lecture-server/internal/shared/contextutil"
)

const dateLayout = "2006-01-02"

// EnrollmentChecker answers whether a student may redeem for a course.
type EnrollmentChecker interface {
	IsEnrolled(ctx context.Context, courseID, studentID string) (bool, error)
}

//go:generate mockgen -source=checkin_service.go -destination=mock/checkin_service_mock.go -package=mock
type Service interface {
	Issue(ctx context.Context, actorID, courseID string, req IssueRequest) (IssueResponse, error)
	Redeem(ctx context.Context, studentID string, req RedeemRequest) (RedeemResponse, error)
}

type service struct {
	db         *sql.DB
	records    record.Repository
	courses    course.Repository
	schedule   schedule.Service
	tokens     *TokenManager
	codes      *CodeStore
	enrollment EnrollmentChecker
	outbox     kafka.OutboxRepository
	logger     *zap.Logger
}

func NewService(
	db *sql.DB,
	records record.Repository,
	courses course.Repository,
	scheduleService schedule.Service,
	tokens *TokenManager,
	codes *CodeStore,
	enrollment EnrollmentChecker,
	outboxRepo kafka.OutboxRepository,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("checkin.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("checkin.service")
	}
	return &service{
		db:         db,
		records:    records,
		courses:    courses,
		schedule:   scheduleService,
		tokens:     tokens,
		codes:      codes,
		enrollment: enrollment,
		outbox:     outboxRepo,
		logger:     l,
	}
}

func (s *service) Issue(ctx context.Context, actorID, courseID string, req IssueRequest) (IssueResponse, error) {
	s.logger.Debug("issue check-in token requested",
		zap.String("course_id", courseID),
		zap.String("date", req.Date),
		zap.String("kind", req.Kind),
	)

	if _, err := uuid.Parse(courseID); err != nil {
		return IssueResponse{}, checkinerrors.ErrInvalidCourseID
	}
	if _, err := time.Parse(dateLayout, req.Date); err != nil {
		return IssueResponse{}, checkinerrors.ErrInvalidDateFormat
	}
	kind := CheckKind(req.Kind)
	if kind != KindQR && kind != KindPassword {
		return IssueResponse{}, checkinerrors.ErrInvalidKind
	}

	c, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return IssueResponse{}, checkinerrors.ErrCourseNotFound
		}
		return IssueResponse{}, err
	}
	if c.InstructorID.String() != actorID {
		return IssueResponse{}, checkinerrors.ErrNotCourseOwner
	}

	scheduleID, err := s.guardOccurrence(ctx, courseID, req.Date)
	if err != nil {
		return IssueResponse{}, err
	}

	resp := IssueResponse{CourseID: courseID, Date: req.Date, Kind: string(kind)}
	var validUntil time.Time

	switch kind {
	case KindQR:
		resp.Token, validUntil, err = s.tokens.Issue(courseID, req.Date, scheduleID)
	case KindPassword:
		resp.Code, validUntil, err = s.codes.Put(ctx, CodePayload{
			CourseID:   courseID,
			Date:       req.Date,
			ScheduleID: scheduleID,
		})
	}
	if err != nil {
		s.logger.Error("issue check-in token failed",
			zap.String("course_id", courseID),
			zap.String("kind", string(kind)),
			zap.Error(err),
		)
		return IssueResponse{}, err
	}
	resp.ValidUntil = validUntil.UTC().Format(time.RFC3339)

	metrics.CheckinTokensIssued.WithLabelValues(string(kind)).Inc()
	s.logger.Info("issue check-in token success",
		zap.String("course_id", courseID),
		zap.String("date", req.Date),
		zap.String("kind", string(kind)),
	)
	return resp, nil
}

func (s *service) Redeem(ctx context.Context, studentID string, req RedeemRequest) (RedeemResponse, error) {
	var (
		payload CodePayload
		method  domain.CheckMethod
	)

	switch {
	case req.Token != "":
		parsed, err := s.tokens.Parse(req.Token)
		if err != nil {
			s.countRedeem(domain.MethodQR, outcomeFor(err))
			return RedeemResponse{}, err
		}
		payload = CodePayload{CourseID: parsed.CourseID, Date: parsed.Date, ScheduleID: parsed.ScheduleID}
		method = domain.MethodQR
	case req.Code != "":
		found, err := s.codes.Get(ctx, req.Code)
		if err != nil {
			s.countRedeem(domain.MethodPassword, outcomeFor(err))
			return RedeemResponse{}, err
		}
		payload = found
		method = domain.MethodPassword
	default:
		return RedeemResponse{}, checkinerrors.ErrTokenInvalid
	}

	resp, err := s.redeemPayload(ctx, studentID, payload, method)
	if err != nil {
		s.countRedeem(method, outcomeFor(err))
		return RedeemResponse{}, err
	}
	s.countRedeem(method, "success")
	return resp, nil
}

func (s *service) redeemPayload(ctx context.Context, studentID string, payload CodePayload, method domain.CheckMethod) (RedeemResponse, error) {
	studentUUID, err := uuid.Parse(studentID)
	if err != nil {
		return RedeemResponse{}, checkinerrors.ErrTokenInvalid
	}
	courseUUID, err := uuid.Parse(payload.CourseID)
	if err != nil {
		return RedeemResponse{}, checkinerrors.ErrTokenInvalid
	}
	date, err := time.Parse(dateLayout, payload.Date)
	if err != nil {
		return RedeemResponse{}, checkinerrors.ErrTokenInvalid
	}

	// A cancellation filed after issuing invalidates the session.
	if _, err := s.guardOccurrence(ctx, payload.CourseID, payload.Date); err != nil {
		return RedeemResponse{}, err
	}

	enrolled, err := s.enrollment.IsEnrolled(ctx, payload.CourseID, studentID)
	if err != nil {
		return RedeemResponse{}, err
	}
	if !enrolled {
		return RedeemResponse{}, checkinerrors.ErrNotEnrolled
	}

	var scheduleID *uuid.UUID
	if payload.ScheduleID != nil {
		if parsed, err := uuid.Parse(*payload.ScheduleID); err == nil {
			scheduleID = &parsed
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("redeem begin tx failed", zap.Error(err))
		return RedeemResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.records.WithTx(tx)
	now := time.Now().UTC()

	rec, err := qtx.FindByKey(ctx, payload.CourseID, studentID, date)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		rec = &record.AttendanceRecord{
			ID:         uuid.New(),
			CourseID:   courseUUID,
			StudentID:  studentUUID,
			Date:       date,
			ScheduleID: scheduleID,
		}
		if err := qtx.CreateRecord(ctx, rec); err != nil {
			// two redemptions raced on the record row
			if isUniqueViolation(err) {
				return RedeemResponse{}, checkinerrors.ErrAlreadyCheckedIn
			}
			return RedeemResponse{}, err
		}
	case err != nil:
		return RedeemResponse{}, err
	default:
		if rec.Detail != nil && attended(rec.Detail.Status) {
			return RedeemResponse{}, checkinerrors.ErrAlreadyCheckedIn
		}
	}

	if rec.Detail == nil {
		detail := &record.AttendanceDetail{
			ID:        uuid.New(),
			RecordID:  rec.ID,
			Status:    domain.StatusPresent,
			Method:    method,
			CheckTime: now,
		}
		if err := qtx.CreateDetail(ctx, detail); err != nil {
			if isUniqueViolation(err) {
				return RedeemResponse{}, checkinerrors.ErrAlreadyCheckedIn
			}
			return RedeemResponse{}, err
		}
		rec.Detail = detail
	} else {
		// professor marked absent earlier; the live check-in wins
		rec.Detail.Status = domain.StatusPresent
		rec.Detail.Method = method
		rec.Detail.CheckTime = now
		rec.Detail.RequiresJustification = false
		if err := qtx.UpdateDetail(ctx, rec.Detail); err != nil {
			return RedeemResponse{}, err
		}
	}

	if s.outbox != nil {
		if err := s.enqueueEvent(ctx, tx, rec, method, now); err != nil {
			return RedeemResponse{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("redeem commit failed", zap.Error(err))
		return RedeemResponse{}, err
	}

	s.logger.Info("redeem success",
		zap.String("record_id", rec.ID.String()),
		zap.String("course_id", payload.CourseID),
		zap.String("student_id", studentID),
		zap.String("method", string(method)),
	)
	return RedeemResponse{
		RecordID:  rec.ID.String(),
		CourseID:  payload.CourseID,
		StudentID: studentID,
		Date:      payload.Date,
		Status:    string(domain.StatusPresent),
		Method:    string(method),
		CheckTime: now.Format(time.RFC3339),
	}, nil
}

func (s *service) enqueueEvent(ctx context.Context, tx *sql.Tx, rec *record.AttendanceRecord, method domain.CheckMethod, now time.Time) error {
	rid := contextutil.GetRequestID(ctx)
	event := events.CheckinRecordedEvent{
		EventType:  "checkin_recorded",
		RecordID:   rec.ID.String(),
		CourseID:   rec.CourseID.String(),
		StudentID:  rec.StudentID.String(),
		Date:       rec.Date.Format(dateLayout),
		Method:     string(method),
		OccurredAt: now,
	}
	body, err := json.Marshal(event)
	if err != nil {
		s.logger.Error("marshal checkin event failed", zap.String("request_id", rid), zap.Error(err))
		return err
	}

	if err := s.outbox.WithTx(tx).Create(ctx, kafka.OutboxEvent{
		ID:            uuid.NewString(),
		RequestID:     rid,
		AggregateType: "attendance_record",
		AggregateID:   rec.ID.String(),
		EventType:     event.EventType,
		Topic:         events.CheckinRecordedTopic,
		Payload:       body,
		Status:        kafka.OutboxStatusPending,
	}); err != nil {
		s.logger.Error("create checkin outbox persist failed",
			zap.String("record_id", rec.ID.String()),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func (s *service) guardOccurrence(ctx context.Context, courseID, date string) (*string, error) {
	occ, err := s.schedule.ResolveOccurrence(ctx, courseID, date)
	if err != nil {
		return nil, err
	}
	switch occ.Kind {
	case schedule.OccurrenceCancelled:
		return nil, checkinerrors.ErrClassCancelled
	case schedule.OccurrenceNoClass:
		return nil, checkinerrors.ErrNotScheduled
	}
	return occ.ScheduleID, nil
}

func (s *service) countRedeem(method domain.CheckMethod, outcome string) {
	metrics.CheckinRedeems.WithLabelValues(string(method), outcome).Inc()
}

func outcomeFor(err error) string {
	switch {
	case errors.Is(err, checkinerrors.ErrAlreadyCheckedIn):
		return "duplicate"
	case errors.Is(err, checkinerrors.ErrTokenExpired),
		errors.Is(err, checkinerrors.ErrCodeExpired):
		return "expired"
	default:
		return "rejected"
	}
}

func attended(status domain.RawStatus) bool {
	return status == domain.StatusPresent || status == domain.StatusLate
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
