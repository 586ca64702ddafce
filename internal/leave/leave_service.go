package leave

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

	"github.com/sengwoong/lecture-server/internal/domain"
	"github.com/sengwoong/lecture-server/internal/events"
	leaveerrors "github.com/sengwoong/lecture-server/internal/leave/errors"
	"github.com/sengwoong/lecture-server/internal/messaging/kafka"
	"github.com/sengwoong/lecture-server/internal/metrics"
	"github.com/sengwoong/lecture-server/internal/record"
	"github.com/sengwoong/lecture-server/internal/shared/contextutil"
)

const dateLayout = "2006-01-02"

// BlobStore removes stored evidence files. Uploads happen out of band;
// the workflow only ever needs cleanup.
type BlobStore interface {
	Remove(ctx context.Context, handle string) error
}

//go:generate mockgen -source=leave_service.go -destination=mock/leave_service_mock.go -package=mock
type Service interface {
	File(ctx context.Context, studentID string, req FileLeaveRequest) (LeaveResponse, error)
	Edit(ctx context.Context, actorID, id string, req EditLeaveRequest) (LeaveResponse, error)
	Decide(ctx context.Context, reviewerID, id string, req DecideLeaveRequest) (LeaveResponse, error)
	Withdraw(ctx context.Context, actorID, id string) error
	GetByID(ctx context.Context, id string) (LeaveResponse, error)
	GetAllByStudent(ctx context.Context, studentID string) ([]LeaveResponse, error)
}

type service struct {
	db      *sql.DB
	repo    Repository
	records record.Repository
	blobs   BlobStore
	outbox  kafka.OutboxRepository
	logger  *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	records record.Repository,
	blobs BlobStore,
	outboxRepo kafka.OutboxRepository,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("leave.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leave.service")
	}
	return &service{
		db:      db,
		repo:    repo,
		records: records,
		blobs:   blobs,
		outbox:  outboxRepo,
		logger:  l,
	}
}

func (s *service) File(ctx context.Context, studentID string, req FileLeaveRequest) (LeaveResponse, error) {
	s.logger.Debug("file leave requested",
		zap.String("student_id", studentID),
		zap.String("record_id", req.RecordID),
	)

	studentUUID, err := uuid.Parse(studentID)
	if err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidStudentID
	}
	recordUUID, err := uuid.Parse(req.RecordID)
	if err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidRecordID
	}
	startDate, endDate, err := parseRange(req.StartDate, req.EndDate)
	if err != nil {
		return LeaveResponse{}, err
	}

	rec, err := s.records.FindByID(ctx, req.RecordID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveResponse{}, leaveerrors.ErrRecordNotFound
		}
		return LeaveResponse{}, err
	}
	if rec.StudentID != studentUUID {
		return LeaveResponse{}, leaveerrors.ErrNotRecordOwner
	}
	if rec.Detail == nil || !rec.Detail.RequiresJustification {
		return LeaveResponse{}, leaveerrors.ErrNotJustifiable
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("file leave begin tx failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	l := &LeaveRequest{
		ID:        uuid.New(),
		RecordID:  recordUUID,
		StudentID: studentUUID,
		CourseID:  rec.CourseID,
		StartDate: startDate,
		EndDate:   endDate,
		Reason:    req.Reason,
		Status:    domain.LeavePending,
	}
	for _, ev := range req.Evidence {
		l.Evidence = append(l.Evidence, Evidence{
			ID:         uuid.New(),
			LeaveID:    l.ID,
			FileName:   ev.FileName,
			FileHandle: ev.FileHandle,
			FileSize:   ev.FileSize,
			MimeType:   ev.MimeType,
		})
	}

	if err := qtx.Create(ctx, l); err != nil {
		if isUniqueViolation(err) {
			return LeaveResponse{}, leaveerrors.ErrAlreadyFiled
		}
		s.logger.Error("file leave persist failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("file leave commit failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	s.logger.Info("file leave success",
		zap.String("leave_id", l.ID.String()),
		zap.String("record_id", req.RecordID),
	)
	return mapToResponse(*l), nil
}

func (s *service) Edit(ctx context.Context, actorID, id string, req EditLeaveRequest) (LeaveResponse, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("edit leave begin tx failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	l, err := s.loadOwned(ctx, qtx, actorID, id)
	if err != nil {
		return LeaveResponse{}, err
	}
	if l.Status != domain.LeavePending {
		return LeaveResponse{}, leaveerrors.ErrImmutable
	}

	start, end := l.StartDate, l.EndDate
	if req.StartDate != nil {
		if start, err = time.Parse(dateLayout, *req.StartDate); err != nil {
			return LeaveResponse{}, leaveerrors.ErrInvalidDateFormat
		}
	}
	if req.EndDate != nil {
		if end, err = time.Parse(dateLayout, *req.EndDate); err != nil {
			return LeaveResponse{}, leaveerrors.ErrInvalidDateFormat
		}
	}
	if end.Before(start) {
		return LeaveResponse{}, leaveerrors.ErrInvalidDateRange
	}
	l.StartDate, l.EndDate = start, end
	if req.Reason != nil {
		l.Reason = *req.Reason
	}

	if err := qtx.Update(ctx, l); err != nil {
		s.logger.Error("edit leave persist failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		s.logger.Error("edit leave commit failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	s.logger.Info("edit leave success", zap.String("leave_id", id))
	return mapToResponse(*l), nil
}

func (s *service) Decide(ctx context.Context, reviewerID, id string, req DecideLeaveRequest) (LeaveResponse, error) {
	reviewerUUID, err := uuid.Parse(reviewerID)
	if err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidStudentID
	}
	decision := domain.LeaveStatus(req.Decision)
	switch decision {
	case domain.LeaveUnderReview, domain.LeaveApproved, domain.LeaveRejected:
	default:
		return LeaveResponse{}, leaveerrors.ErrInvalidDecision
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("decide leave begin tx failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	l, err := qtx.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveResponse{}, leaveerrors.ErrLeaveNotFound
		}
		return LeaveResponse{}, err
	}
	if l.Status.Terminal() {
		return LeaveResponse{}, leaveerrors.ErrAlreadyDecided
	}

	now := time.Now().UTC()
	l.Status = decision
	l.ReviewerID = &reviewerUUID
	l.ReviewComment = req.Comment
	if decision.Terminal() {
		l.DecidedAt = &now
	}

	if err := qtx.Update(ctx, l); err != nil {
		s.logger.Error("decide leave persist failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	// the resolver recomputes on read; a decision never rewrites the
	// stored attendance detail
	if decision.Terminal() && s.outbox != nil {
		if err := s.enqueueDecision(ctx, tx, l, now); err != nil {
			return LeaveResponse{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("decide leave commit failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	if decision.Terminal() {
		metrics.LeaveDecisions.WithLabelValues(string(decision)).Inc()
	}
	s.logger.Info("decide leave success",
		zap.String("leave_id", id),
		zap.String("decision", string(decision)),
	)
	return mapToResponse(*l), nil
}

func (s *service) Withdraw(ctx context.Context, actorID, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("withdraw leave begin tx failed", zap.Error(err))
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	l, err := s.loadOwned(ctx, qtx, actorID, id)
	if err != nil {
		return err
	}
	if l.Status != domain.LeavePending {
		return leaveerrors.ErrImmutable
	}

	if err := qtx.Delete(ctx, l); err != nil {
		s.logger.Error("withdraw leave persist failed", zap.Error(err))
		return err
	}
	if err := tx.Commit(); err != nil {
		s.logger.Error("withdraw leave commit failed", zap.Error(err))
		return err
	}

	// best effort: orphaned blobs are tolerable, lost rows are not
	if s.blobs != nil {
		for _, ev := range l.Evidence {
			if err := s.blobs.Remove(ctx, ev.FileHandle); err != nil {
				s.logger.Warn("evidence blob cleanup failed",
					zap.String("leave_id", id),
					zap.String("file_handle", ev.FileHandle),
					zap.Error(err),
				)
			}
		}
	}

	s.logger.Info("withdraw leave success", zap.String("leave_id", id))
	return nil
}

func (s *service) GetByID(ctx context.Context, id string) (LeaveResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidLeaveID
	}
	l, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveResponse{}, leaveerrors.ErrLeaveNotFound
		}
		return LeaveResponse{}, err
	}
	return mapToResponse(*l), nil
}

func (s *service) GetAllByStudent(ctx context.Context, studentID string) ([]LeaveResponse, error) {
	if _, err := uuid.Parse(studentID); err != nil {
		return nil, leaveerrors.ErrInvalidStudentID
	}
	rows, err := s.repo.FindAllByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	resp := make([]LeaveResponse, len(rows))
	for i, l := range rows {
		resp[i] = mapToResponse(l)
	}
	return resp, nil
}

func (s *service) loadOwned(ctx context.Context, repo Repository, actorID, id string) (*LeaveRequest, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, leaveerrors.ErrInvalidLeaveID
	}
	l, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, leaveerrors.ErrLeaveNotFound
		}
		return nil, err
	}
	if l.StudentID.String() != actorID {
		return nil, leaveerrors.ErrNotRecordOwner
	}
	return l, nil
}

func (s *service) enqueueDecision(ctx context.Context, tx *sql.Tx, l *LeaveRequest, decidedAt time.Time) error {
	rid := contextutil.GetRequestID(ctx)
	event := events.LeaveDecidedEvent{
		EventType: "leave_decided",
		LeaveID:   l.ID.String(),
		RecordID:  l.RecordID.String(),
		CourseID:  l.CourseID.String(),
		StudentID: l.StudentID.String(),
		Decision:  string(l.Status),
		DeciderID: l.ReviewerID.String(),
		Comment:   l.ReviewComment,
		DecidedAt: decidedAt,
	}
	body, err := json.Marshal(event)
	if err != nil {
		s.logger.Error("marshal leave event failed", zap.String("request_id", rid), zap.Error(err))
		return err
	}

	if err := s.outbox.WithTx(tx).Create(ctx, kafka.OutboxEvent{
		ID:            uuid.NewString(),
		RequestID:     rid,
		AggregateType: "leave_request",
		AggregateID:   l.ID.String(),
		EventType:     event.EventType,
		Topic:         events.LeaveDecidedTopic,
		Payload:       body,
		Status:        kafka.OutboxStatusPending,
	}); err != nil {
		s.logger.Error("create leave outbox persist failed",
			zap.String("leave_id", l.ID.String()),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func parseRange(start, end string) (time.Time, time.Time, error) {
	startDate, err := time.Parse(dateLayout, start)
	if err != nil {
		return time.Time{}, time.Time{}, leaveerrors.ErrInvalidDateFormat
	}
	endDate, err := time.Parse(dateLayout, end)
	if err != nil {
		return time.Time{}, time.Time{}, leaveerrors.ErrInvalidDateFormat
	}
	if endDate.Before(startDate) {
		return time.Time{}, time.Time{}, leaveerrors.ErrInvalidDateRange
	}
	return startDate, endDate, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func mapToResponse(l LeaveRequest) LeaveResponse {
	resp := LeaveResponse{
		ID:            l.ID.String(),
		RecordID:      l.RecordID.String(),
		StudentID:     l.StudentID.String(),
		CourseID:      l.CourseID.String(),
		StartDate:     l.StartDate.Format(dateLayout),
		EndDate:       l.EndDate.Format(dateLayout),
		Reason:        l.Reason,
		Status:        string(l.Status),
		ReviewComment: l.ReviewComment,
		Evidence:      []EvidenceView{},
	}
	if l.ReviewerID != nil {
		rid := l.ReviewerID.String()
		resp.ReviewerID = &rid
	}
	if l.DecidedAt != nil {
		decided := l.DecidedAt.UTC().Format(time.RFC3339)
		resp.DecidedAt = &decided
	}
	for _, ev := range l.Evidence {
		resp.Evidence = append(resp.Evidence, EvidenceView{
			ID:         ev.ID.String(),
			FileName:   ev.FileName,
			FileHandle: ev.FileHandle,
			FileSize:   ev.FileSize,
			MimeType:   ev.MimeType,
		})
	}
	return resp
}
