package record

import (
	"context"
	"database/sql"
	"errors"
	"iter"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/sengwoong/lecture-server/internal/domain"
	recorderrors "github.com/sengwoong/lecture-server/internal/record/errors"
	"github.com/sengwoong/lecture-server/internal/schedule"
)

const (
	dateLayout = "2006-01-02"

	// queryPageSize is how many rows each Query iteration pulls at once.
	queryPageSize = 200
)

//go:generate mockgen -source=record_service.go -destination=mock/record_service_mock.go -package=mock
type Service interface {
	Upsert(ctx context.Context, req UpsertRecordRequest) (RecordView, error)
	BulkUpsert(ctx context.Context, req BulkUpsertRequest) (BulkResult, error)
	Query(ctx context.Context, f Filter) iter.Seq2[RecordView, error]
	Count(ctx context.Context, f Filter) (int64, error)
	GetByID(ctx context.Context, id string) (RecordView, error)
	Summary(ctx context.Context, courseID string) (CourseSummary, error)
}

type service struct {
	db       *sql.DB
	repo     Repository
	schedule schedule.Service
	logger   *zap.Logger
}

func NewService(db *sql.DB, repo Repository, scheduleService schedule.Service, logger ...*zap.Logger) Service {
	l := zap.L().Named("record.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("record.service")
	}
	return &service{db: db, repo: repo, schedule: scheduleService, logger: l}
}

func (s *service) Upsert(ctx context.Context, req UpsertRecordRequest) (RecordView, error) {
	s.logger.Debug("upsert record requested",
		zap.String("course_id", req.CourseID),
		zap.String("student_id", req.StudentID),
		zap.String("date", req.Date),
		zap.String("status", req.Status),
	)

	key, err := parseKey(req.CourseID, req.StudentID, req.Date)
	if err != nil {
		return RecordView{}, err
	}

	status := domain.RawStatus(req.Status)
	if !domain.ValidRawStatus(status) {
		return RecordView{}, recorderrors.ErrInvalidStatus
	}
	method := domain.CheckMethod(req.Method)
	if req.Method == "" {
		method = domain.MethodManual
	}
	if !domain.ValidCheckMethod(method) {
		return RecordView{}, recorderrors.ErrInvalidMethod
	}

	scheduleID, err := s.guardOccurrence(ctx, req.CourseID, req.Date)
	if err != nil {
		return RecordView{}, err
	}

	rec, err := s.applyUpsert(ctx, key, status, method, req.Notes, scheduleID)
	if err != nil {
		return RecordView{}, err
	}
	s.logger.Info("upsert record success",
		zap.String("record_id", rec.ID.String()),
		zap.String("status", string(status)),
	)
	return mapToView(*rec), nil
}

// recordKey identifies the single canonical row a write may touch.
type recordKey struct {
	courseID  uuid.UUID
	studentID uuid.UUID
	date      time.Time
}

func parseKey(courseID, studentID, date string) (recordKey, error) {
	var key recordKey
	var err error
	if key.courseID, err = uuid.Parse(courseID); err != nil {
		return key, recorderrors.ErrInvalidCourseID
	}
	if key.studentID, err = uuid.Parse(studentID); err != nil {
		return key, recorderrors.ErrInvalidStudentID
	}
	if key.date, err = time.Parse(dateLayout, date); err != nil {
		return key, recorderrors.ErrInvalidDateFormat
	}
	return key, nil
}

// guardOccurrence rejects writes on cancelled dates and hands back the
// stored occurrence id when the date has a persisted exception row.
func (s *service) guardOccurrence(ctx context.Context, courseID, date string) (*uuid.UUID, error) {
	occ, err := s.schedule.ResolveOccurrence(ctx, courseID, date)
	if err != nil {
		return nil, err
	}
	if occ.Kind == schedule.OccurrenceCancelled {
		return nil, recorderrors.ErrClassCancelled
	}
	if occ.ScheduleID == nil {
		return nil, nil
	}
	id, err := uuid.Parse(*occ.ScheduleID)
	if err != nil {
		return nil, nil
	}
	return &id, nil
}

// applyUpsert creates or updates a record plus its detail inside one
// transaction. Two concurrent writers for the same key race on the unique
// index: the loser re-reads the winner's row and merges into it, so the
// caller always observes exactly one canonical row.
func (s *service) applyUpsert(
	ctx context.Context,
	key recordKey,
	status domain.RawStatus,
	method domain.CheckMethod,
	notes *string,
	scheduleID *uuid.UUID,
) (*AttendanceRecord, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("upsert begin tx failed", zap.Error(err))
		return nil, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	rec, err := qtx.FindByKey(ctx, key.courseID.String(), key.studentID.String(), key.date)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		rec = &AttendanceRecord{
			ID:         uuid.New(),
			CourseID:   key.courseID,
			StudentID:  key.studentID,
			Date:       key.date,
			ScheduleID: scheduleID,
			Notes:      notes,
		}
		if err := qtx.CreateRecord(ctx, rec); err != nil {
			if !isUniqueViolation(err) {
				return nil, err
			}
			// lost the create race; fall back to the winner's row
			rec, err = qtx.FindByKey(ctx, key.courseID.String(), key.studentID.String(), key.date)
			if err != nil {
				return nil, err
			}
		}
	case err != nil:
		return nil, err
	}

	if notes != nil {
		rec.Notes = notes
		if err := qtx.UpdateRecord(ctx, rec); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	if rec.Detail == nil {
		detail := &AttendanceDetail{
			ID:                    uuid.New(),
			RecordID:              rec.ID,
			Status:                status,
			Method:                method,
			CheckTime:             now,
			RequiresJustification: domain.RequiresJustification(status),
		}
		if err := qtx.CreateDetail(ctx, detail); err != nil {
			if !isUniqueViolation(err) {
				return nil, err
			}
			fresh, err := qtx.FindByKey(ctx, key.courseID.String(), key.studentID.String(), key.date)
			if err != nil {
				return nil, err
			}
			rec = fresh
		} else {
			rec.Detail = detail
		}
	}

	if rec.Detail != nil && (rec.Detail.Status != status || rec.Detail.Method != method) {
		rec.Detail.Status = status
		rec.Detail.Method = method
		rec.Detail.CheckTime = now
		rec.Detail.RequiresJustification = domain.RequiresJustification(status)
		if err := qtx.UpdateDetail(ctx, rec.Detail); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("upsert commit failed", zap.Error(err))
		return nil, err
	}
	return rec, nil
}

func (s *service) BulkUpsert(ctx context.Context, req BulkUpsertRequest) (BulkResult, error) {
	s.logger.Debug("bulk upsert requested",
		zap.String("course_id", req.CourseID),
		zap.String("date", req.Date),
		zap.Int("entries", len(req.Entries)),
	)

	courseUUID, err := uuid.Parse(req.CourseID)
	if err != nil {
		return BulkResult{}, recorderrors.ErrInvalidCourseID
	}
	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		return BulkResult{}, recorderrors.ErrInvalidDateFormat
	}

	// A cancelled date rejects the whole batch, not entry by entry.
	scheduleID, err := s.guardOccurrence(ctx, req.CourseID, req.Date)
	if err != nil {
		return BulkResult{}, err
	}

	result := BulkResult{Skipped: []SkippedEntry{}}
	for i, entry := range req.Entries {
		studentUUID, err := uuid.Parse(entry.StudentID)
		if err != nil {
			result.Skipped = append(result.Skipped, SkippedEntry{Index: i, StudentID: entry.StudentID, Reason: recorderrors.ErrInvalidStudentID.Message})
			continue
		}
		status := domain.RawStatus(entry.Status)
		if !domain.ValidRawStatus(status) {
			result.Skipped = append(result.Skipped, SkippedEntry{Index: i, StudentID: entry.StudentID, Reason: recorderrors.ErrInvalidStatus.Message})
			continue
		}

		key := recordKey{courseID: courseUUID, studentID: studentUUID, date: date}
		rec, err := s.applyUpsert(ctx, key, status, domain.MethodManual, entry.Notes, scheduleID)
		if err != nil {
			// infra failures abort; each applied entry already committed
			s.logger.Error("bulk upsert entry failed",
				zap.Int("index", i),
				zap.String("student_id", entry.StudentID),
				zap.Error(err),
			)
			return result, err
		}
		result.Applied = append(result.Applied, mapToView(*rec))
	}

	s.logger.Info("bulk upsert finished",
		zap.String("course_id", req.CourseID),
		zap.Int("applied", len(result.Applied)),
		zap.Int("skipped", len(result.Skipped)),
	)
	return result, nil
}

// Query returns a lazy, finite, restartable sequence of merged record
// views. Each range over the sequence re-reads from the first page.
func (s *service) Query(ctx context.Context, f Filter) iter.Seq2[RecordView, error] {
	return func(yield func(RecordView, error) bool) {
		offset := 0
		for {
			rows, err := s.repo.FindPage(ctx, f, offset, queryPageSize)
			if err != nil {
				yield(RecordView{}, err)
				return
			}
			for _, rec := range rows {
				if !yield(mapToView(rec), nil) {
					return
				}
			}
			if len(rows) < queryPageSize {
				return
			}
			offset += queryPageSize
		}
	}
}

func (s *service) Count(ctx context.Context, f Filter) (int64, error) {
	return s.repo.CountByFilter(ctx, f)
}

func (s *service) GetByID(ctx context.Context, id string) (RecordView, error) {
	if _, err := uuid.Parse(id); err != nil {
		return RecordView{}, recorderrors.ErrRecordNotFound
	}
	rec, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return RecordView{}, recorderrors.ErrRecordNotFound
		}
		return RecordView{}, err
	}
	return mapToView(*rec), nil
}

func (s *service) Summary(ctx context.Context, courseID string) (CourseSummary, error) {
	if _, err := uuid.Parse(courseID); err != nil {
		return CourseSummary{}, recorderrors.ErrInvalidCourseID
	}

	summary := CourseSummary{CourseID: courseID, Students: []StudentSummary{}}
	perStudent := map[string]*StudentSummary{}

	for view, err := range s.Query(ctx, Filter{CourseID: courseID}) {
		if err != nil {
			return CourseSummary{}, err
		}
		st, ok := perStudent[view.StudentID]
		if !ok {
			st = &StudentSummary{StudentID: view.StudentID}
			perStudent[view.StudentID] = st
		}
		summary.Total++
		st.Total++
		tally(&summary, st, domain.DerivedStatus(view.DerivedStatus))
	}

	for _, st := range perStudent {
		if st.Total > 0 {
			st.AttendanceRate = float64(st.Present+st.Late) / float64(st.Total) * 100
		}
		summary.Students = append(summary.Students, *st)
	}
	if summary.Total > 0 {
		summary.AttendanceRate = float64(summary.Present+summary.Late) / float64(summary.Total) * 100
	}
	return summary, nil
}

func tally(cs *CourseSummary, st *StudentSummary, status domain.DerivedStatus) {
	switch status {
	case domain.DerivedPresent:
		cs.Present++
		st.Present++
	case domain.DerivedLate:
		cs.Late++
		st.Late++
	case domain.DerivedAbsent:
		cs.Absent++
		st.Absent++
	case domain.DerivedMedical:
		cs.Medical++
		st.Medical++
	case domain.DerivedOfficial:
		cs.Official++
		st.Official++
	default:
		cs.Unconfirmed++
		st.Unconfirmed++
	}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func mapToView(rec AttendanceRecord) RecordView {
	view := RecordView{
		ID:        rec.ID.String(),
		CourseID:  rec.CourseID.String(),
		StudentID: rec.StudentID.String(),
		Date:      rec.Date.Format(dateLayout),
		Notes:     rec.Notes,
	}

	var fact *domain.AttendanceFact
	if rec.Detail != nil {
		fact = &domain.AttendanceFact{Status: rec.Detail.Status}
		view.Detail = &DetailView{
			Status:                string(rec.Detail.Status),
			Method:                string(rec.Detail.Method),
			CheckTime:             rec.Detail.CheckTime.Format(time.RFC3339),
			RequiresJustification: rec.Detail.RequiresJustification,
		}
	}

	var leave *domain.LeaveFact
	if rec.Leave != nil {
		leave = &domain.LeaveFact{Status: rec.Leave.Status}
		view.Leave = &LeaveView{
			ID:     rec.Leave.ID.String(),
			Status: string(rec.Leave.Status),
		}
	}

	view.DerivedStatus = string(domain.Resolve(fact, leave))
	return view
}
