package course

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	courseerrors "github.com/sengwoong/lecture-server/internal/course/errors"
)

// =========================================
// Fakes
// =========================================

type fakeRepo struct {
	createFn           func(ctx context.Context, c *Course) error
	findByIDFn         func(ctx context.Context, id string) (*Course, error)
	findAllFn          func(ctx context.Context, instructorID string) ([]Course, error)
	createEnrollmentFn func(ctx context.Context, e *Enrollment) error
	isEnrolledFn       func(ctx context.Context, courseID, studentID string) (bool, error)
}

func (f *fakeRepo) WithTx(tx *sql.Tx) Repository { return f }
func (f *fakeRepo) Create(ctx context.Context, c *Course) error {
	return f.createFn(ctx, c)
}
func (f *fakeRepo) FindByID(ctx context.Context, id string) (*Course, error) {
	return f.findByIDFn(ctx, id)
}
func (f *fakeRepo) FindAllByInstructor(ctx context.Context, instructorID string) ([]Course, error) {
	return f.findAllFn(ctx, instructorID)
}
func (f *fakeRepo) CreateEnrollment(ctx context.Context, e *Enrollment) error {
	return f.createEnrollmentFn(ctx, e)
}
func (f *fakeRepo) IsEnrolled(ctx context.Context, courseID, studentID string) (bool, error) {
	return f.isEnrolledFn(ctx, courseID, studentID)
}

func newTestService(t *testing.T, repo Repository) (Service, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	svc := NewService(db, repo, zap.NewNop())
	return svc, mock, func() { db.Close() }
}

func validCreateRequest() CreateCourseRequest {
	return CreateCourseRequest{
		Name:      "Operating Systems",
		Code:      "CS301",
		Semester:  "2025-1",
		StartDate: "2025-03-03",
		EndDate:   "2025-06-20",
		Weekdays:  []string{"MON", "WED"},
		StartTime: "09:00",
		EndTime:   "10:30",
	}
}

// =========================================
// TEST: Create
// =========================================

func TestService_Create_Success(t *testing.T) {
	var created *Course
	repo := &fakeRepo{
		createFn: func(ctx context.Context, c *Course) error {
			created = c
			return nil
		},
	}
	svc, mock, cleanup := newTestService(t, repo)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectCommit()

	instructorID := uuid.NewString()
	resp, err := svc.Create(context.Background(), instructorID, validCreateRequest())
	require.NoError(t, err)

	assert.Equal(t, "CS301", resp.Code)
	assert.Equal(t, instructorID, resp.InstructorID)
	assert.Equal(t, []string{"MON", "WED"}, resp.Weekdays)
	assert.True(t, resp.IsActive)
	require.NotNil(t, created)
	assert.Equal(t, "MON,WED", created.Weekdays)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_Create_ValidationFailures(t *testing.T) {
	svc, _, cleanup := newTestService(t, &fakeRepo{})
	defer cleanup()

	cases := []struct {
		name    string
		mutate  func(r *CreateCourseRequest)
		wantErr error
	}{
		{"bad start date", func(r *CreateCourseRequest) { r.StartDate = "03-03-2025" }, courseerrors.ErrInvalidDateFormat},
		{"end before start", func(r *CreateCourseRequest) { r.EndDate = "2025-01-01" }, courseerrors.ErrInvalidDateRange},
		{"bad start time", func(r *CreateCourseRequest) { r.StartTime = "9am" }, courseerrors.ErrInvalidTimeFormat},
		{"end time not after start", func(r *CreateCourseRequest) { r.EndTime = "09:00" }, courseerrors.ErrInvalidTimeRange},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validCreateRequest()
			tc.mutate(&req)
			_, err := svc.Create(context.Background(), uuid.NewString(), req)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}

	_, err := svc.Create(context.Background(), "not-a-uuid", validCreateRequest())
	assert.ErrorIs(t, err, courseerrors.ErrInvalidInstructorID)
}

func TestService_Create_DuplicateCode(t *testing.T) {
	repo := &fakeRepo{
		createFn: func(ctx context.Context, c *Course) error {
			return &pgconn.PgError{Code: "23505", ConstraintName: "idx_courses_code"}
		},
	}
	svc, mock, cleanup := newTestService(t, repo)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := svc.Create(context.Background(), uuid.NewString(), validCreateRequest())
	assert.ErrorIs(t, err, courseerrors.ErrDuplicateCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// =========================================
// TEST: GetByID / GetAllByInstructor
// =========================================

func TestService_GetByID(t *testing.T) {
	id := uuid.New()
	repo := &fakeRepo{
		findByIDFn: func(ctx context.Context, got string) (*Course, error) {
			if got == id.String() {
				return &Course{
					ID:        id,
					Name:      "Operating Systems",
					Weekdays:  "MON,WED",
					StartDate: time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC),
					EndDate:   time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC),
				}, nil
			}
			return nil, gorm.ErrRecordNotFound
		},
	}
	svc, _, cleanup := newTestService(t, repo)
	defer cleanup()

	resp, err := svc.GetByID(context.Background(), id.String())
	require.NoError(t, err)
	assert.Equal(t, "Operating Systems", resp.Name)
	assert.Equal(t, "2025-03-03", resp.StartDate)

	_, err = svc.GetByID(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, courseerrors.ErrCourseNotFound)

	_, err = svc.GetByID(context.Background(), "nope")
	assert.ErrorIs(t, err, courseerrors.ErrInvalidCourseID)
}

func TestService_GetAllByInstructor(t *testing.T) {
	instructorID := uuid.New()
	repo := &fakeRepo{
		findAllFn: func(ctx context.Context, got string) ([]Course, error) {
			assert.Equal(t, instructorID.String(), got)
			return []Course{
				{ID: uuid.New(), Code: "CS301", Weekdays: "MON,WED"},
				{ID: uuid.New(), Code: "CS205", Weekdays: "FRI"},
			}, nil
		},
	}
	svc, _, cleanup := newTestService(t, repo)
	defer cleanup()

	rows, err := svc.GetAllByInstructor(context.Background(), instructorID.String())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "CS301", rows[0].Code)
	assert.Equal(t, []string{"FRI"}, rows[1].Weekdays)
}

// =========================================
// TEST: Enroll
// =========================================

func TestService_Enroll_Success(t *testing.T) {
	courseID := uuid.New()
	studentID := uuid.New()

	var created *Enrollment
	repo := &fakeRepo{
		findByIDFn: func(ctx context.Context, id string) (*Course, error) {
			return &Course{ID: courseID, IsActive: true, Weekdays: "MON"}, nil
		},
		createEnrollmentFn: func(ctx context.Context, e *Enrollment) error {
			created = e
			return nil
		},
	}
	svc, _, cleanup := newTestService(t, repo)
	defer cleanup()

	resp, err := svc.Enroll(context.Background(), courseID.String(), studentID.String())
	require.NoError(t, err)

	assert.Equal(t, courseID.String(), resp.CourseID)
	assert.Equal(t, studentID.String(), resp.StudentID)
	require.NotNil(t, created)
	assert.Equal(t, studentID, created.StudentID)
}

func TestService_Enroll_Guards(t *testing.T) {
	courseID := uuid.New()

	repo := &fakeRepo{
		findByIDFn: func(ctx context.Context, id string) (*Course, error) {
			if id == courseID.String() {
				return &Course{ID: courseID, IsActive: false, Weekdays: "MON"}, nil
			}
			return nil, gorm.ErrRecordNotFound
		},
	}
	svc, _, cleanup := newTestService(t, repo)
	defer cleanup()

	_, err := svc.Enroll(context.Background(), "bad", uuid.NewString())
	assert.ErrorIs(t, err, courseerrors.ErrInvalidCourseID)

	_, err = svc.Enroll(context.Background(), courseID.String(), "bad")
	assert.ErrorIs(t, err, courseerrors.ErrInvalidStudentID)

	_, err = svc.Enroll(context.Background(), uuid.NewString(), uuid.NewString())
	assert.ErrorIs(t, err, courseerrors.ErrCourseNotFound)

	_, err = svc.Enroll(context.Background(), courseID.String(), uuid.NewString())
	assert.ErrorIs(t, err, courseerrors.ErrCourseInactive)
}

func TestService_Enroll_DuplicateMapsToAlreadyEnrolled(t *testing.T) {
	courseID := uuid.New()
	repo := &fakeRepo{
		findByIDFn: func(ctx context.Context, id string) (*Course, error) {
			return &Course{ID: courseID, IsActive: true, Weekdays: "MON"}, nil
		},
		createEnrollmentFn: func(ctx context.Context, e *Enrollment) error {
			return &pgconn.PgError{Code: "23505", ConstraintName: "idx_enrollments_course_student"}
		},
	}
	svc, _, cleanup := newTestService(t, repo)
	defer cleanup()

	_, err := svc.Enroll(context.Background(), courseID.String(), uuid.NewString())
	assert.ErrorIs(t, err, courseerrors.ErrAlreadyEnrolled)
}
