package course_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/sengwoong/lecture-server/internal/course"
	courseerrors "github.com/sengwoong/lecture-server/internal/course/errors"
)

type fakeService struct {
	createFn func(ctx context.Context, instructorID string, req course.CreateCourseRequest) (course.CourseResponse, error)
	getFn    func(ctx context.Context, id string) (course.CourseResponse, error)
	getAllFn func(ctx context.Context, instructorID string) ([]course.CourseResponse, error)
	enrollFn func(ctx context.Context, courseID, studentID string) (course.EnrollmentResponse, error)
}

func (f *fakeService) Create(ctx context.Context, instructorID string, req course.CreateCourseRequest) (course.CourseResponse, error) {
	return f.createFn(ctx, instructorID, req)
}
func (f *fakeService) GetByID(ctx context.Context, id string) (course.CourseResponse, error) {
	return f.getFn(ctx, id)
}
func (f *fakeService) GetAllByInstructor(ctx context.Context, instructorID string) ([]course.CourseResponse, error) {
	return f.getAllFn(ctx, instructorID)
}
func (f *fakeService) Enroll(ctx context.Context, courseID, studentID string) (course.EnrollmentResponse, error) {
	return f.enrollFn(ctx, courseID, studentID)
}

func TestHandler_Create(t *testing.T) {
	gin.SetMode(gin.TestMode)
	instructorID := uuid.NewString()

	svc := &fakeService{
		createFn: func(ctx context.Context, gotInstructor string, req course.CreateCourseRequest) (course.CourseResponse, error) {
			assert.Equal(t, instructorID, gotInstructor)
			assert.Equal(t, []string{"MON", "WED"}, req.Weekdays)
			return course.CourseResponse{ID: uuid.NewString(), Code: req.Code, IsActive: true}, nil
		},
	}
	h := course.NewHandler(svc)

	body := `{"name":"Operating Systems","code":"CS301","semester":"2025-1",` +
		`"start_date":"2025-03-03","end_date":"2025-06-20","weekdays":["MON","WED"],` +
		`"start_time":"09:00","end_time":"10:30"}`
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Set("user_id", instructorID)
	c.Request = httptest.NewRequest(http.MethodPost, "/courses", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	h.Create(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "\"code\":\"CS301\"")
}

func TestHandler_Create_BadWeekdayRejected(t *testing.T) {
	gin.SetMode(gin.TestMode)

	h := course.NewHandler(&fakeService{})

	body := `{"name":"x","code":"y","semester":"z","start_date":"2025-03-03",` +
		`"end_date":"2025-06-20","weekdays":["FUNDAY"],"start_time":"09:00","end_time":"10:30"}`
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/courses", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	h.Create(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "\"ok\":false")
}

func TestHandler_GetById_NotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)

	svc := &fakeService{
		getFn: func(ctx context.Context, id string) (course.CourseResponse, error) {
			return course.CourseResponse{}, courseerrors.ErrCourseNotFound
		},
	}
	h := course.NewHandler(svc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "id", Value: uuid.NewString()}}
	c.Request = httptest.NewRequest(http.MethodGet, "/courses/x", nil)
	h.GetById(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandler_Enroll(t *testing.T) {
	gin.SetMode(gin.TestMode)
	courseID := uuid.NewString()
	studentID := uuid.NewString()

	svc := &fakeService{
		enrollFn: func(ctx context.Context, gotCourse, gotStudent string) (course.EnrollmentResponse, error) {
			assert.Equal(t, courseID, gotCourse)
			assert.Equal(t, studentID, gotStudent)
			return course.EnrollmentResponse{ID: uuid.NewString(), CourseID: gotCourse, StudentID: gotStudent}, nil
		},
	}
	h := course.NewHandler(svc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Set("user_id", studentID)
	c.Params = gin.Params{{Key: "id", Value: courseID}}
	c.Request = httptest.NewRequest(http.MethodPost, "/courses/"+courseID+"/enrollments", nil)
	h.Enroll(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "\"student_id\":\""+studentID+"\"")
}

func TestHandler_Enroll_Duplicate(t *testing.T) {
	gin.SetMode(gin.TestMode)

	svc := &fakeService{
		enrollFn: func(ctx context.Context, courseID, studentID string) (course.EnrollmentResponse, error) {
			return course.EnrollmentResponse{}, courseerrors.ErrAlreadyEnrolled
		},
	}
	h := course.NewHandler(svc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "id", Value: uuid.NewString()}}
	c.Request = httptest.NewRequest(http.MethodPost, "/courses/x/enrollments", nil)
	h.Enroll(c)

	assert.Equal(t, http.StatusConflict, w.Code)
}
