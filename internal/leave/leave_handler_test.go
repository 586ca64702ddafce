package leave_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/sengwoong/lecture-server/internal/leave"
	leaveerrors "github.com/sengwoong/lecture-server/internal/leave/errors"
)

type fakeService struct {
	fileFn     func(ctx context.Context, studentID string, req leave.FileLeaveRequest) (leave.LeaveResponse, error)
	editFn     func(ctx context.Context, actorID, id string, req leave.EditLeaveRequest) (leave.LeaveResponse, error)
	decideFn   func(ctx context.Context, reviewerID, id string, req leave.DecideLeaveRequest) (leave.LeaveResponse, error)
	withdrawFn func(ctx context.Context, actorID, id string) error
	getByIDFn  func(ctx context.Context, id string) (leave.LeaveResponse, error)
	getAllFn   func(ctx context.Context, studentID string) ([]leave.LeaveResponse, error)
}

func (f *fakeService) File(ctx context.Context, studentID string, req leave.FileLeaveRequest) (leave.LeaveResponse, error) {
	return f.fileFn(ctx, studentID, req)
}
func (f *fakeService) Edit(ctx context.Context, actorID, id string, req leave.EditLeaveRequest) (leave.LeaveResponse, error) {
	return f.editFn(ctx, actorID, id, req)
}
func (f *fakeService) Decide(ctx context.Context, reviewerID, id string, req leave.DecideLeaveRequest) (leave.LeaveResponse, error) {
	return f.decideFn(ctx, reviewerID, id, req)
}
func (f *fakeService) Withdraw(ctx context.Context, actorID, id string) error {
	return f.withdrawFn(ctx, actorID, id)
}
func (f *fakeService) GetByID(ctx context.Context, id string) (leave.LeaveResponse, error) {
	return f.getByIDFn(ctx, id)
}
func (f *fakeService) GetAllByStudent(ctx context.Context, studentID string) ([]leave.LeaveResponse, error) {
	return f.getAllFn(ctx, studentID)
}

func TestHandler_File(t *testing.T) {
	gin.SetMode(gin.TestMode)
	studentID := uuid.NewString()
	recordID := uuid.NewString()

	svc := &fakeService{
		fileFn: func(ctx context.Context, gotStudent string, req leave.FileLeaveRequest) (leave.LeaveResponse, error) {
			assert.Equal(t, studentID, gotStudent)
			assert.Equal(t, recordID, req.RecordID)
			assert.Len(t, req.Evidence, 1)
			return leave.LeaveResponse{ID: uuid.NewString(), RecordID: recordID, Status: "PENDING"}, nil
		},
	}
	h := leave.NewHandler(svc)

	body := `{"record_id":"` + recordID + `","start_date":"2025-03-10","end_date":"2025-03-12",` +
		`"reason":"hospitalized","evidence":[{"file_name":"note.pdf","file_handle":"h-1","file_size":1024,"mime_type":"application/pdf"}]}`
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Set("user_id", studentID)
	c.Request = httptest.NewRequest(http.MethodPost, "/leave-requests", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	h.File(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "\"status\":\"PENDING\"")
}

func TestHandler_File_ValidationError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	h := leave.NewHandler(&fakeService{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/leave-requests", strings.NewReader(`{"record_id":"nope"}`))
	c.Request.Header.Set("Content-Type", "application/json")
	h.File(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "\"ok\":false")
}

func TestHandler_Decide(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reviewerID := uuid.NewString()
	leaveID := uuid.NewString()

	svc := &fakeService{
		decideFn: func(ctx context.Context, gotReviewer, id string, req leave.DecideLeaveRequest) (leave.LeaveResponse, error) {
			assert.Equal(t, reviewerID, gotReviewer)
			assert.Equal(t, leaveID, id)
			assert.Equal(t, "APPROVED", req.Decision)
			return leave.LeaveResponse{ID: id, Status: "APPROVED", ReviewerID: &gotReviewer}, nil
		},
	}
	h := leave.NewHandler(svc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Set("user_id", reviewerID)
	c.Params = gin.Params{{Key: "id", Value: leaveID}}
	c.Request = httptest.NewRequest(http.MethodPost, "/leave-requests/"+leaveID+"/decision",
		strings.NewReader(`{"decision":"APPROVED","comment":"ok"}`))
	c.Request.Header.Set("Content-Type", "application/json")
	h.Decide(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "\"status\":\"APPROVED\"")
}

func TestHandler_Decide_AlreadyDecided(t *testing.T) {
	gin.SetMode(gin.TestMode)

	svc := &fakeService{
		decideFn: func(ctx context.Context, reviewerID, id string, req leave.DecideLeaveRequest) (leave.LeaveResponse, error) {
			return leave.LeaveResponse{}, leaveerrors.ErrAlreadyDecided
		},
	}
	h := leave.NewHandler(svc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "id", Value: uuid.NewString()}}
	c.Request = httptest.NewRequest(http.MethodPost, "/leave-requests/x/decision",
		strings.NewReader(`{"decision":"REJECTED"}`))
	c.Request.Header.Set("Content-Type", "application/json")
	h.Decide(c)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestHandler_Withdraw(t *testing.T) {
	gin.SetMode(gin.TestMode)
	leaveID := uuid.NewString()

	svc := &fakeService{
		withdrawFn: func(ctx context.Context, actorID, id string) error {
			assert.Equal(t, leaveID, id)
			return nil
		},
	}
	h := leave.NewHandler(svc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Set("user_id", uuid.NewString())
	c.Params = gin.Params{{Key: "id", Value: leaveID}}
	c.Request = httptest.NewRequest(http.MethodDelete, "/leave-requests/"+leaveID, nil)
	h.Withdraw(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "\"deleted\":true")
}

func TestHandler_Withdraw_NotOwner(t *testing.T) {
	gin.SetMode(gin.TestMode)

	svc := &fakeService{
		withdrawFn: func(ctx context.Context, actorID, id string) error {
			return leaveerrors.ErrNotRecordOwner
		},
	}
	h := leave.NewHandler(svc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "id", Value: uuid.NewString()}}
	c.Request = httptest.NewRequest(http.MethodDelete, "/leave-requests/x", nil)
	h.Withdraw(c)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestHandler_GetMine(t *testing.T) {
	gin.SetMode(gin.TestMode)
	studentID := uuid.NewString()

	svc := &fakeService{
		getAllFn: func(ctx context.Context, gotStudent string) ([]leave.LeaveResponse, error) {
			assert.Equal(t, studentID, gotStudent)
			return []leave.LeaveResponse{
				{ID: uuid.NewString(), Status: "PENDING"},
				{ID: uuid.NewString(), Status: "APPROVED"},
			}, nil
		},
	}
	h := leave.NewHandler(svc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Set("user_id", studentID)
	c.Request = httptest.NewRequest(http.MethodGet, "/leave-requests", nil)
	h.GetMine(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "\"status\":\"APPROVED\"")
}
