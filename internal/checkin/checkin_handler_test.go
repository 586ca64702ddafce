package checkin_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/sengwoong/lecture-server/internal/checkin"
	checkinerrors "github.com/sengwoong/lecture-server/internal/checkin/errors"
)

type fakeService struct {
	issueFn  func(ctx context.Context, actorID, courseID string, req checkin.IssueRequest) (checkin.IssueResponse, error)
	redeemFn func(ctx context.Context, studentID string, req checkin.RedeemRequest) (checkin.RedeemResponse, error)
}

func (f *fakeService) Issue(ctx context.Context, actorID, courseID string, req checkin.IssueRequest) (checkin.IssueResponse, error) {
	return f.issueFn(ctx, actorID, courseID, req)
}
func (f *fakeService) Redeem(ctx context.Context, studentID string, req checkin.RedeemRequest) (checkin.RedeemResponse, error) {
	return f.redeemFn(ctx, studentID, req)
}

func TestHandler_Issue(t *testing.T) {
	gin.SetMode(gin.TestMode)
	courseID := uuid.NewString()
	actorID := uuid.NewString()

	svc := &fakeService{
		issueFn: func(ctx context.Context, gotActor, gotCourse string, req checkin.IssueRequest) (checkin.IssueResponse, error) {
			assert.Equal(t, actorID, gotActor)
			assert.Equal(t, courseID, gotCourse)
			assert.Equal(t, string(checkin.KindQR), req.Kind)
			return checkin.IssueResponse{
				CourseID:   gotCourse,
				Date:       req.Date,
				Kind:       req.Kind,
				Token:      "signed-token",
				ValidUntil: time.Now().Add(checkin.TokenTTL).UTC().Format(time.RFC3339),
			}, nil
		},
	}
	h := checkin.NewHandler(svc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Set("user_id", actorID)
	c.Params = gin.Params{{Key: "id", Value: courseID}}
	c.Request = httptest.NewRequest(http.MethodPost, "/courses/"+courseID+"/checkin-tokens",
		strings.NewReader(`{"date":"2025-03-05","kind":"QR"}`))
	c.Request.Header.Set("Content-Type", "application/json")
	h.Issue(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "\"token\":\"signed-token\"")
}

func TestHandler_Issue_UnknownKindRejected(t *testing.T) {
	gin.SetMode(gin.TestMode)

	h := checkin.NewHandler(&fakeService{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/courses/x/checkin-tokens",
		strings.NewReader(`{"date":"2025-03-05","kind":"NFC"}`))
	c.Request.Header.Set("Content-Type", "application/json")
	h.Issue(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "\"ok\":false")
}

func TestHandler_Redeem(t *testing.T) {
	gin.SetMode(gin.TestMode)
	studentID := uuid.NewString()

	svc := &fakeService{
		redeemFn: func(ctx context.Context, gotStudent string, req checkin.RedeemRequest) (checkin.RedeemResponse, error) {
			assert.Equal(t, studentID, gotStudent)
			assert.Equal(t, "signed-token", req.Token)
			return checkin.RedeemResponse{
				RecordID:  uuid.NewString(),
				StudentID: gotStudent,
				Status:    "PRESENT",
				Method:    "QR",
			}, nil
		},
	}
	h := checkin.NewHandler(svc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Set("user_id", studentID)
	c.Request = httptest.NewRequest(http.MethodPost, "/checkins",
		strings.NewReader(`{"token":"signed-token"}`))
	c.Request.Header.Set("Content-Type", "application/json")
	h.Redeem(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "\"status\":\"PRESENT\"")
}

func TestHandler_Redeem_ExpiredToken(t *testing.T) {
	gin.SetMode(gin.TestMode)

	svc := &fakeService{
		redeemFn: func(ctx context.Context, studentID string, req checkin.RedeemRequest) (checkin.RedeemResponse, error) {
			return checkin.RedeemResponse{}, checkinerrors.ErrTokenExpired
		},
	}
	h := checkin.NewHandler(svc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/checkins",
		strings.NewReader(`{"token":"stale"}`))
	c.Request.Header.Set("Content-Type", "application/json")
	h.Redeem(c)

	assert.Equal(t, http.StatusGone, w.Code)
}

func TestHandler_Redeem_AlreadyCheckedIn(t *testing.T) {
	gin.SetMode(gin.TestMode)

	svc := &fakeService{
		redeemFn: func(ctx context.Context, studentID string, req checkin.RedeemRequest) (checkin.RedeemResponse, error) {
			return checkin.RedeemResponse{}, checkinerrors.ErrAlreadyCheckedIn
		},
	}
	h := checkin.NewHandler(svc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/checkins",
		strings.NewReader(`{"code":"ABC234"}`))
	c.Request.Header.Set("Content-Type", "application/json")
	h.Redeem(c)

	assert.Equal(t, http.StatusConflict, w.Code)
}
