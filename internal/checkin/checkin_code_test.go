package checkin

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"

	checkinerrors "github.com/sengwoong/lecture-server/internal/checkin/errors"
)

func TestCodeStore_PutStampsValidUntil(t *testing.T) {
	issued := time.Date(2025, 3, 5, 10, 0, 0, 0, time.UTC)

	rdb, redisMock := redismock.NewClientMock()
	redisMock.Regexp().ExpectSetNX("checkin:code:[A-Z2-9]{6}", `.*`, TokenTTL).SetVal(true)

	s := NewCodeStore(rdb, TokenTTL)
	s.now = func() time.Time { return issued }

	code, validUntil, err := s.Put(context.Background(), CodePayload{CourseID: "course-1", Date: "2025-03-05"})
	assert.NoError(t, err)
	assert.Len(t, code, codeLength)
	assert.Equal(t, issued.Add(TokenTTL), validUntil)
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestCodeStore_ExpiryBoundaryIsInclusive(t *testing.T) {
	issued := time.Date(2025, 3, 5, 10, 0, 0, 0, time.UTC)
	validUntil := issued.Add(TokenTTL)
	body, err := json.Marshal(CodePayload{CourseID: "course-1", Date: "2025-03-05", ValidUntil: validUntil})
	assert.NoError(t, err)

	rdb, redisMock := redismock.NewClientMock()
	redisMock.ExpectGet("checkin:code:ABC234").SetVal(string(body))
	redisMock.ExpectGet("checkin:code:ABC234").SetVal(string(body))
	redisMock.ExpectGet("checkin:code:ABC234").SetVal(string(body))

	s := NewCodeStore(rdb, TokenTTL)

	// one second before the bound still redeems
	s.now = func() time.Time { return validUntil.Add(-time.Second) }
	payload, err := s.Get(context.Background(), "ABC234")
	assert.NoError(t, err)
	assert.Equal(t, "course-1", payload.CourseID)

	// exactly at valid_until is already expired, even while the Redis
	// key is still alive
	s.now = func() time.Time { return validUntil }
	_, err = s.Get(context.Background(), "ABC234")
	assert.ErrorIs(t, err, checkinerrors.ErrCodeExpired)

	s.now = func() time.Time { return validUntil.Add(time.Second) }
	_, err = s.Get(context.Background(), "ABC234")
	assert.ErrorIs(t, err, checkinerrors.ErrCodeExpired)

	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestCodeStore_UnknownCode(t *testing.T) {
	rdb, redisMock := redismock.NewClientMock()
	redisMock.ExpectGet("checkin:code:NOPE22").RedisNil()

	s := NewCodeStore(rdb, TokenTTL)
	_, err := s.Get(context.Background(), "NOPE22")
	assert.ErrorIs(t, err, checkinerrors.ErrCodeInvalid)
	assert.NoError(t, redisMock.ExpectationsWereMet())
}
