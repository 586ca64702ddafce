package checkin

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	checkinerrors "github.com/sengwoong/lecture-server/internal/checkin/errors"
)

func TestTokenManager_IssueAndParse(t *testing.T) {
	m := NewTokenManager("test-secret", TokenTTL)

	sid := "3f1da3a4-98e9-4f42-8a17-2f1d0a8f9c55"
	token, validUntil, err := m.Issue("course-1", "2025-03-05", &sid)
	assert.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(TokenTTL), validUntil, 2*time.Second)

	payload, err := m.Parse(token)
	assert.NoError(t, err)
	assert.Equal(t, "course-1", payload.CourseID)
	assert.Equal(t, "2025-03-05", payload.Date)
	assert.Equal(t, string(KindQR), payload.Kind)
	assert.NotEmpty(t, payload.Nonce)
	assert.NotNil(t, payload.ScheduleID)
	assert.Equal(t, sid, *payload.ScheduleID)
}

func TestTokenManager_NonceMakesTokensDistinct(t *testing.T) {
	m := NewTokenManager("test-secret", TokenTTL)

	a, _, err := m.Issue("course-1", "2025-03-05", nil)
	assert.NoError(t, err)
	b, _, err := m.Issue("course-1", "2025-03-05", nil)
	assert.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestTokenManager_ExpiryBoundaryIsInclusive(t *testing.T) {
	issued := time.Date(2025, 3, 5, 10, 0, 0, 0, time.UTC)
	m := NewTokenManager("test-secret", TokenTTL)
	m.now = func() time.Time { return issued }

	token, validUntil, err := m.Issue("course-1", "2025-03-05", nil)
	assert.NoError(t, err)
	assert.Equal(t, issued.Add(TokenTTL), validUntil)

	// one second before the bound still redeems
	m.now = func() time.Time { return validUntil.Add(-time.Second) }
	_, err = m.Parse(token)
	assert.NoError(t, err)

	// exactly at valid_until is already expired
	m.now = func() time.Time { return validUntil }
	_, err = m.Parse(token)
	assert.ErrorIs(t, err, checkinerrors.ErrTokenExpired)

	m.now = func() time.Time { return validUntil.Add(time.Second) }
	_, err = m.Parse(token)
	assert.ErrorIs(t, err, checkinerrors.ErrTokenExpired)
}

func TestTokenManager_RejectsForeignSignature(t *testing.T) {
	issuer := NewTokenManager("secret-a", TokenTTL)
	verifier := NewTokenManager("secret-b", TokenTTL)

	token, _, err := issuer.Issue("course-1", "2025-03-05", nil)
	assert.NoError(t, err)

	_, err = verifier.Parse(token)
	assert.ErrorIs(t, err, checkinerrors.ErrTokenInvalid)

	_, err = verifier.Parse("not-a-jwt")
	assert.ErrorIs(t, err, checkinerrors.ErrTokenInvalid)
}
