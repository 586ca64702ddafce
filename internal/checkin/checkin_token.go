package checkin

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	checkinerrors "github.com/sengwoong/lecture-server/internal/checkin/errors"
)

// TokenTTL is the validity window of an issued token or code.
const TokenTTL = 10 * time.Minute

// TokenPayload is the signed content of a QR check-in token. The nonce
// makes regenerated tokens for the same session distinct.
type TokenPayload struct {
	CourseID   string
	Date       string
	ScheduleID *string
	Kind       string
	Nonce      string
	ValidUntil time.Time
}

// TokenManager signs and verifies QR check-in tokens. Expiry is carried
// as a custom valid_until claim and checked against an inclusive upper
// bound: a token redeemed at exactly valid_until is already expired.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	if ttl <= 0 {
		ttl = TokenTTL
	}
	return &TokenManager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (m *TokenManager) Issue(courseID, date string, scheduleID *string) (string, time.Time, error) {
	validUntil := m.now().Add(m.ttl)

	claims := jwt.MapClaims{
		"course_id":   courseID,
		"date":        date,
		"kind":        string(KindQR),
		"nonce":       uuid.New().String(),
		"valid_until": validUntil.Unix(),
	}
	if scheduleID != nil {
		claims["schedule_id"] = *scheduleID
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, validUntil, nil
}

func (m *TokenManager) Parse(raw string) (TokenPayload, error) {
	token, err := jwt.Parse(raw, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, checkinerrors.ErrTokenInvalid
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return TokenPayload{}, checkinerrors.ErrTokenInvalid
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return TokenPayload{}, checkinerrors.ErrTokenInvalid
	}

	payload := TokenPayload{}
	if payload.CourseID, ok = claims["course_id"].(string); !ok {
		return TokenPayload{}, checkinerrors.ErrTokenInvalid
	}
	if payload.Date, ok = claims["date"].(string); !ok {
		return TokenPayload{}, checkinerrors.ErrTokenInvalid
	}
	if payload.Kind, ok = claims["kind"].(string); !ok {
		return TokenPayload{}, checkinerrors.ErrTokenInvalid
	}
	payload.Nonce, _ = claims["nonce"].(string)
	if sid, ok := claims["schedule_id"].(string); ok {
		payload.ScheduleID = &sid
	}

	rawValidUntil, ok := claims["valid_until"].(float64)
	if !ok {
		return TokenPayload{}, checkinerrors.ErrTokenInvalid
	}
	payload.ValidUntil = time.Unix(int64(rawValidUntil), 0)

	if !m.now().Before(payload.ValidUntil) {
		return TokenPayload{}, checkinerrors.ErrTokenExpired
	}
	return payload, nil
}
