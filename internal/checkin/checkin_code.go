package checkin

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	checkinerrors "github.com/sengwoong/lecture-server/internal/checkin/errors"
)

const (
	codeKeyPrefix = "checkin:code:"
	codeLength    = 6
	codeAlphabet  = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
)

// CodePayload is what a short password code maps to in Redis. The whole
// class shares one code per session; redemption does not consume it.
type CodePayload struct {
	CourseID   string    `json:"course_id"`
	Date       string    `json:"date"`
	ScheduleID *string   `json:"schedule_id,omitempty"`
	ValidUntil time.Time `json:"valid_until"`
}

// CodeStore keeps password check-in codes in Redis. The Redis TTL only
// garbage-collects keys; the real expiry check is the valid_until stamp
// carried in the payload, with the same inclusive upper bound as QR
// tokens: a code redeemed at exactly valid_until is already expired.
type CodeStore struct {
	rdb *redis.Client
	ttl time.Duration
	now func() time.Time
}

func NewCodeStore(rdb *redis.Client, ttl time.Duration) *CodeStore {
	if ttl <= 0 {
		ttl = TokenTTL
	}
	return &CodeStore{rdb: rdb, ttl: ttl, now: time.Now}
}

// Put stores a fresh code for the payload. SetNX retries on the rare
// collision with a live code.
func (s *CodeStore) Put(ctx context.Context, payload CodePayload) (string, time.Time, error) {
	payload.ValidUntil = s.now().Add(s.ttl)
	body, err := json.Marshal(payload)
	if err != nil {
		return "", time.Time{}, err
	}

	for attempt := 0; attempt < 5; attempt++ {
		code, err := randomCode()
		if err != nil {
			return "", time.Time{}, err
		}
		ok, err := s.rdb.SetNX(ctx, codeKeyPrefix+code, body, s.ttl).Result()
		if err != nil {
			return "", time.Time{}, err
		}
		if ok {
			return code, payload.ValidUntil, nil
		}
	}
	return "", time.Time{}, errors.New("checkin: could not allocate a unique code")
}

func (s *CodeStore) Get(ctx context.Context, code string) (CodePayload, error) {
	raw, err := s.rdb.Get(ctx, codeKeyPrefix+code).Bytes()
	if errors.Is(err, redis.Nil) {
		return CodePayload{}, checkinerrors.ErrCodeInvalid
	}
	if err != nil {
		return CodePayload{}, err
	}
	var payload CodePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return CodePayload{}, checkinerrors.ErrCodeInvalid
	}
	if !s.now().Before(payload.ValidUntil) {
		return CodePayload{}, checkinerrors.ErrCodeExpired
	}
	return payload, nil
}

func randomCode() (string, error) {
	buf := make([]byte, codeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return string(buf), nil
}
