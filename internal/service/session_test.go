package service

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"produce-lookup-api/internal/cache"
	"produce-lookup-api/internal/model"
)

func newTestSessionService(ttl time.Duration) (*SessionService, cache.Cache) {
	c := cache.NewMemoryCache()
	return NewSessionService(c, "123456", ttl, zap.NewNop().Sugar()), c
}

func TestVerifyPasscode(t *testing.T) {
	s, _ := newTestSessionService(30 * time.Minute)

	assert.NoError(t, s.VerifyPasscode("123456"))
	assert.ErrorIs(t, s.VerifyPasscode("654321"), ErrInvalidPasscode)
	assert.ErrorIs(t, s.VerifyPasscode(""), ErrInvalidPasscode)
	assert.ErrorIs(t, s.VerifyPasscode("12345"), ErrInvalidPasscode)
	assert.ErrorIs(t, s.VerifyPasscode("1234567"), ErrInvalidPasscode)
}

func TestVerifyPasscode_FiltersNonDigits(t *testing.T) {
	s, _ := newTestSessionService(30 * time.Minute)

	// the form filter drops non-digit characters before comparison
	assert.NoError(t, s.VerifyPasscode("12-34-56"))
	assert.NoError(t, s.VerifyPasscode(" 123456 "))
	assert.ErrorIs(t, s.VerifyPasscode("abcdef"), ErrInvalidPasscode)
}

func TestLogin_IssuesToken(t *testing.T) {
	s, _ := newTestSessionService(30 * time.Minute)
	ctx := context.Background()

	token, session, err := s.Login(ctx, "123456")
	assert.NoError(t, err)
	assert.True(t, strings.HasPrefix(token, SessionTokenPrefix))
	// 32 random bytes hex encoded after the prefix
	assert.Len(t, token, len(SessionTokenPrefix)+64)
	assert.NotNil(t, session)
	assert.InDelta(t, time.Now().UnixMilli(), session.IssuedAt, 2000)
}

func TestLogin_WrongPasscode(t *testing.T) {
	s, _ := newTestSessionService(30 * time.Minute)

	token, session, err := s.Login(context.Background(), "000000")
	assert.ErrorIs(t, err, ErrInvalidPasscode)
	assert.Empty(t, token)
	assert.Nil(t, session)
}

func TestValidate_LiveSession(t *testing.T) {
	s, _ := newTestSessionService(30 * time.Minute)
	ctx := context.Background()

	token, issued, err := s.Login(ctx, "123456")
	assert.NoError(t, err)

	got, err := s.Validate(ctx, token)
	assert.NoError(t, err)
	assert.Equal(t, issued.IssuedAt, got.IssuedAt)
}

func TestValidate_UnknownToken(t *testing.T) {
	s, _ := newTestSessionService(30 * time.Minute)

	_, err := s.Validate(context.Background(), SessionTokenPrefix+"deadbeef")
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestValidate_MalformedToken(t *testing.T) {
	s, _ := newTestSessionService(30 * time.Minute)

	_, err := s.Validate(context.Background(), "")
	assert.ErrorIs(t, err, ErrNoSession)

	_, err = s.Validate(context.Background(), "not-a-session-token")
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestValidate_ExpiredByTimestamp(t *testing.T) {
	// a stale entry that survived in the cache must still fail the
	// lazy timestamp check
	c := cache.NewMemoryCache()
	s := NewSessionService(c, "123456", 30*time.Minute, zap.NewNop().Sugar())
	ctx := context.Background()

	issuedAt := time.Now().Add(-31 * time.Minute)
	stale := model.AdminSession{
		IssuedAt:  issuedAt.UnixMilli(),
		ExpiresAt: issuedAt.Add(30 * time.Minute),
	}
	data, err := json.Marshal(stale)
	assert.NoError(t, err)

	token := SessionTokenPrefix + "stale"
	assert.NoError(t, c.Set(ctx, "session:"+token, data, time.Hour))

	_, err = s.Validate(ctx, token)
	assert.ErrorIs(t, err, ErrSessionExpired)

	// detection clears the entry, so the next check reports no session
	_, err = s.Validate(ctx, token)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestRevoke(t *testing.T) {
	s, _ := newTestSessionService(30 * time.Minute)
	ctx := context.Background()

	token, _, err := s.Login(ctx, "123456")
	assert.NoError(t, err)

	assert.NoError(t, s.Revoke(ctx, token))

	_, err = s.Validate(ctx, token)
	assert.ErrorIs(t, err, ErrNoSession)
}
