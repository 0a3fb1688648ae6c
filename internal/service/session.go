package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"produce-lookup-api/internal/cache"
	"produce-lookup-api/internal/model"

	"go.uber.org/zap"
)

const (
	// SessionTokenPrefix is the prefix for all admin session tokens
	SessionTokenPrefix = "pss_"

	// sessionKeyPrefix is the cache key prefix for sessions. Kept apart
	// from the produce query keys so cache invalidation after a mutation
	// never logs an admin out.
	sessionKeyPrefix = "session:"

	// passcodeLength is the required number of passcode digits.
	passcodeLength = 6
)

var (
	// ErrInvalidPasscode indicates the candidate did not match.
	// The message is deliberately generic: it must not reveal which
	// factor of the admin gate failed.
	ErrInvalidPasscode = errors.New("invalid passcode")

	// ErrNoSession indicates no session exists for the token.
	ErrNoSession = errors.New("no active session")

	// ErrSessionExpired indicates the session outlived its window.
	ErrSessionExpired = errors.New("session expired")
)

// SessionService owns the admin gate: it checks the shared passcode and
// maintains time-boxed session tokens. Sessions live in the cache with a
// TTL, but expiry is also checked lazily against the issue timestamp on
// every validation, so a memory cache that misses a cleanup tick can
// never report a stale session as authenticated.
//
// There is no rate limiting or lockout; the gate is a deterrent, not a
// security boundary.
type SessionService struct {
	cache    cache.Cache
	passcode string
	ttl      time.Duration
	logger   *zap.SugaredLogger
}

// NewSessionService creates a new session service.
func NewSessionService(c cache.Cache, passcode string, ttl time.Duration, logger *zap.SugaredLogger) *SessionService {
	return &SessionService{
		cache:    c,
		passcode: passcode,
		ttl:      ttl,
		logger:   logger,
	}
}

// stripNonDigits drops every non-digit rune, mirroring the input filter
// on the passcode form.
func stripNonDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// VerifyPasscode checks a candidate against the configured passcode.
// Non-digit characters are filtered first; anything other than exactly
// six digits matching the constant fails.
func (s *SessionService) VerifyPasscode(candidate string) error {
	digits := stripNonDigits(candidate)
	if len(digits) != passcodeLength {
		return ErrInvalidPasscode
	}
	if digits != s.passcode {
		return ErrInvalidPasscode
	}
	return nil
}

// Login verifies the passcode and, on success, issues a session token.
func (s *SessionService) Login(ctx context.Context, candidate string) (string, *model.AdminSession, error) {
	if err := s.VerifyPasscode(candidate); err != nil {
		return "", nil, err
	}

	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", nil, fmt.Errorf("failed to generate session token: %w", err)
	}
	token := SessionTokenPrefix + hex.EncodeToString(tokenBytes)

	now := time.Now()
	session := &model.AdminSession{
		IssuedAt:  now.UnixMilli(),
		ExpiresAt: now.Add(s.ttl),
	}

	data, err := json.Marshal(session)
	if err != nil {
		return "", nil, fmt.Errorf("failed to serialize session: %w", err)
	}

	if err := s.cache.Set(ctx, sessionKeyPrefix+token, data, s.ttl); err != nil {
		return "", nil, fmt.Errorf("failed to store session: %w", err)
	}

	s.logger.Infow("admin session issued", "expires_at", session.ExpiresAt)
	return token, session, nil
}

// Validate checks whether a token carries a live session. Expired
// sessions are cleared from storage on detection and reported as such.
func (s *SessionService) Validate(ctx context.Context, token string) (*model.AdminSession, error) {
	if token == "" || !strings.HasPrefix(token, SessionTokenPrefix) {
		return nil, ErrNoSession
	}

	key := sessionKeyPrefix + token
	data, err := s.cache.Get(ctx, key)
	if err == cache.ErrCacheMiss {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var session model.AdminSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to parse session: %w", err)
	}

	if session.Elapsed(time.Now()) >= s.ttl {
		if err := s.cache.Delete(ctx, key); err != nil {
			s.logger.Warnw("failed to clear expired session", "error", err)
		}
		return nil, ErrSessionExpired
	}

	return &session, nil
}

// Revoke deletes a session, logging the admin out.
func (s *SessionService) Revoke(ctx context.Context, token string) error {
	return s.cache.Delete(ctx, sessionKeyPrefix+token)
}

// TTL returns the configured session lifetime.
func (s *SessionService) TTL() time.Duration {
	return s.ttl
}
