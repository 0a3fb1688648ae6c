package model

import "time"

// AdminSession contains the data stored with an admin session token.
// IssuedAt is kept as epoch milliseconds; expiry is evaluated lazily
// against it on every validation rather than by a running timer.
type AdminSession struct {
	IssuedAt  int64     `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Elapsed returns the time passed since the session was issued.
func (s *AdminSession) Elapsed(now time.Time) time.Duration {
	return now.Sub(time.UnixMilli(s.IssuedAt))
}
