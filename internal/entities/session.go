package entities

import (
	"errors"
	"time"
)

var (
	ErrSessionNotFound    = errors.New("session not found")
	ErrSessionExpired     = errors.New("session expired")
	ErrCodeSpaceExhausted = errors.New("no free pairing codes left")
)

// Session is a time-bounded pairing context between one receiver and
// one or more senders.
type Session struct {
	// UUID. Also used as the notification topic
	ID string `json:"sessionId"`

	// Short human-enterable code, unique among live sessions
	Code      string       `json:"code"`
	CreatedAt time.Time    `json:"createdAt"`
	Files     []FileRecord `json:"files"`
}

// ExpiredAt reports whether the session is older than ttl at the moment now.
func (s *Session) ExpiredAt(now time.Time, ttl time.Duration) bool {
	return now.Sub(s.CreatedAt) > ttl
}

// Copy returns a deep copy that is safe to hand out of the store.
func (s *Session) Copy() *Session {
	cp := *s
	cp.Files = make([]FileRecord, len(s.Files))
	copy(cp.Files, s.Files)
	return &cp
}
