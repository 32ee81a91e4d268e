package command

import (
	"time"

	"unimind-be/pkg/assistant"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// Status is the lifecycle of a pending command. Terminal statuses always
// clear the pending slot so the session can accept a new command.
type Status string

const (
	StatusNone            Status = "none"
	StatusAwaitingConsent Status = "awaiting-consent"
	StatusExecuting       Status = "executing"
	StatusResolved        Status = "resolved"
	StatusFailed          Status = "failed"
)

// SessionRef identifies the conversation a command belongs to. Always passed
// down explicitly.
type SessionRef struct {
	SessionID uuid.UUID
	UserID    uuid.UUID
}

// Pending is the single outstanding command of one session.
type Pending struct {
	Session    SessionRef
	Kind       assistant.CommandKind
	Payload    *assistant.EventDetails
	Status     Status
	ReceivedAt time.Time
}

// PendingStore holds at most one pending command per session. Entries expire
// so an abandoned consent prompt cannot block a session forever.
type PendingStore struct {
	cache *cache.Cache
}

func NewPendingStore() *PendingStore {
	// A dismissed browser tab leaves the entry behind; the TTL reclaims it.
	c := cache.New(15*time.Minute, 5*time.Minute)
	return &PendingStore{cache: c}
}

func (s *PendingStore) Get(sessionId uuid.UUID) (*Pending, bool) {
	if x, found := s.cache.Get(sessionId.String()); found {
		return x.(*Pending), true
	}
	return nil, false
}

func (s *PendingStore) Put(p *Pending) {
	s.cache.Set(p.Session.SessionID.String(), p, cache.DefaultExpiration)
}

func (s *PendingStore) Clear(sessionId uuid.UUID) {
	s.cache.Delete(sessionId.String())
}
