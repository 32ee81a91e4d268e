package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BetweenUsers selects both directions of a peer thread: rows sent by either
// participant to the other.
type BetweenUsers struct {
	UserA uuid.UUID
	UserB uuid.UUID
}

func (s BetweenUsers) Apply(db *gorm.DB) *gorm.DB {
	return db.Where(
		"(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
		s.UserA, s.UserB, s.UserB, s.UserA,
	)
}

// AcceptedConnectionsOf selects accepted connections where the user is either
// the requester or the receiver.
type AcceptedConnectionsOf struct {
	UserID uuid.UUID
}

func (s AcceptedConnectionsOf) Apply(db *gorm.DB) *gorm.DB {
	return db.
		Where("status = ?", "accepted").
		Where("requester_id = ? OR receiver_id = ?", s.UserID, s.UserID)
}
