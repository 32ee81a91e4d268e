package entity

import (
	"time"

	"github.com/google/uuid"
)

// DeliveryState tracks the optimistic-write lifecycle of a direct message in
// the local projection. Persisted rows are always Confirmed.
type DeliveryState string

const (
	DeliveryPending   DeliveryState = "pending"
	DeliveryConfirmed DeliveryState = "confirmed"
	DeliveryFailed    DeliveryState = "failed"
)

type DirectMessage struct {
	Id         uuid.UUID
	SenderId   uuid.UUID
	ReceiverId uuid.UUID
	Content    string
	Delivery   DeliveryState
	CreatedAt  time.Time
}

type Connection struct {
	Id          uuid.UUID
	RequesterId uuid.UUID
	ReceiverId  uuid.UUID
	Status      string
}

const ConnectionStatusAccepted = "accepted"

// Peer returns the other participant of the connection.
func (c Connection) Peer(me uuid.UUID) uuid.UUID {
	if c.RequesterId == me {
		return c.ReceiverId
	}
	return c.RequesterId
}
