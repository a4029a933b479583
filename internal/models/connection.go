package models

import (
	"time"

	"gorm.io/gorm"
)

// ConnectionStatus represents the state of a connection request.
type ConnectionStatus string

const (
	// ConnectionStatusPending indicates the receiver has not responded yet.
	ConnectionStatusPending ConnectionStatus = "pending"
	// ConnectionStatusAccepted indicates both users are connected.
	ConnectionStatusAccepted ConnectionStatus = "accepted"
	// ConnectionStatusIgnored indicates the receiver declined. Terminal.
	ConnectionStatusIgnored ConnectionStatus = "ignored"
)

// UserPair is the canonical, order-independent key for two users.
type UserPair struct {
	Low  uint
	High uint
}

// NewUserPair orders a and b so that {a,b} and {b,a} produce the same pair.
func NewUserPair(a, b uint) UserPair {
	if a > b {
		a, b = b, a
	}
	return UserPair{Low: a, High: b}
}

// Other returns the member of the pair that is not userID.
func (p UserPair) Other(userID uint) uint {
	if p.Low == userID {
		return p.High
	}
	return p.Low
}

// Connection is a directed connection request between two users.
// UserLowID/UserHighID hold the canonical pair and carry the unique
// constraint, so at most one row exists per pair regardless of direction.
type Connection struct {
	ID          uint             `gorm:"primaryKey" json:"id"`
	RequesterID uint             `gorm:"not null;index" json:"requester_id"`
	ReceiverID  uint             `gorm:"not null;index:idx_connections_receiver_status" json:"receiver_id"`
	UserLowID   uint             `gorm:"not null;uniqueIndex:idx_connections_pair" json:"-"`
	UserHighID  uint             `gorm:"not null;uniqueIndex:idx_connections_pair" json:"-"`
	Status      ConnectionStatus `gorm:"type:varchar(20);not null;default:'pending';index:idx_connections_receiver_status" json:"status"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`

	Requester User `gorm:"foreignKey:RequesterID" json:"requester,omitempty"`
	Receiver  User `gorm:"foreignKey:ReceiverID" json:"receiver,omitempty"`
}

// TableName specifies the table name for GORM
func (Connection) TableName() string {
	return "connections"
}

// Pair returns the canonical pair for this connection.
func (c *Connection) Pair() UserPair {
	return NewUserPair(c.RequesterID, c.ReceiverID)
}

// BeforeCreate fills the canonical pair columns from the direction.
func (c *Connection) BeforeCreate(_ *gorm.DB) error {
	if c.RequesterID == c.ReceiverID {
		return NewSelfRequestError()
	}
	pair := c.Pair()
	c.UserLowID, c.UserHighID = pair.Low, pair.High
	return nil
}

// PendingRequest is an inbound pending request resolved to the requester's public fields.
type PendingRequest struct {
	RequesterID         uint      `json:"requester_id"`
	RequesterUsername   string    `json:"requester_username"`
	RequesterProfession string    `json:"requester_profession"`
	RequestedAt         time.Time `json:"requested_at"`
}

// SentRequest is an outbound pending request.
type SentRequest struct {
	ReceiverID       uint      `json:"receiver_id"`
	ReceiverUsername string    `json:"receiver_username"`
	RequestedAt      time.Time `json:"requested_at"`
}

// Relationship values reported by the connection status lookup.
const (
	RelationshipNone            = "none"
	RelationshipPendingSent     = "pending_sent"
	RelationshipPendingReceived = "pending_received"
	RelationshipConnected       = "connected"
	RelationshipIgnored         = "ignored"
)
