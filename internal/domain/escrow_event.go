package domain

import "time"

type EscrowEventType string

const (
	EventCreated           EscrowEventType = "created"
	EventFunded            EscrowEventType = "funded"
	EventDeliveryConfirmed EscrowEventType = "delivery_confirmed"
	EventReleased          EscrowEventType = "released"
	EventRefundRequested   EscrowEventType = "refund_requested"
	EventRefunded          EscrowEventType = "refunded"
	EventDisputed          EscrowEventType = "disputed"
)

// EscrowEvent is one immutable entry of a contract's audit trail. Payload is
// the canonical document the Hash was computed over; PrevHash links it to the
// previous event (or to the contract's genesis hash for sequence 1).
type EscrowEvent struct {
	ID        string
	EscrowID  string
	Sequence  int64
	Type      EscrowEventType
	ActorID   string
	Detail    string
	Data      map[string]any
	PrevHash  string
	Hash      string
	Payload   string
	CreatedAt time.Time
}

// EventDraft is what the engine hands to the store; sequence, chaining and
// hashing happen inside the store transaction.
type EventDraft struct {
	Type    EscrowEventType
	ActorID string
	Detail  string
	Data    map[string]any
	At      time.Time
}

// VerificationReport is the outcome of recomputing a contract's hash chain.
type VerificationReport struct {
	EscrowID      string
	GenesisHash   string
	Events        int
	Valid         bool
	BrokenAt      int64
	Reason        string
	LastEventHash string
}
