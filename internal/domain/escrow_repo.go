package domain

import (
	"context"
	"time"
)

// TransitionFunc mutates the locked copy of a contract and returns the events
// documenting the change. Returning an error aborts the transaction.
type TransitionFunc func(escrow *Escrow) ([]EventDraft, error)

// EscrowRepository owns both the contract rows and their event log; every
// mutation writes both inside one transaction.
type EscrowRepository interface {
	Create(ctx context.Context, escrow *Escrow, events []EventDraft) (*Escrow, []*EscrowEvent, error)
	// Transition fails with ErrConflict when the stored status or version no
	// longer match the expected ones.
	Transition(ctx context.Context, escrowID string, expected EscrowStatus, expectedVersion int64, fn TransitionFunc) (*Escrow, []*EscrowEvent, error)
	GetByID(ctx context.Context, escrowID string) (*Escrow, error)
	ListByUser(ctx context.Context, userID string) ([]*Escrow, error)
	ListEvents(ctx context.Context, escrowID string) ([]*EscrowEvent, error)
	FindAutoReleaseCandidates(ctx context.Context, now time.Time, limit int) ([]*Escrow, error)
}
