package domain

import (
	"fmt"
	"time"
)

type EscrowStatus string

const (
	EscrowCreated  EscrowStatus = "created"
	EscrowFunded   EscrowStatus = "funded"
	EscrowReleased EscrowStatus = "released"
	EscrowRefunded EscrowStatus = "refunded"
	EscrowDisputed EscrowStatus = "disputed"
)

// ParseEscrowStatus rejects anything outside the closed status set.
func ParseEscrowStatus(s string) (EscrowStatus, error) {
	switch st := EscrowStatus(s); st {
	case EscrowCreated, EscrowFunded, EscrowReleased, EscrowRefunded, EscrowDisputed:
		return st, nil
	default:
		return "", fmt.Errorf("%w: unknown escrow status %q", ErrInvalidArgument, s)
	}
}

// Terminal reports whether no engine transition leaves the status.
func (s EscrowStatus) Terminal() bool {
	switch s {
	case EscrowReleased, EscrowRefunded:
		return true
	case EscrowCreated, EscrowFunded, EscrowDisputed:
		return false
	default:
		return false
	}
}

// CanTransitionTo encodes the lifecycle graph. Self-loops (delivery
// confirmation) are not transitions.
func (s EscrowStatus) CanTransitionTo(next EscrowStatus) bool {
	switch s {
	case EscrowCreated:
		return next == EscrowFunded
	case EscrowFunded:
		return next == EscrowReleased || next == EscrowRefunded || next == EscrowDisputed
	case EscrowReleased, EscrowRefunded, EscrowDisputed:
		return false
	default:
		return false
	}
}

// EscrowPolicy is fixed at creation time.
type EscrowPolicy struct {
	AutoReleaseAfterDays        int
	RequireDeliveryConfirmation bool
	DisputeWindowDays           int
}

type EscrowMoney struct {
	Amount      int64
	Fees        int64
	TotalAmount int64
	Currency    string
}

// NewEscrowMoney computes the total and validates the minor-unit amounts.
func NewEscrowMoney(amount, fees int64, currency string) (EscrowMoney, error) {
	if amount < 0 {
		return EscrowMoney{}, fmt.Errorf("%w: amount must be non-negative", ErrInvalidArgument)
	}
	if fees < 0 {
		return EscrowMoney{}, fmt.Errorf("%w: fees must be non-negative", ErrInvalidArgument)
	}
	if amount > maxMinorUnits-fees {
		return EscrowMoney{}, fmt.Errorf("%w: total amount overflows", ErrInvalidArgument)
	}
	if err := ValidateCurrency(currency); err != nil {
		return EscrowMoney{}, err
	}
	return EscrowMoney{
		Amount:      amount,
		Fees:        fees,
		TotalAmount: amount + fees,
		Currency:    currency,
	}, nil
}

// Balanced reports whether total == amount + fees.
func (m EscrowMoney) Balanced() bool {
	return m.Amount >= 0 && m.Fees >= 0 && m.TotalAmount == m.Amount+m.Fees
}

type Escrow struct {
	ID            string
	TransactionID string

	BuyerID  string
	SellerID string

	ListingID string
	OfferID   *string

	Money  EscrowMoney
	Status EscrowStatus
	Policy EscrowPolicy

	PaymentReference string
	BlockchainHash   string
	GenesisPayload   string
	Version          int64

	CreatedAt           time.Time
	FundedAt            *time.Time
	ReleasedAt          *time.Time
	RefundedAt          *time.Time
	DeliveryConfirmedAt *time.Time
	DisputedAt          *time.Time
	AutoReleaseAt       *time.Time
	UpdatedAt           time.Time
}

// IsParty reports whether userID is the buyer or the seller.
func (e *Escrow) IsParty(userID string) bool {
	return userID != "" && (userID == e.BuyerID || userID == e.SellerID)
}

// Clone returns a deep copy so callers can mutate it without touching the
// stored instance.
func (e *Escrow) Clone() *Escrow {
	if e == nil {
		return nil
	}
	clone := *e
	clone.OfferID = cloneString(e.OfferID)
	clone.FundedAt = cloneTime(e.FundedAt)
	clone.ReleasedAt = cloneTime(e.ReleasedAt)
	clone.RefundedAt = cloneTime(e.RefundedAt)
	clone.DeliveryConfirmedAt = cloneTime(e.DeliveryConfirmedAt)
	clone.DisputedAt = cloneTime(e.DisputedAt)
	clone.AutoReleaseAt = cloneTime(e.AutoReleaseAt)
	return &clone
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

const (
	// SystemActorID is the actor recorded for releases triggered by the
	// auto-release sweep.
	SystemActorID = "system:auto-release"
	// PaymentGatewayActorID is recorded on funded events.
	PaymentGatewayActorID = "system:payment-gateway"
)
