package usecase

import (
	"fmt"
	"time"

	"github.com/LavaJover/agro-escrow-service/internal/domain"
)

const day = 24 * time.Hour

// DaysSince counts whole days between t and now. A t in the future counts
// as zero days.
func DaysSince(t, now time.Time) int {
	elapsed := now.Sub(t)
	if elapsed <= 0 {
		return 0
	}
	return int(elapsed / day)
}

// ReleaseEligibility decides whether actorID may release e at now. The
// returned flag is true when the release happens on elapsed time alone.
func ReleaseEligibility(e *domain.Escrow, actorID string, now time.Time) (autoRelease bool, err error) {
	if e.Status != domain.EscrowFunded {
		return false, fmt.Errorf("%w: cannot release escrow in status %s", domain.ErrInvalidState, e.Status)
	}
	byBuyer := actorID == e.BuyerID
	bySystem := actorID == domain.SystemActorID
	if !byBuyer && actorID != e.SellerID && !bySystem {
		return false, fmt.Errorf("%w: %s is not a party of escrow %s", domain.ErrUnauthorized, actorID, e.ID)
	}

	confirmed := e.DeliveryConfirmedAt != nil
	elapsed := e.FundedAt != nil && DaysSince(*e.FundedAt, now) >= e.Policy.AutoReleaseAfterDays
	// the sweep never releases unconfirmed contracts that demand a confirmation
	if bySystem && e.Policy.RequireDeliveryConfirmation && !confirmed {
		elapsed = false
	}

	if !confirmed && !elapsed && !byBuyer {
		return false, fmt.Errorf("%w: delivery not confirmed and auto-release period of %d days not reached", domain.ErrNotEligible, e.Policy.AutoReleaseAfterDays)
	}
	return !confirmed && !byBuyer, nil
}

// WithinDisputeWindow reports whether now is inside the dispute window that
// opens at funding. A zero-day window admits no disputes.
func WithinDisputeWindow(e *domain.Escrow, now time.Time) bool {
	if e.FundedAt == nil || e.Policy.DisputeWindowDays <= 0 {
		return false
	}
	return !now.After(e.FundedAt.Add(time.Duration(e.Policy.DisputeWindowDays) * day))
}

// AutoReleaseAt is the instant the auto-release period of a contract funded
// at fundedAt ends.
func AutoReleaseAt(e *domain.Escrow, fundedAt time.Time) time.Time {
	return fundedAt.Add(time.Duration(e.Policy.AutoReleaseAfterDays) * day)
}

func checkParty(e *domain.Escrow, actorID string) error {
	if !e.IsParty(actorID) {
		return fmt.Errorf("%w: %s is not a party of escrow %s", domain.ErrUnauthorized, actorID, e.ID)
	}
	return nil
}

func checkBuyer(e *domain.Escrow, actorID string) error {
	if actorID == "" || actorID != e.BuyerID {
		return fmt.Errorf("%w: only the buyer of escrow %s may do this", domain.ErrUnauthorized, e.ID)
	}
	return nil
}

func checkStatus(e *domain.Escrow, want domain.EscrowStatus, op string) error {
	if e.Status != want {
		return fmt.Errorf("%w: cannot %s escrow in status %s", domain.ErrInvalidState, op, e.Status)
	}
	return nil
}
