package escrowdto

import "github.com/LavaJover/agro-escrow-service/internal/domain"

// SettlementOutput is a committed release plus the outcome of signaling the
// listing store. ListingSignal is false when no listing store is configured or
// a signal failed; ListingWarning carries the failures. The release stays
// final either way.
type SettlementOutput struct {
	Escrow         *domain.Escrow
	ListingSignal  bool
	ListingWarning string
}

type SweepOutput struct {
	Candidates int
	Released   int
	Skipped    int
	Failed     int
}
