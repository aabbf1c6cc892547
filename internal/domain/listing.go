package domain

import "context"

// ListingNotifier signals the marketplace listing store once an escrow settles.
type ListingNotifier interface {
	MarkListingSold(ctx context.Context, listingID, escrowID string) error
	MarkOfferCompleted(ctx context.Context, offerID, escrowID string) error
}
