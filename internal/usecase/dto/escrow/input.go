package escrowdto

// CreateEscrowInput carries amounts in minor currency units. Nil policy
// fields fall back to the service defaults.
type CreateEscrowInput struct {
	BuyerID   string
	SellerID  string
	ListingID string
	OfferID   *string

	Amount   int64
	Fees     int64
	Currency string

	AutoReleaseAfterDays        *int
	RequireDeliveryConfirmation bool
	DisputeWindowDays           *int
}
