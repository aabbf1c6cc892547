package request

// CreateEscrowRequest carries money as decimal strings in major units
// ("100.50"); the buyer is the caller.
type CreateEscrowRequest struct {
	SellerID  string  `json:"seller_id"`
	ListingID string  `json:"listing_id"`
	OfferID   *string `json:"offer_id,omitempty"`

	Amount   string `json:"amount"`
	Fees     string `json:"fees"`
	Currency string `json:"currency"`

	AutoReleaseAfterDays        *int `json:"auto_release_after_days,omitempty"`
	RequireDeliveryConfirmation bool `json:"require_delivery_confirmation"`
	DisputeWindowDays           *int `json:"dispute_window_days,omitempty"`
}

type FundRequest struct {
	PaymentReference string `json:"payment_reference"`
}

type ReasonRequest struct {
	Reason string `json:"reason"`
}
