package response

import "time"

type ErrorResponse struct {
	Error string `json:"error"`
}

type EscrowResponse struct {
	EscrowID      string  `json:"escrow_id"`
	TransactionID string  `json:"transaction_id"`
	BuyerID       string  `json:"buyer_id"`
	SellerID      string  `json:"seller_id"`
	ListingID     string  `json:"listing_id"`
	OfferID       *string `json:"offer_id,omitempty"`

	Amount      string `json:"amount"`
	Fees        string `json:"fees"`
	TotalAmount string `json:"total_amount"`
	Currency    string `json:"currency"`
	Status      string `json:"status"`

	AutoReleaseAfterDays        int  `json:"auto_release_after_days"`
	RequireDeliveryConfirmation bool `json:"require_delivery_confirmation"`
	DisputeWindowDays           int  `json:"dispute_window_days"`

	PaymentReference string `json:"payment_reference,omitempty"`
	BlockchainHash   string `json:"blockchain_hash"`
	Version          int64  `json:"version"`

	CreatedAt           time.Time  `json:"created_at"`
	FundedAt            *time.Time `json:"funded_at,omitempty"`
	ReleasedAt          *time.Time `json:"released_at,omitempty"`
	RefundedAt          *time.Time `json:"refunded_at,omitempty"`
	DeliveryConfirmedAt *time.Time `json:"delivery_confirmed_at,omitempty"`
	DisputedAt          *time.Time `json:"disputed_at,omitempty"`
	AutoReleaseAt       *time.Time `json:"auto_release_at,omitempty"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

type ReleaseResponse struct {
	EscrowResponse
	ListingSignal  bool   `json:"listing_signal"`
	ListingWarning string `json:"listing_warning,omitempty"`
}

type EscrowListResponse struct {
	Escrows []EscrowResponse `json:"escrows"`
}

type EventResponse struct {
	EventID   string         `json:"event_id"`
	Sequence  int64          `json:"sequence"`
	Type      string         `json:"type"`
	ActorID   string         `json:"actor_id"`
	Detail    string         `json:"detail"`
	Data      map[string]any `json:"data,omitempty"`
	PrevHash  string         `json:"prev_hash"`
	Hash      string         `json:"hash"`
	CreatedAt time.Time      `json:"created_at"`
}

type EventListResponse struct {
	EscrowID string          `json:"escrow_id"`
	Events   []EventResponse `json:"events"`
}

type VerificationResponse struct {
	EscrowID      string `json:"escrow_id"`
	GenesisHash   string `json:"genesis_hash"`
	Events        int    `json:"events"`
	Valid         bool   `json:"valid"`
	BrokenAt      int64  `json:"broken_at,omitempty"`
	Reason        string `json:"reason,omitempty"`
	LastEventHash string `json:"last_event_hash,omitempty"`
}
