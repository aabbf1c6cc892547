package models

import (
	"time"
)

type EscrowContractModel struct {
	ID            string `gorm:"primaryKey;type:uuid"`
	TransactionID string `gorm:"uniqueIndex;not null"`
	BuyerID       string `gorm:"index:idx_escrow_buyer;not null"`
	SellerID      string `gorm:"index:idx_escrow_seller;not null"`
	ListingID     string `gorm:"not null"`
	OfferID       *string

	Amount      int64  `gorm:"not null"`
	Fees        int64  `gorm:"not null"`
	TotalAmount int64  `gorm:"not null"`
	Currency    string `gorm:"size:3;not null"`

	Status                      string `gorm:"index:idx_escrow_status_release,priority:1;not null"`
	AutoReleaseAfterDays        int    `gorm:"not null"`
	RequireDeliveryConfirmation bool   `gorm:"not null"`
	DisputeWindowDays           int    `gorm:"not null"`

	PaymentReference string
	BlockchainHash   string `gorm:"not null"`
	GenesisPayload   string `gorm:"type:text;not null"`
	Version          int64  `gorm:"not null"`

	CreatedAt           time.Time `gorm:"autoCreateTime:false;index:idx_escrow_created_at"`
	FundedAt            *time.Time
	ReleasedAt          *time.Time
	RefundedAt          *time.Time
	DeliveryConfirmedAt *time.Time
	DisputedAt          *time.Time
	AutoReleaseAt       *time.Time `gorm:"index:idx_escrow_status_release,priority:2"`
	UpdatedAt           time.Time  `gorm:"autoUpdateTime:false"`
}

func (EscrowContractModel) TableName() string { return "escrow_contracts" }
