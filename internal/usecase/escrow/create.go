package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/LavaJover/agro-escrow-service/internal/domain"
	escrowdto "github.com/LavaJover/agro-escrow-service/internal/usecase/dto/escrow"
	"github.com/google/uuid"
)

// Create opens a contract in status created and records the created event.
func (uc *DefaultEscrowUsecase) Create(ctx context.Context, input *escrowdto.CreateEscrowInput) (*domain.Escrow, error) {
	started := time.Now()
	now := uc.clock()

	escrow, err := uc.buildEscrow(input, now)
	if err != nil {
		uc.recordErrorMetrics("create", err)
		return nil, err
	}

	data := map[string]any{
		"listing_id":   escrow.ListingID,
		"amount":       escrow.Money.Amount,
		"fees":         escrow.Money.Fees,
		"total_amount": escrow.Money.TotalAmount,
		"currency":     escrow.Money.Currency,
	}
	if escrow.OfferID != nil {
		data["offer_id"] = *escrow.OfferID
	}
	created, events, err := uc.EscrowRepo.Create(ctx, escrow, []domain.EventDraft{{
		Type:    domain.EventCreated,
		ActorID: escrow.BuyerID,
		Detail:  fmt.Sprintf("escrow %s opened for listing %s", escrow.TransactionID, escrow.ListingID),
		Data:    data,
		At:      now,
	}})
	if err != nil {
		uc.recordErrorMetrics("create", err)
		return nil, err
	}

	uc.recordCreatedMetrics(created)
	if uc.Metrics != nil {
		uc.Metrics.ObserveDuration("create", time.Since(started).Seconds())
	}
	uc.publishEvents(ctx, created, events)

	slog.Info("escrow created",
		"escrow_id", created.ID,
		"transaction_id", created.TransactionID,
		"buyer_id", created.BuyerID,
		"seller_id", created.SellerID,
		"total_amount", created.Money.TotalAmount,
		"currency", created.Money.Currency,
	)
	return created, nil
}

func (uc *DefaultEscrowUsecase) buildEscrow(input *escrowdto.CreateEscrowInput, now time.Time) (*domain.Escrow, error) {
	if input == nil {
		return nil, fmt.Errorf("%w: empty create request", domain.ErrInvalidArgument)
	}
	buyerID := strings.TrimSpace(input.BuyerID)
	sellerID := strings.TrimSpace(input.SellerID)
	listingID := strings.TrimSpace(input.ListingID)
	switch {
	case buyerID == "" || sellerID == "":
		return nil, fmt.Errorf("%w: buyer and seller are required", domain.ErrInvalidArgument)
	case buyerID == sellerID:
		return nil, fmt.Errorf("%w: buyer and seller must differ", domain.ErrInvalidArgument)
	case strings.HasPrefix(buyerID, "system:") || strings.HasPrefix(sellerID, "system:"):
		return nil, fmt.Errorf("%w: system actors cannot be parties", domain.ErrInvalidArgument)
	case listingID == "":
		return nil, fmt.Errorf("%w: listing is required", domain.ErrInvalidArgument)
	}

	var offerID *string
	if input.OfferID != nil && strings.TrimSpace(*input.OfferID) != "" {
		v := strings.TrimSpace(*input.OfferID)
		offerID = &v
	}

	currency := strings.TrimSpace(input.Currency)
	if currency == "" {
		currency = uc.Defaults.Currency
	}
	money, err := domain.NewEscrowMoney(input.Amount, input.Fees, currency)
	if err != nil {
		return nil, err
	}

	policy := domain.EscrowPolicy{
		AutoReleaseAfterDays:        uc.Defaults.AutoReleaseDays,
		RequireDeliveryConfirmation: input.RequireDeliveryConfirmation,
		DisputeWindowDays:           uc.Defaults.DisputeWindowDays,
	}
	if input.AutoReleaseAfterDays != nil {
		policy.AutoReleaseAfterDays = *input.AutoReleaseAfterDays
	}
	if input.DisputeWindowDays != nil {
		policy.DisputeWindowDays = *input.DisputeWindowDays
	}
	if policy.AutoReleaseAfterDays < 0 || policy.DisputeWindowDays < 0 {
		return nil, fmt.Errorf("%w: policy days must be non-negative", domain.ErrInvalidArgument)
	}

	return &domain.Escrow{
		ID:            uuid.NewString(),
		TransactionID: uc.newTransactionID(),
		BuyerID:       buyerID,
		SellerID:      sellerID,
		ListingID:     listingID,
		OfferID:       offerID,
		Money:         money,
		Status:        domain.EscrowCreated,
		Policy:        policy,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}
