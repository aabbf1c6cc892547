package handlers

import (
	"github.com/LavaJover/agro-escrow-service/internal/delivery/http/dto/escrow/response"
	"github.com/LavaJover/agro-escrow-service/internal/domain"
)

func toEscrowResponse(e *domain.Escrow) response.EscrowResponse {
	currency := e.Money.Currency
	return response.EscrowResponse{
		EscrowID:                    e.ID,
		TransactionID:               e.TransactionID,
		BuyerID:                     e.BuyerID,
		SellerID:                    e.SellerID,
		ListingID:                   e.ListingID,
		OfferID:                     e.OfferID,
		Amount:                      domain.FormatMinorUnits(e.Money.Amount, currency),
		Fees:                        domain.FormatMinorUnits(e.Money.Fees, currency),
		TotalAmount:                 domain.FormatMinorUnits(e.Money.TotalAmount, currency),
		Currency:                    currency,
		Status:                      string(e.Status),
		AutoReleaseAfterDays:        e.Policy.AutoReleaseAfterDays,
		RequireDeliveryConfirmation: e.Policy.RequireDeliveryConfirmation,
		DisputeWindowDays:           e.Policy.DisputeWindowDays,
		PaymentReference:            e.PaymentReference,
		BlockchainHash:              e.BlockchainHash,
		Version:                     e.Version,
		CreatedAt:                   e.CreatedAt,
		FundedAt:                    e.FundedAt,
		ReleasedAt:                  e.ReleasedAt,
		RefundedAt:                  e.RefundedAt,
		DeliveryConfirmedAt:         e.DeliveryConfirmedAt,
		DisputedAt:                  e.DisputedAt,
		AutoReleaseAt:               e.AutoReleaseAt,
		UpdatedAt:                   e.UpdatedAt,
	}
}

func toEventResponse(ev *domain.EscrowEvent) response.EventResponse {
	return response.EventResponse{
		EventID:   ev.ID,
		Sequence:  ev.Sequence,
		Type:      string(ev.Type),
		ActorID:   ev.ActorID,
		Detail:    ev.Detail,
		Data:      ev.Data,
		PrevHash:  ev.PrevHash,
		Hash:      ev.Hash,
		CreatedAt: ev.CreatedAt,
	}
}
