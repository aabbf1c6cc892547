package mappers

import (
	"encoding/json"
	"time"

	"github.com/LavaJover/agro-escrow-service/internal/domain"
	"github.com/LavaJover/agro-escrow-service/internal/infrastructure/postgres/models"
)

func ToDomainEscrow(model *models.EscrowContractModel) *domain.Escrow {
	return &domain.Escrow{
		ID:            model.ID,
		TransactionID: model.TransactionID,
		BuyerID:       model.BuyerID,
		SellerID:      model.SellerID,
		ListingID:     model.ListingID,
		OfferID:       model.OfferID,
		Money: domain.EscrowMoney{
			Amount:      model.Amount,
			Fees:        model.Fees,
			TotalAmount: model.TotalAmount,
			Currency:    model.Currency,
		},
		Status: domain.EscrowStatus(model.Status),
		Policy: domain.EscrowPolicy{
			AutoReleaseAfterDays:        model.AutoReleaseAfterDays,
			RequireDeliveryConfirmation: model.RequireDeliveryConfirmation,
			DisputeWindowDays:           model.DisputeWindowDays,
		},
		PaymentReference:    model.PaymentReference,
		BlockchainHash:      model.BlockchainHash,
		GenesisPayload:      model.GenesisPayload,
		Version:             model.Version,
		CreatedAt:           model.CreatedAt.UTC(),
		FundedAt:            utc(model.FundedAt),
		ReleasedAt:          utc(model.ReleasedAt),
		RefundedAt:          utc(model.RefundedAt),
		DeliveryConfirmedAt: utc(model.DeliveryConfirmedAt),
		DisputedAt:          utc(model.DisputedAt),
		AutoReleaseAt:       utc(model.AutoReleaseAt),
		UpdatedAt:           model.UpdatedAt.UTC(),
	}
}

func ToGORMEscrow(escrow *domain.Escrow) *models.EscrowContractModel {
	return &models.EscrowContractModel{
		ID:                          escrow.ID,
		TransactionID:               escrow.TransactionID,
		BuyerID:                     escrow.BuyerID,
		SellerID:                    escrow.SellerID,
		ListingID:                   escrow.ListingID,
		OfferID:                     escrow.OfferID,
		Amount:                      escrow.Money.Amount,
		Fees:                        escrow.Money.Fees,
		TotalAmount:                 escrow.Money.TotalAmount,
		Currency:                    escrow.Money.Currency,
		Status:                      string(escrow.Status),
		AutoReleaseAfterDays:        escrow.Policy.AutoReleaseAfterDays,
		RequireDeliveryConfirmation: escrow.Policy.RequireDeliveryConfirmation,
		DisputeWindowDays:           escrow.Policy.DisputeWindowDays,
		PaymentReference:            escrow.PaymentReference,
		BlockchainHash:              escrow.BlockchainHash,
		GenesisPayload:              escrow.GenesisPayload,
		Version:                     escrow.Version,
		CreatedAt:                   escrow.CreatedAt,
		FundedAt:                    escrow.FundedAt,
		ReleasedAt:                  escrow.ReleasedAt,
		RefundedAt:                  escrow.RefundedAt,
		DeliveryConfirmedAt:         escrow.DeliveryConfirmedAt,
		DisputedAt:                  escrow.DisputedAt,
		AutoReleaseAt:               escrow.AutoReleaseAt,
		UpdatedAt:                   escrow.UpdatedAt,
	}
}

// ToEscrowStateColumns lists the columns a transition may change. Parties,
// money, policy and the genesis hash are never part of it.
func ToEscrowStateColumns(escrow *domain.Escrow) map[string]any {
	return map[string]any{
		"status":                string(escrow.Status),
		"payment_reference":     escrow.PaymentReference,
		"funded_at":             escrow.FundedAt,
		"released_at":           escrow.ReleasedAt,
		"refunded_at":           escrow.RefundedAt,
		"delivery_confirmed_at": escrow.DeliveryConfirmedAt,
		"disputed_at":           escrow.DisputedAt,
		"auto_release_at":       escrow.AutoReleaseAt,
		"updated_at":            escrow.UpdatedAt,
		"version":               escrow.Version,
	}
}

func ToDomainEscrowEvent(model *models.EscrowEventModel) *domain.EscrowEvent {
	return &domain.EscrowEvent{
		ID:        model.ID,
		EscrowID:  model.EscrowID,
		Sequence:  model.Sequence,
		Type:      domain.EscrowEventType(model.Type),
		ActorID:   model.ActorID,
		Detail:    model.Detail,
		Data:      payloadData(model.Payload),
		PrevHash:  model.PrevHash,
		Hash:      model.Hash,
		Payload:   model.Payload,
		CreatedAt: model.CreatedAt.UTC(),
	}
}

func ToGORMEscrowEvent(event *domain.EscrowEvent) *models.EscrowEventModel {
	return &models.EscrowEventModel{
		ID:        event.ID,
		EscrowID:  event.EscrowID,
		Sequence:  event.Sequence,
		Type:      string(event.Type),
		ActorID:   event.ActorID,
		Detail:    event.Detail,
		PrevHash:  event.PrevHash,
		Hash:      event.Hash,
		Payload:   event.Payload,
		CreatedAt: event.CreatedAt,
	}
}

// payloadData recovers the structured event data from the hashed payload; a
// payload that does not decode yields an empty map and is reported by chain
// verification instead.
func payloadData(payload string) map[string]any {
	var doc struct {
		Data map[string]any `json:"data"`
	}
	if err := json.Unmarshal([]byte(payload), &doc); err != nil || doc.Data == nil {
		return map[string]any{}
	}
	return doc.Data
}

func utc(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}
