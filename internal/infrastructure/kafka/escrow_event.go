package publisher

import (
	"context"
	"encoding/json"
	"time"

	"github.com/LavaJover/agro-escrow-service/internal/domain"
)

// EscrowEvent is the wire form of a committed lifecycle event.
type EscrowEvent struct {
	EventID       string         `json:"event_id"`
	EscrowID      string         `json:"escrow_id"`
	TransactionID string         `json:"transaction_id"`
	Sequence      int64          `json:"sequence"`
	Type          string         `json:"type"`
	Status        string         `json:"status"`
	ActorID       string         `json:"actor_id"`
	Detail        string         `json:"detail"`
	Data          map[string]any `json:"data,omitempty"`
	Hash          string         `json:"hash"`
	PrevHash      string         `json:"prev_hash"`
	BuyerID       string         `json:"buyer_id"`
	SellerID      string         `json:"seller_id"`
	ListingID     string         `json:"listing_id"`
	OfferID       string         `json:"offer_id,omitempty"`
	TotalAmount   int64          `json:"total_amount"`
	Currency      string         `json:"currency"`
	OccurredAt    time.Time      `json:"occurred_at"`
}

// EscrowEventPublisher publishes escrow lifecycle events keyed by escrow id.
type EscrowEventPublisher struct {
	pub   domain.PublisherPort
	topic string
}

func NewEscrowEventPublisher(pub domain.PublisherPort, topic string) *EscrowEventPublisher {
	return &EscrowEventPublisher{pub: pub, topic: topic}
}

func (p *EscrowEventPublisher) PublishEscrowEvents(ctx context.Context, escrow *domain.Escrow, events []*domain.EscrowEvent) error {
	msgs := make([]domain.Message, 0, len(events))
	for _, ev := range events {
		v, err := json.Marshal(NewEscrowEvent(escrow, ev))
		if err != nil {
			return err
		}
		msgs = append(msgs, domain.Message{Key: []byte(escrow.ID), Value: v})
	}
	return p.pub.Publish(ctx, p.topic, msgs...)
}

func NewEscrowEvent(escrow *domain.Escrow, ev *domain.EscrowEvent) EscrowEvent {
	out := EscrowEvent{
		EventID:       ev.ID,
		EscrowID:      escrow.ID,
		TransactionID: escrow.TransactionID,
		Sequence:      ev.Sequence,
		Type:          string(ev.Type),
		Status:        string(escrow.Status),
		ActorID:       ev.ActorID,
		Detail:        ev.Detail,
		Data:          ev.Data,
		Hash:          ev.Hash,
		PrevHash:      ev.PrevHash,
		BuyerID:       escrow.BuyerID,
		SellerID:      escrow.SellerID,
		ListingID:     escrow.ListingID,
		TotalAmount:   escrow.Money.TotalAmount,
		Currency:      escrow.Money.Currency,
		OccurredAt:    ev.CreatedAt,
	}
	if escrow.OfferID != nil {
		out.OfferID = *escrow.OfferID
	}
	return out
}
