package audit

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"github.com/LavaJover/agro-escrow-service/internal/domain"
)

// Chain links escrow events into a hash chain rooted at the contract's
// genesis fingerprint.
type Chain struct {
	fp *Fingerprinter
}

func NewChain(fp *Fingerprinter) *Chain {
	if fp == nil {
		fp = NewFingerprinter(SHA256)
	}
	return &Chain{fp: fp}
}

// Genesis seals the creation payload of a contract. The contract's
// CreatedAt is the salt.
func (c *Chain) Genesis(e *domain.Escrow) (Seal, error) {
	return c.fp.Seal(genesisFields(e), e.CreatedAt)
}

// genesisFields lists the contract terms sealed at creation.
func genesisFields(e *domain.Escrow) map[string]any {
	var offerID any
	if e.OfferID != nil {
		offerID = *e.OfferID
	}
	return map[string]any{
		"escrow_id":                     e.ID,
		"transaction_id":                e.TransactionID,
		"buyer_id":                      e.BuyerID,
		"seller_id":                     e.SellerID,
		"listing_id":                    e.ListingID,
		"offer_id":                      offerID,
		"amount":                        e.Money.Amount,
		"fees":                          e.Money.Fees,
		"total_amount":                  e.Money.TotalAmount,
		"currency":                      e.Money.Currency,
		"auto_release_after_days":       e.Policy.AutoReleaseAfterDays,
		"require_delivery_confirmation": e.Policy.RequireDeliveryConfirmation,
		"dispute_window_days":           e.Policy.DisputeWindowDays,
	}
}

// SealEvent turns a draft into the sequence-th event of the chain.
func (c *Chain) SealEvent(escrowID string, sequence int64, prevHash string, d domain.EventDraft) (*domain.EscrowEvent, error) {
	data := d.Data
	if data == nil {
		data = map[string]any{}
	}
	fields := map[string]any{
		"escrow_id": escrowID,
		"sequence":  sequence,
		"type":      string(d.Type),
		"actor_id":  d.ActorID,
		"detail":    d.Detail,
		"data":      data,
		"prev_hash": prevHash,
	}
	seal, err := c.fp.Seal(fields, d.At)
	if err != nil {
		return nil, fmt.Errorf("seal %s event: %w", d.Type, err)
	}
	return &domain.EscrowEvent{
		EscrowID:  escrowID,
		Sequence:  sequence,
		Type:      d.Type,
		ActorID:   d.ActorID,
		Detail:    d.Detail,
		Data:      data,
		PrevHash:  prevHash,
		Hash:      seal.Hash,
		Payload:   string(seal.Payload),
		CreatedAt: d.At,
	}, nil
}

// Verify recomputes every fingerprint from the stored payloads and checks
// the links between them. events must be ordered by sequence.
func (c *Chain) Verify(e *domain.Escrow, events []*domain.EscrowEvent) domain.VerificationReport {
	report := domain.VerificationReport{
		EscrowID:    e.ID,
		GenesisHash: e.BlockchainHash,
		Events:      len(events),
	}
	fail := func(seq int64, reason string) domain.VerificationReport {
		report.BrokenAt = seq
		report.Reason = reason
		return report
	}

	if err := Verify([]byte(e.GenesisPayload), e.BlockchainHash); err != nil {
		return fail(0, "genesis: "+err.Error())
	}
	genesis, err := decodePayload(e.GenesisPayload)
	if err != nil {
		return fail(0, "genesis: "+err.Error())
	}
	if genesis["escrow_id"] != e.ID {
		return fail(0, "genesis payload belongs to another contract")
	}
	if field := mismatchedTerm(genesis, genesisFields(e)); field != "" {
		return fail(0, "genesis "+field+" differs from stored contract")
	}

	prev := e.BlockchainHash
	for i, ev := range events {
		want := int64(i + 1)
		if ev.Sequence != want {
			return fail(want, fmt.Sprintf("expected sequence %d, found %d", want, ev.Sequence))
		}
		if ev.PrevHash != prev {
			return fail(ev.Sequence, "previous hash link broken")
		}
		if err := Verify([]byte(ev.Payload), ev.Hash); err != nil {
			return fail(ev.Sequence, err.Error())
		}
		doc, err := decodePayload(ev.Payload)
		if err != nil {
			return fail(ev.Sequence, err.Error())
		}
		if reason := matchColumns(doc, ev); reason != "" {
			return fail(ev.Sequence, reason)
		}
		prev = ev.Hash
	}

	report.Valid = true
	report.LastEventHash = prev
	return report
}

func decodePayload(payload string) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(payload)))
	dec.UseNumber()
	var doc map[string]any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrEncoding, err)
	}
	return doc, nil
}

// mismatchedTerm returns the first sealed term whose stored value no
// longer encodes the same as the payload. Numbers decoded as json.Number
// marshal back to their literal, so int64 terms compare exactly.
func mismatchedTerm(doc, want map[string]any) string {
	keys := make([]string, 0, len(want))
	for k := range want {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		got, ok := doc[k]
		if !ok {
			return k
		}
		a, errA := json.Marshal(got)
		b, errB := json.Marshal(want[k])
		if errA != nil || errB != nil || !bytes.Equal(a, b) {
			return k
		}
	}
	return ""
}

// matchColumns checks that the denormalized columns agree with the hashed
// payload, so editing a column without the payload is detected too.
func matchColumns(doc map[string]any, ev *domain.EscrowEvent) string {
	seq, _ := doc["sequence"].(json.Number)
	switch {
	case doc["escrow_id"] != ev.EscrowID:
		return "payload escrow id differs from stored column"
	case seq.String() != strconv.FormatInt(ev.Sequence, 10):
		return "payload sequence differs from stored column"
	case doc["type"] != string(ev.Type):
		return "payload type differs from stored column"
	case doc["actor_id"] != ev.ActorID:
		return "payload actor differs from stored column"
	case doc["detail"] != ev.Detail:
		return "payload detail differs from stored column"
	case doc["prev_hash"] != ev.PrevHash:
		return "payload previous hash differs from stored column"
	}
	return ""
}
