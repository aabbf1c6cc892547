package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEscrowStatusGraph(t *testing.T) {
	all := []EscrowStatus{EscrowCreated, EscrowFunded, EscrowReleased, EscrowRefunded, EscrowDisputed}
	allowed := map[EscrowStatus][]EscrowStatus{
		EscrowCreated: {EscrowFunded},
		EscrowFunded:  {EscrowReleased, EscrowRefunded, EscrowDisputed},
	}
	for _, from := range all {
		for _, to := range all {
			assert.Equal(t, contains(allowed[from], to), from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}
	assert.True(t, EscrowReleased.Terminal())
	assert.True(t, EscrowRefunded.Terminal())
	assert.False(t, EscrowDisputed.Terminal())
}

func TestParseEscrowStatus(t *testing.T) {
	st, err := ParseEscrowStatus("funded")
	assert.NoError(t, err)
	assert.Equal(t, EscrowFunded, st)

	_, err = ParseEscrowStatus("cancelled")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestEscrowClone(t *testing.T) {
	offer := "O1"
	funded := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	e := &Escrow{ID: "e", BuyerID: "B", SellerID: "S", OfferID: &offer, FundedAt: &funded}

	c := e.Clone()
	*c.OfferID = "changed"
	*c.FundedAt = funded.Add(time.Hour)

	assert.Equal(t, "O1", *e.OfferID)
	assert.Equal(t, funded, *e.FundedAt)
	assert.True(t, e.IsParty("S"))
	assert.False(t, e.IsParty(""))
}

func TestErrorKind(t *testing.T) {
	assert.Equal(t, "conflict", ErrorKind(ErrConflict))
	assert.Equal(t, "internal", ErrorKind(assert.AnError))
	assert.Equal(t, "", ErrorKind(nil))
}

func contains(list []EscrowStatus, s EscrowStatus) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
