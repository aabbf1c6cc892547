package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToMinorUnits(t *testing.T) {
	cases := []struct {
		major    string
		currency string
		want     int64
	}{
		{"100.50", "KES", 10050},
		{"0", "USD", 0},
		{"1500", "UGX", 1500},
		{"1.234", "KWD", 1234},
	}
	for _, tc := range cases {
		got, err := ToMinorUnits(decimal.RequireFromString(tc.major), tc.currency)
		require.NoError(t, err, tc.major)
		assert.Equal(t, tc.want, got, tc.major)
	}
}

func TestToMinorUnitsRejects(t *testing.T) {
	for _, tc := range []struct {
		major    string
		currency string
	}{
		{"1.001", "KES"},
		{"1.5", "UGX"},
		{"-1", "KES"},
		{"1", "kes"},
		{"1", "KESH"},
		{"99999999999999999999", "KES"},
	} {
		_, err := ToMinorUnits(decimal.RequireFromString(tc.major), tc.currency)
		assert.ErrorIs(t, err, ErrInvalidArgument, tc.major+" "+tc.currency)
	}
}

func TestFormatMinorUnits(t *testing.T) {
	assert.Equal(t, "101.00", FormatMinorUnits(10100, "KES"))
	assert.Equal(t, "1500", FormatMinorUnits(1500, "UGX"))
	assert.Equal(t, "1.234", FormatMinorUnits(1234, "KWD"))
}

func TestNewEscrowMoney(t *testing.T) {
	m, err := NewEscrowMoney(10000, 100, "KES")
	require.NoError(t, err)
	assert.Equal(t, int64(10100), m.TotalAmount)
	assert.True(t, m.Balanced())

	_, err = NewEscrowMoney(-1, 0, "KES")
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = NewEscrowMoney(1, -1, "KES")
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = NewEscrowMoney(maxMinorUnits, 1, "KES")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}
