package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeQuote(t *testing.T) {
	// Two passengers at 500000 paise each: base 1000000, 5% tax 50000.
	quote, err := ComputeQuote(500000, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(1000000), quote.BasePriceCents)
	assert.Equal(t, int64(50000), quote.TaxesCents)
	assert.Equal(t, int64(1050000), quote.TotalAmountCents)
}

func TestComputeQuote_TaxRoundsHalfUp(t *testing.T) {
	// Base 1010: 5% is 50.5, rounds to 51.
	quote, err := ComputeQuote(1010, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(51), quote.TaxesCents)
	assert.Equal(t, int64(1061), quote.TotalAmountCents)

	// Base 1009: 5% is 50.45, rounds to 50.
	quote, err = ComputeQuote(1009, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(50), quote.TaxesCents)
}

func TestComputeQuote_RejectsInvalidInput(t *testing.T) {
	_, err := ComputeQuote(0, 2)
	assert.Error(t, err)

	_, err = ComputeQuote(500000, 0)
	assert.Error(t, err)
}
