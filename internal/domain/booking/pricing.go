package booking

import "github.com/holy-travels/service-booking/pkg/domain"

// taxRateBasisPoints is the GST rate applied on top of the base price.
const taxRateBasisPoints = 500 // 5%

// Quote is the computed pricing breakdown for a booking.
type Quote struct {
	BasePriceCents   int64
	TaxesCents       int64
	TotalAmountCents int64
}

// ComputeQuote prices a booking: base = effective per-passenger price
// times passenger count, taxes = 5% of base rounded half-up, total =
// base + taxes.
func ComputeQuote(unitPriceCents int64, passengerCount int) (Quote, error) {
	if unitPriceCents <= 0 {
		return Quote{}, domain.NewValidationError("unit price must be positive")
	}
	if passengerCount < 1 {
		return Quote{}, domain.NewValidationError("at least one passenger is required")
	}

	base := unitPriceCents * int64(passengerCount)
	taxes := (base*taxRateBasisPoints + 5000) / 10000
	return Quote{
		BasePriceCents:   base,
		TaxesCents:       taxes,
		TotalAmountCents: base + taxes,
	}, nil
}
