// Package pricing implements the deterministic total computation used for
// checkout and order confirmation. It performs no I/O.
package pricing

import (
	"math"

	"butikku/backend/internal/domain"
)

// Amount resolves an adjustment against a reference subtotal. PERCENTAGE
// values are clamped to [0,100] before being applied; FIXED values are taken
// at face value and never scaled.
func Amount(adj domain.Adjustment, reference int64) int64 {
	switch adj.Type {
	case domain.AdjustPercentage:
		pct := adj.Value
		if pct < 0 {
			pct = 0
		}
		if pct > 100 {
			pct = 100
		}
		return int64(math.Round(float64(reference) * pct / 100))
	case domain.AdjustFixed:
		return int64(math.Round(adj.Value))
	default:
		return 0
	}
}

// ComputeTotal applies the contract stacking order: member and promo discounts
// are subtracted from the base price (both referencing the base price), tax is
// computed against the post-discount intermediate subtotal, and shipping is
// added last as a flat amount. The intermediate subtotal is clamped to zero
// before tax, and the result is never negative.
func ComputeTotal(basePrice int64, shipping int64, tax, promo, member domain.Adjustment) int64 {
	intermediate := basePrice - Amount(member, basePrice) - Amount(promo, basePrice)
	if intermediate < 0 {
		intermediate = 0
	}

	total := intermediate + Amount(tax, intermediate) + shipping
	if total < 0 {
		total = 0
	}
	return total
}

// DiscountedPrice derives the effective unit price for a product discount
// percentage in [0,100].
func DiscountedPrice(price int64, discountPercent float64) int64 {
	if discountPercent <= 0 {
		return price
	}
	if discountPercent > 100 {
		discountPercent = 100
	}
	return int64(math.Round(float64(price) * (100 - discountPercent) / 100))
}
