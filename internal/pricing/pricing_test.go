package pricing

import (
	"testing"

	"butikku/backend/internal/domain"
)

func pct(v float64) domain.Adjustment {
	return domain.Adjustment{Value: v, Type: domain.AdjustPercentage}
}

func fixed(v float64) domain.Adjustment {
	return domain.Adjustment{Value: v, Type: domain.AdjustFixed}
}

func TestComputeTotalMemberPromoTaxShipping(t *testing.T) {
	// 500000 base, 10% member (50000), 50000 fixed promo, 11% tax on the
	// 400000 intermediate (44000), 20000 flat shipping.
	got := ComputeTotal(500000, 20000, pct(11), fixed(50000), pct(10))
	if got != 464000 {
		t.Fatalf("ComputeTotal = %d, want 464000", got)
	}
}

func TestComputeTotalDeterministic(t *testing.T) {
	first := ComputeTotal(1234567, 15000, pct(11), fixed(20000), pct(5))
	for i := 0; i < 100; i++ {
		if got := ComputeTotal(1234567, 15000, pct(11), fixed(20000), pct(5)); got != first {
			t.Fatalf("run %d: ComputeTotal = %d, want %d", i, got, first)
		}
	}
}

func TestComputeTotalDiscountsReferenceBasePrice(t *testing.T) {
	// Both percentage discounts apply to the base price, not to each other's
	// output: 100000 - 20000 - 30000, no tax, no shipping.
	got := ComputeTotal(100000, 0, pct(0), pct(30), pct(20))
	if got != 50000 {
		t.Fatalf("ComputeTotal = %d, want 50000", got)
	}
}

func TestComputeTotalNeverNegative(t *testing.T) {
	// Fixed promo exceeds the base price: intermediate clamps to zero before
	// tax, leaving only shipping.
	got := ComputeTotal(10000, 5000, pct(11), fixed(900000), pct(10))
	if got != 5000 {
		t.Fatalf("ComputeTotal = %d, want 5000", got)
	}

	if got := ComputeTotal(10000, 0, pct(11), fixed(900000), pct(10)); got != 0 {
		t.Fatalf("ComputeTotal with zero shipping = %d, want 0", got)
	}
}

func TestAmountClampsPercentage(t *testing.T) {
	if got := Amount(pct(150), 80000); got != 80000 {
		t.Fatalf("Amount(150%%) = %d, want 80000", got)
	}
	if got := Amount(pct(-5), 80000); got != 0 {
		t.Fatalf("Amount(-5%%) = %d, want 0", got)
	}
}

func TestAmountUnknownTypeIsZero(t *testing.T) {
	if got := Amount(domain.Adjustment{Value: 10, Type: "GIFT"}, 100000); got != 0 {
		t.Fatalf("Amount(unknown type) = %d, want 0", got)
	}
}

func TestAmountRounds(t *testing.T) {
	// 11% of 4545 is 499.95, rounded to 500.
	if got := Amount(pct(11), 4545); got != 500 {
		t.Fatalf("Amount = %d, want 500", got)
	}
}

func TestDiscountedPrice(t *testing.T) {
	cases := []struct {
		price    int64
		discount float64
		want     int64
	}{
		{200000, 0, 200000},
		{200000, 25, 150000},
		{99999, 10, 89999},
		{200000, 120, 0},
		{200000, -10, 200000},
	}
	for _, c := range cases {
		if got := DiscountedPrice(c.price, c.discount); got != c.want {
			t.Fatalf("DiscountedPrice(%d, %v) = %d, want %d", c.price, c.discount, got, c.want)
		}
	}
}
