package coupon

import (
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Apply calculates the discount a coupon yields on the given order subtotal.
// It returns ErrOrderBelowMinimum when the subtotal does not reach the
// coupon's minimum order amount. The result never exceeds the subtotal and
// is rounded to 2 decimal places.
func Apply(c *UserCoupon, subtotal decimal.Decimal) (decimal.Decimal, error) {
	if c.OrderMin.IsPositive() && subtotal.LessThan(c.OrderMin) {
		return decimal.Zero, ErrOrderBelowMinimum
	}

	var amount decimal.Decimal
	if c.Rate {
		amount = applyRate(c, subtotal)
	} else {
		amount = c.DiscountCost
	}

	amount = decimal.Min(amount, subtotal)
	return floorAtZero(amount).Round(2), nil
}

func applyRate(c *UserCoupon, subtotal decimal.Decimal) decimal.Decimal {
	amount := subtotal.Mul(decimal.NewFromInt(int64(c.DiscountRate))).Div(hundred)
	if c.MaxDiscount.IsPositive() {
		amount = decimal.Min(amount, c.MaxDiscount)
	}
	return amount
}

// floorAtZero clamps negative values to zero.
func floorAtZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
