package coupon

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestApply_FlatCoupon(t *testing.T) {
	c := &UserCoupon{Name: "3000 off", DiscountCost: dec("3000")}

	amount, err := Apply(c, dec("15000"))

	require.NoError(t, err)
	assert.True(t, dec("3000").Equal(amount))
}

func TestApply_FlatCoupon_CappedAtSubtotal(t *testing.T) {
	c := &UserCoupon{Name: "5000 off", DiscountCost: dec("5000")}

	amount, err := Apply(c, dec("4200"))

	require.NoError(t, err)
	assert.True(t, dec("4200").Equal(amount))
}

func TestApply_RateCoupon(t *testing.T) {
	c := &UserCoupon{Name: "10% off", Rate: true, DiscountRate: 10}

	amount, err := Apply(c, dec("20000"))

	require.NoError(t, err)
	assert.True(t, dec("2000").Equal(amount))
}

func TestApply_RateCoupon_MaxDiscountCap(t *testing.T) {
	c := &UserCoupon{
		Name:         "20% up to 5000",
		Rate:         true,
		DiscountRate: 20,
		MaxDiscount:  dec("5000"),
	}

	amount, err := Apply(c, dec("100000"))

	require.NoError(t, err)
	assert.True(t, dec("5000").Equal(amount))
}

func TestApply_OrderBelowMinimum(t *testing.T) {
	c := &UserCoupon{
		Name:         "1000 off orders over 10000",
		OrderMin:     dec("10000"),
		DiscountCost: dec("1000"),
	}

	_, err := Apply(c, dec("9999"))
	require.ErrorIs(t, err, ErrOrderBelowMinimum)
}

func TestApply_RoundsToTwoPlaces(t *testing.T) {
	c := &UserCoupon{Name: "15% off", Rate: true, DiscountRate: 15}

	amount, err := Apply(c, dec("99.99"))

	require.NoError(t, err)
	assert.True(t, dec("15.00").Equal(amount))
}
