// Package coupon holds user-issued coupons and their discount arithmetic.
package coupon

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

var (
	// ErrAlreadyUsed is returned when a coupon has already been spent on an order.
	ErrAlreadyUsed = errors.New("coupon already used")
	// ErrOrderBelowMinimum is returned when the order subtotal does not reach
	// the coupon's minimum order amount.
	ErrOrderBelowMinimum = errors.New("order subtotal below coupon minimum")
)

// NotFoundError indicates a referenced user coupon does not exist.
type NotFoundError struct {
	CouponID int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("user coupon %d not found", e.CouponID)
}

// UserCoupon is a coupon issued to a specific account. A coupon is either
// rate-based (percentage of the subtotal, capped) or flat-cost.
type UserCoupon struct {
	ID           int64
	UserID       int64
	Name         string
	OrderMin     decimal.Decimal
	DiscountCost decimal.Decimal
	DiscountRate int
	MaxDiscount  decimal.Decimal
	Rate         bool
	Used         bool
}

// Repository provides lookup and mutation of user coupons.
type Repository interface {
	GetByID(ctx context.Context, id int64) (*UserCoupon, error)
	MarkUsed(ctx context.Context, id int64) error
}
