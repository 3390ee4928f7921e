package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mybooks/storefront/internal/domain/coupon"
)

const (
	getCouponByIDSQL = `SELECT id, user_id, name, order_min, discount_cost, discount_rate, max_discount, is_rate, used
		FROM user_coupons WHERE id = $1`

	markCouponUsedSQL = `UPDATE user_coupons SET used = TRUE
		WHERE id = $1 AND used = FALSE`
)

var _ coupon.Repository = (*CouponRepository)(nil)

// CouponRepository implements coupon.Repository backed by PostgreSQL.
type CouponRepository struct {
	pool *pgxpool.Pool
}

// NewCouponRepository returns a CouponRepository that uses the given pool.
func NewCouponRepository(pool *pgxpool.Pool) *CouponRepository {
	return &CouponRepository{pool: pool}
}

// GetByID returns a user coupon by its identifier.
func (r *CouponRepository) GetByID(ctx context.Context, id int64) (*coupon.UserCoupon, error) {
	rows, err := r.pool.Query(ctx, getCouponByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting user coupon %d: %w", id, err)
	}

	c, err := pgx.CollectExactlyOneRow(rows, scanCoupon)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &coupon.NotFoundError{CouponID: id}
		}
		return nil, fmt.Errorf("getting user coupon %d: %w", id, err)
	}
	return &c, nil
}

// MarkUsed flips an unspent coupon to used. Spending an already-used coupon
// fails with coupon.ErrAlreadyUsed.
func (r *CouponRepository) MarkUsed(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, markCouponUsedSQL, id)
	if err != nil {
		return fmt.Errorf("marking user coupon %d used: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return coupon.ErrAlreadyUsed
	}
	return nil
}

func scanCoupon(row pgx.CollectableRow) (coupon.UserCoupon, error) {
	var c coupon.UserCoupon
	err := row.Scan(
		&c.ID, &c.UserID, &c.Name, &c.OrderMin,
		&c.DiscountCost, &c.DiscountRate, &c.MaxDiscount, &c.Rate, &c.Used,
	)
	return c, err
}
