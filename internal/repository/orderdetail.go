package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mybooks/storefront/internal/domain/order"
)

const (
	createDetailSQL = `INSERT INTO order_details (order_id, book_id, quantity, book_cost, coupon_used, status, user_coupon_id, wrap_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`

	listDetailsByOrderSQL = `SELECT id, order_id, book_id, quantity, book_cost, coupon_used, status, user_coupon_id, wrap_id
		FROM order_details WHERE order_id = $1 ORDER BY id`
)

var _ order.DetailRepository = (*OrderDetailRepository)(nil)

// OrderDetailRepository implements order.DetailRepository backed by PostgreSQL.
type OrderDetailRepository struct {
	pool *pgxpool.Pool
}

// NewOrderDetailRepository returns an OrderDetailRepository that uses the given pool.
func NewOrderDetailRepository(pool *pgxpool.Pool) *OrderDetailRepository {
	return &OrderDetailRepository{pool: pool}
}

// Create persists a new order line and fills in its generated ID.
func (r *OrderDetailRepository) Create(ctx context.Context, d *order.Detail) error {
	err := r.pool.QueryRow(ctx, createDetailSQL,
		d.OrderID, d.BookID, d.Quantity, d.BookCost, d.CouponUsed,
		string(d.Status), d.UserCouponID, d.WrapID,
	).Scan(&d.ID)
	if err != nil {
		return fmt.Errorf("creating detail for order %d: %w", d.OrderID, err)
	}
	return nil
}

// ListByOrder returns the line items of an order in insertion order.
func (r *OrderDetailRepository) ListByOrder(ctx context.Context, orderID int64) ([]order.Detail, error) {
	rows, err := r.pool.Query(ctx, listDetailsByOrderSQL, orderID)
	if err != nil {
		return nil, fmt.Errorf("listing details for order %d: %w", orderID, err)
	}
	return pgx.CollectRows(rows, scanDetail)
}

func scanDetail(row pgx.CollectableRow) (order.Detail, error) {
	var (
		d      order.Detail
		status string
	)
	err := row.Scan(
		&d.ID, &d.OrderID, &d.BookID, &d.Quantity, &d.BookCost,
		&d.CouponUsed, &status, &d.UserCouponID, &d.WrapID,
	)
	d.Status = order.DetailStatus(status)
	return d, err
}
