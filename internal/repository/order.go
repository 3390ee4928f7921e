package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mybooks/storefront/internal/domain/order"
	"github.com/mybooks/storefront/internal/domain/user"
)

const (
	orderColumns = `id, number, user_id, delivery_rule_id, status, order_date, delivery_date,
		receiver_name, receiver_address, receiver_phone, receiver_message,
		total_cost, coupon_cost, point_cost, coupon_used, invoice_number, access_code`

	createOrderSQL = `INSERT INTO orders (number, user_id, delivery_rule_id, status, order_date, delivery_date,
		receiver_name, receiver_address, receiver_phone, receiver_message,
		total_cost, coupon_cost, point_cost, coupon_used, invoice_number, access_code)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING id`

	getOrderByIDSQL = `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	getOrderByNumberSQL = `SELECT ` + orderColumns + ` FROM orders WHERE number = $1`

	orderNumberExistsSQL = `SELECT EXISTS (SELECT 1 FROM orders WHERE number = $1)`

	updateOrderStatusSQL = `UPDATE orders SET status = $2 WHERE id = $1`

	updateOrderInvoiceSQL = `UPDATE orders SET invoice_number = $2 WHERE id = $1`

	listOrdersByUserSQL = `SELECT ` + orderColumns + ` FROM orders
		WHERE user_id = $1 ORDER BY order_date DESC, id DESC LIMIT $2 OFFSET $3`

	countOrdersByUserSQL = `SELECT count(*) FROM orders WHERE user_id = $1`

	listOrdersSQL = `SELECT ` + orderColumns + ` FROM orders
		ORDER BY order_date DESC, id DESC LIMIT $1 OFFSET $2`

	countOrdersSQL = `SELECT count(*) FROM orders`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL.
// Guest orders are stored with a NULL user_id.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create persists a new order and fills in its generated ID.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	var userID *int64
	if id, ok := o.User.ID(); ok {
		userID = &id
	}

	err := r.pool.QueryRow(ctx, createOrderSQL,
		o.Number, userID, o.DeliveryRuleID, string(o.Status), o.OrderDate, o.DeliveryDate,
		o.ReceiverName, o.ReceiverAddress, o.ReceiverPhone, o.ReceiverMessage,
		o.TotalCost, o.CouponCost, o.PointCost, o.CouponUsed, o.InvoiceNumber, o.AccessCode,
	).Scan(&o.ID)
	if err != nil {
		return fmt.Errorf("creating order %q: %w", o.Number, err)
	}
	return nil
}

// GetByID returns a single order by its identifier.
func (r *OrderRepository) GetByID(ctx context.Context, id int64) (*order.Order, error) {
	rows, err := r.pool.Query(ctx, getOrderByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting order %d: %w", id, err)
	}

	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &order.NotFoundError{ID: id}
		}
		return nil, fmt.Errorf("getting order %d: %w", id, err)
	}
	return &o, nil
}

// GetByNumber returns a single order by its store-facing number.
func (r *OrderRepository) GetByNumber(ctx context.Context, number string) (*order.Order, error) {
	rows, err := r.pool.Query(ctx, getOrderByNumberSQL, number)
	if err != nil {
		return nil, fmt.Errorf("getting order %q: %w", number, err)
	}

	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &order.NotFoundError{Number: number}
		}
		return nil, fmt.Errorf("getting order %q: %w", number, err)
	}
	return &o, nil
}

// NumberExists reports whether an order with exactly that number exists.
func (r *OrderRepository) NumberExists(ctx context.Context, number string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, orderNumberExistsSQL, number).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking order number %q: %w", number, err)
	}
	return exists, nil
}

// UpdateStatus records the new lifecycle status of an order.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id int64, status order.Status) error {
	tag, err := r.pool.Exec(ctx, updateOrderStatusSQL, id, string(status))
	if err != nil {
		return fmt.Errorf("updating status of order %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return &order.NotFoundError{ID: id}
	}
	return nil
}

// UpdateInvoice records the shipping invoice number of an order.
func (r *OrderRepository) UpdateInvoice(ctx context.Context, id int64, invoiceNumber string) error {
	tag, err := r.pool.Exec(ctx, updateOrderInvoiceSQL, id, invoiceNumber)
	if err != nil {
		return fmt.Errorf("updating invoice of order %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return &order.NotFoundError{ID: id}
	}
	return nil
}

// ListByUser returns one page of a user's orders, newest first, plus the
// total count across all pages.
func (r *OrderRepository) ListByUser(ctx context.Context, userID int64, page, size int) ([]order.Order, int64, error) {
	rows, err := r.pool.Query(ctx, listOrdersByUserSQL, userID, size, pageOffset(page, size))
	if err != nil {
		return nil, 0, fmt.Errorf("listing orders for user %d: %w", userID, err)
	}
	orders, err := pgx.CollectRows(rows, scanOrder)
	if err != nil {
		return nil, 0, fmt.Errorf("listing orders for user %d: %w", userID, err)
	}

	var total int64
	if err := r.pool.QueryRow(ctx, countOrdersByUserSQL, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting orders for user %d: %w", userID, err)
	}
	return orders, total, nil
}

// List returns one page of all orders, newest first, plus the total count.
func (r *OrderRepository) List(ctx context.Context, page, size int) ([]order.Order, int64, error) {
	rows, err := r.pool.Query(ctx, listOrdersSQL, size, pageOffset(page, size))
	if err != nil {
		return nil, 0, fmt.Errorf("listing orders: %w", err)
	}
	orders, err := pgx.CollectRows(rows, scanOrder)
	if err != nil {
		return nil, 0, fmt.Errorf("listing orders: %w", err)
	}

	var total int64
	if err := r.pool.QueryRow(ctx, countOrdersSQL).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting orders: %w", err)
	}
	return orders, total, nil
}

// pageOffset converts a 1-based page number into a row offset.
func pageOffset(page, size int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * size
}

func scanOrder(row pgx.CollectableRow) (order.Order, error) {
	var (
		o      order.Order
		userID *int64
		status string
	)
	err := row.Scan(
		&o.ID, &o.Number, &userID, &o.DeliveryRuleID, &status, &o.OrderDate, &o.DeliveryDate,
		&o.ReceiverName, &o.ReceiverAddress, &o.ReceiverPhone, &o.ReceiverMessage,
		&o.TotalCost, &o.CouponCost, &o.PointCost, &o.CouponUsed, &o.InvoiceNumber, &o.AccessCode,
	)
	if err != nil {
		return o, err
	}

	o.Status = order.Status(status)
	if userID != nil {
		o.User = user.Authenticated(*userID)
	} else {
		o.User = user.Guest()
	}
	return o, nil
}
