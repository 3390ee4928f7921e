// Package order implements the order aggregate: the order entity, its line
// items, the status machine, and the services that create and mutate them.
package order

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/mybooks/storefront/internal/domain/user"
)

var (
	// ErrNumberTaken is returned when an order number is already in use.
	ErrNumberTaken = errors.New("order number already taken")
	// ErrNegativeTotal is returned when an order is created with a negative
	// total cost.
	ErrNegativeTotal = errors.New("total cost must not be negative")
)

// NotFoundError indicates a referenced order does not exist. Exactly one of
// ID or Number identifies the missed lookup.
type NotFoundError struct {
	ID     int64
	Number string
}

func (e *NotFoundError) Error() string {
	if e.Number != "" {
		return fmt.Sprintf("order %q not found", e.Number)
	}
	return fmt.Sprintf("order %d not found", e.ID)
}

// Order represents one purchase transaction. Number is the human-facing
// identifier used for customer lookups; AccessCode lets a guest retrieve
// the order without an account.
type Order struct {
	ID              int64
	Number          string
	User            user.Ref
	DeliveryRuleID  int64
	Status          Status
	OrderDate       time.Time
	DeliveryDate    time.Time
	ReceiverName    string
	ReceiverAddress string
	ReceiverPhone   string
	ReceiverMessage string
	TotalCost       decimal.Decimal
	CouponCost      decimal.Decimal
	PointCost       decimal.Decimal
	CouponUsed      bool
	InvoiceNumber   *string
	AccessCode      string
}

// Detail is one line item within an order.
type Detail struct {
	ID           int64
	OrderID      int64
	BookID       int64
	Quantity     int
	BookCost     decimal.Decimal
	CouponUsed   bool
	Status       DetailStatus
	UserCouponID *int64
	WrapID       *int64
}

// UserOrder is an order with its line items attached, as returned by the
// user-scoped listing.
type UserOrder struct {
	Order
	Details []Detail
}

// UserPage is one page of a user's order history.
type UserPage struct {
	Orders []UserOrder
	Total  int64
	Page   int
	Size   int
}

// AdminPage is one page of the store-wide order listing.
type AdminPage struct {
	Orders []Order
	Total  int64
	Page   int
	Size   int
}

// Repository defines persistence operations for orders.
type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id int64) (*Order, error)
	GetByNumber(ctx context.Context, number string) (*Order, error)
	NumberExists(ctx context.Context, number string) (bool, error)
	UpdateStatus(ctx context.Context, id int64, status Status) error
	UpdateInvoice(ctx context.Context, id int64, invoiceNumber string) error
	ListByUser(ctx context.Context, userID int64, page, size int) ([]Order, int64, error)
	List(ctx context.Context, page, size int) ([]Order, int64, error)
}

// DetailRepository defines persistence operations for order lines.
type DetailRepository interface {
	Create(ctx context.Context, d *Detail) error
	ListByOrder(ctx context.Context, orderID int64) ([]Detail, error)
}
