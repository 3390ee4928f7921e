package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mybooks/storefront/internal/domain/refdata"
	"github.com/mybooks/storefront/internal/domain/user"
)

// CreateRequest holds the checkout input for creating an order. The order
// number is allocated by the caller; Create rejects duplicates.
type CreateRequest struct {
	Number          string
	DeliveryRuleID  int64
	DeliveryDate    time.Time
	ReceiverName    string
	ReceiverAddress string
	ReceiverPhone   string
	ReceiverMessage string
	TotalCost       decimal.Decimal
	CouponCost      decimal.Decimal
	PointCost       decimal.Decimal
}

// Service encapsulates order lifecycle business logic.
type Service struct {
	orders        Repository
	details       DetailRepository
	users         user.Repository
	deliveryRules refdata.DeliveryRuleRepository
	now           func() time.Time
}

// NewService creates an order Service with the required collaborators.
func NewService(
	orders Repository,
	details DetailRepository,
	users user.Repository,
	deliveryRules refdata.DeliveryRuleRepository,
) *Service {
	return &Service{
		orders:        orders,
		details:       details,
		users:         users,
		deliveryRules: deliveryRules,
		now:           time.Now,
	}
}

// Create places an order for an authenticated user. It resolves the delivery
// rule and the user, stamps the order date, and persists with the initial
// wait status. No write happens if any lookup fails.
func (s *Service) Create(ctx context.Context, req CreateRequest, userID int64) (*Order, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "resolve user")
	}
	return s.create(ctx, req, user.Authenticated(u.ID))
}

// CreateForGuest places an order bound to the guest identity, used for
// non-authenticated checkout.
func (s *Service) CreateForGuest(ctx context.Context, req CreateRequest) (*Order, error) {
	return s.create(ctx, req, user.Guest())
}

func (s *Service) create(ctx context.Context, req CreateRequest, owner user.Ref) (*Order, error) {
	if req.TotalCost.IsNegative() {
		return nil, ErrNegativeTotal
	}

	if _, err := s.deliveryRules.GetByID(ctx, req.DeliveryRuleID); err != nil {
		return nil, errors.Wrap(err, "resolve delivery rule")
	}

	taken, err := s.orders.NumberExists(ctx, req.Number)
	if err != nil {
		return nil, errors.Wrap(err, "check order number")
	}
	if taken {
		return nil, ErrNumberTaken
	}

	o := &Order{
		Number:          req.Number,
		User:            owner,
		DeliveryRuleID:  req.DeliveryRuleID,
		Status:          StatusWait,
		OrderDate:       s.now(),
		DeliveryDate:    req.DeliveryDate,
		ReceiverName:    req.ReceiverName,
		ReceiverAddress: req.ReceiverAddress,
		ReceiverPhone:   req.ReceiverPhone,
		ReceiverMessage: req.ReceiverMessage,
		TotalCost:       req.TotalCost,
		CouponCost:      req.CouponCost,
		PointCost:       req.PointCost,
		AccessCode:      uuid.New().String(),
	}
	if err := s.orders.Create(ctx, o); err != nil {
		return nil, errors.Wrap(err, "create order")
	}
	return o, nil
}

// ModifyStatus moves an order to a new status. The code must belong to the
// enumerated set and the move must be allowed by the transition table.
func (s *Service) ModifyStatus(ctx context.Context, orderID int64, code string) (*Order, error) {
	next, err := ParseStatus(code)
	if err != nil {
		return nil, err
	}
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return s.applyStatus(ctx, o, next)
}

// ModifyStatusByNumber is ModifyStatus keyed by the human-facing order number.
func (s *Service) ModifyStatusByNumber(ctx context.Context, number, code string) (*Order, error) {
	next, err := ParseStatus(code)
	if err != nil {
		return nil, err
	}
	o, err := s.orders.GetByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	return s.applyStatus(ctx, o, next)
}

func (s *Service) applyStatus(ctx context.Context, o *Order, next Status) (*Order, error) {
	if !o.Status.CanTransition(next) {
		return nil, &InvalidTransitionError{From: o.Status, To: next}
	}
	if err := s.orders.UpdateStatus(ctx, o.ID, next); err != nil {
		return nil, errors.Wrap(err, "update status")
	}
	o.Status = next
	return o, nil
}

// RegisterInvoice records the carrier invoice number on an existing order.
func (s *Service) RegisterInvoice(ctx context.Context, orderID int64, invoiceNumber string) (*Order, error) {
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := s.orders.UpdateInvoice(ctx, o.ID, invoiceNumber); err != nil {
		return nil, errors.Wrap(err, "register invoice")
	}
	o.InvoiceNumber = &invoiceNumber
	return o, nil
}

// NumberExists reports whether an order with exactly that number exists.
// Callers use it to allocate order numbers idempotently.
func (s *Service) NumberExists(ctx context.Context, number string) (bool, error) {
	return s.orders.NumberExists(ctx, number)
}

// GetByNumber returns the order with the given number.
func (s *Service) GetByNumber(ctx context.Context, number string) (*Order, error) {
	return s.orders.GetByNumber(ctx, number)
}

// ListForUser returns one page of a user's order history with the line items
// attached per order. This issues one detail query per row.
func (s *Service) ListForUser(ctx context.Context, userID int64, page, size int) (*UserPage, error) {
	rows, total, err := s.orders.ListByUser(ctx, userID, page, size)
	if err != nil {
		return nil, errors.Wrap(err, "list orders")
	}

	userOrders := make([]UserOrder, 0, len(rows))
	for _, o := range rows {
		details, err := s.details.ListByOrder(ctx, o.ID)
		if err != nil {
			return nil, errors.Wrapf(err, "list details for order %d", o.ID)
		}
		userOrders = append(userOrders, UserOrder{Order: o, Details: details})
	}

	return &UserPage{Orders: userOrders, Total: total, Page: page, Size: size}, nil
}

// ListForAdmin returns one page of the store-wide order listing.
func (s *Service) ListForAdmin(ctx context.Context, page, size int) (*AdminPage, error) {
	rows, total, err := s.orders.List(ctx, page, size)
	if err != nil {
		return nil, errors.Wrap(err, "list orders")
	}
	return &AdminPage{Orders: rows, Total: total, Page: page, Size: size}, nil
}
