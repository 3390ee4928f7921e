package order

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/mybooks/storefront/internal/domain/book"
	"github.com/mybooks/storefront/internal/domain/coupon"
	"github.com/mybooks/storefront/internal/domain/refdata"
)

// InvalidQuantityError indicates a line item with a non-positive quantity.
type InvalidQuantityError struct {
	BookID int64
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity must be greater than 0 for book %d", e.BookID)
}

// LineRequest is the input for constructing one order line. UserCouponID and
// WrapID are optional; when set they must resolve to existing rows.
type LineRequest struct {
	BookID       int64
	Quantity     int
	BookCost     decimal.Decimal
	UserCouponID *int64
	WrapID       *int64
}

// DetailService builds and persists order lines.
type DetailService struct {
	details DetailRepository
	orders  Repository
	books   book.Repository
	coupons coupon.Repository
	wraps   refdata.WrapRepository
}

// NewDetailService creates a DetailService with the required collaborators.
func NewDetailService(
	details DetailRepository,
	orders Repository,
	books book.Repository,
	coupons coupon.Repository,
	wraps refdata.WrapRepository,
) *DetailService {
	return &DetailService{
		details: details,
		orders:  orders,
		books:   books,
		coupons: coupons,
		wraps:   wraps,
	}
}

// CreateLine resolves the referenced book, order, and optional coupon and
// wrap, then persists one order line. A supplied coupon must be unspent and
// its minimum order amount must be covered by the line subtotal. Stock is
// reserved before the line is written; any failure aborts before the write.
// CouponUsed is true exactly when a coupon id was supplied.
func (s *DetailService) CreateLine(ctx context.Context, req LineRequest, orderNumber string) (*Detail, error) {
	if req.Quantity <= 0 {
		return nil, &InvalidQuantityError{BookID: req.BookID}
	}

	b, err := s.books.GetByID(ctx, req.BookID)
	if err != nil {
		return nil, errors.Wrap(err, "resolve book")
	}

	o, err := s.orders.GetByNumber(ctx, orderNumber)
	if err != nil {
		return nil, err
	}

	couponUsed := false
	if req.UserCouponID != nil {
		c, err := s.coupons.GetByID(ctx, *req.UserCouponID)
		if err != nil {
			return nil, errors.Wrap(err, "resolve coupon")
		}
		if c.Used {
			return nil, coupon.ErrAlreadyUsed
		}
		lineSubtotal := req.BookCost.Mul(decimal.NewFromInt(int64(req.Quantity)))
		if _, err := coupon.Apply(c, lineSubtotal); err != nil {
			return nil, errors.Wrap(err, "apply coupon")
		}
		couponUsed = true
	}

	if req.WrapID != nil {
		if _, err := s.wraps.GetByID(ctx, *req.WrapID); err != nil {
			return nil, errors.Wrap(err, "resolve wrap")
		}
	}

	if err := s.books.DecreaseStock(ctx, b.ID, req.Quantity); err != nil {
		return nil, errors.Wrap(err, "reserve stock")
	}

	d := &Detail{
		OrderID:      o.ID,
		BookID:       b.ID,
		Quantity:     req.Quantity,
		BookCost:     req.BookCost,
		CouponUsed:   couponUsed,
		Status:       DetailStatusWait,
		UserCouponID: req.UserCouponID,
		WrapID:       req.WrapID,
	}
	if err := s.details.Create(ctx, d); err != nil {
		return nil, errors.Wrap(err, "create order detail")
	}

	if couponUsed {
		if err := s.coupons.MarkUsed(ctx, *req.UserCouponID); err != nil {
			return nil, errors.Wrap(err, "mark coupon used")
		}
	}

	return d, nil
}

// CreateLines applies CreateLine to each request in input order. Atomicity
// beyond the surrounding transaction boundary is not provided.
func (s *DetailService) CreateLines(ctx context.Context, reqs []LineRequest, orderNumber string) ([]Detail, error) {
	details := make([]Detail, 0, len(reqs))
	for _, req := range reqs {
		d, err := s.CreateLine(ctx, req, orderNumber)
		if err != nil {
			return nil, err
		}
		details = append(details, *d)
	}
	return details, nil
}

// ListByOrder returns the persisted line items of an order.
func (s *DetailService) ListByOrder(ctx context.Context, orderID int64) ([]Detail, error) {
	return s.details.ListByOrder(ctx, orderID)
}

// AnyCouponUsed reports whether any of the given lines spent a coupon.
func AnyCouponUsed(details []Detail) bool {
	for _, d := range details {
		if d.CouponUsed {
			return true
		}
	}
	return false
}
