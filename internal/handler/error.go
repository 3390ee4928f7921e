package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/mybooks/storefront/internal/domain/book"
	"github.com/mybooks/storefront/internal/domain/cart"
	"github.com/mybooks/storefront/internal/domain/coupon"
	"github.com/mybooks/storefront/internal/domain/image"
	"github.com/mybooks/storefront/internal/domain/order"
	"github.com/mybooks/storefront/internal/domain/refdata"
	"github.com/mybooks/storefront/internal/domain/user"
)

// errorResponse is the uniform error payload of the API.
type errorResponse struct {
	Error string `json:"error"`
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Error: msg})
}

// respondError maps domain errors to HTTP status codes: unknown references
// become 404, business rule conflicts 409, malformed input 400, and
// everything else 500.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError

	switch {
	case isNotFound(err):
		status = http.StatusNotFound
	case isConflict(err):
		status = http.StatusConflict
	case isBadInput(err):
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		zctx.From(c.Request.Context()).Error("Request failed", zap.Error(err))
		c.AbortWithStatusJSON(status, errorResponse{Error: "internal error"})
		return
	}
	c.AbortWithStatusJSON(status, errorResponse{Error: err.Error()})
}

func isNotFound(err error) bool {
	var (
		userErr     *user.NotFoundError
		bookErr     *book.NotFoundError
		orderErr    *order.NotFoundError
		couponErr   *coupon.NotFoundError
		imageErr    *image.ThumbnailNotFoundError
		deliveryErr *refdata.DeliveryRuleNotFoundError
		wrapErr     *refdata.WrapNotFoundError
		returnErr   *refdata.ReturnRuleNotFoundError
	)
	return errors.As(err, &userErr) ||
		errors.As(err, &bookErr) ||
		errors.As(err, &orderErr) ||
		errors.As(err, &couponErr) ||
		errors.As(err, &imageErr) ||
		errors.As(err, &deliveryErr) ||
		errors.As(err, &wrapErr) ||
		errors.As(err, &returnErr) ||
		errors.Is(err, cart.ErrNoCart)
}

func isConflict(err error) bool {
	var (
		transitionErr *order.InvalidTransitionError
		stockErr      *book.InsufficientStockError
	)
	return errors.Is(err, order.ErrNumberTaken) ||
		errors.Is(err, coupon.ErrAlreadyUsed) ||
		errors.As(err, &transitionErr) ||
		errors.As(err, &stockErr)
}

func isBadInput(err error) bool {
	var (
		statusErr   *order.UnknownStatusError
		quantityErr *order.InvalidQuantityError
	)
	return errors.Is(err, order.ErrNegativeTotal) ||
		errors.Is(err, coupon.ErrOrderBelowMinimum) ||
		errors.As(err, &statusErr) ||
		errors.As(err, &quantityErr)
}
