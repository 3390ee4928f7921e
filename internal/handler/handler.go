// Package handler exposes the storefront HTTP API.
package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mybooks/storefront/internal/domain/book"
	"github.com/mybooks/storefront/internal/domain/cart"
	"github.com/mybooks/storefront/internal/domain/order"
	"github.com/mybooks/storefront/internal/domain/refdata"
)

// Handler carries the domain services behind the HTTP API.
type Handler struct {
	orders        *order.Service
	lines         *order.DetailService
	carts         *cart.Syncer
	books         book.Repository
	index         book.SearchIndex
	deliveryRules refdata.DeliveryRuleRepository
	wraps         refdata.WrapRepository
	returnRules   refdata.ReturnRuleRepository
}

// New creates a Handler with the required collaborators.
func New(
	orders *order.Service,
	lines *order.DetailService,
	carts *cart.Syncer,
	books book.Repository,
	index book.SearchIndex,
	deliveryRules refdata.DeliveryRuleRepository,
	wraps refdata.WrapRepository,
	returnRules refdata.ReturnRuleRepository,
) *Handler {
	return &Handler{
		orders:        orders,
		lines:         lines,
		carts:         carts,
		books:         books,
		index:         index,
		deliveryRules: deliveryRules,
		wraps:         wraps,
		returnRules:   returnRules,
	}
}

// Routes registers all API routes on the engine under /api.
func (h *Handler) Routes(r *gin.Engine) {
	api := r.Group("/api")

	api.POST("/orders", h.createOrder)
	api.GET("/orders/:number", h.getOrder)
	api.GET("/orders/:number/exists", h.orderNumberExists)

	api.GET("/users/:userID/orders", h.listUserOrders)
	api.POST("/users/:userID/cart/flush", h.flushCart)
	api.POST("/users/:userID/cart/hydrate", h.hydrateCart)

	api.GET("/books/:id", h.getBook)
	api.GET("/search", h.searchBooks)

	api.GET("/refdata/delivery-rules/:id", h.getDeliveryRule)
	api.GET("/refdata/wraps/:id", h.getWrap)
	api.GET("/refdata/return-rules/:name", h.getReturnRule)

	admin := api.Group("/admin")
	admin.GET("/orders", h.listAllOrders)
	admin.PATCH("/orders/:id/status", h.modifyOrderStatus)
	admin.PATCH("/orders/:id/invoice", h.registerInvoice)
}

// userIDParam parses the :userID path parameter.
func userIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("userID"), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "invalid user id")
		return 0, false
	}
	return id, true
}

// pageQuery parses page/size query parameters with sane bounds.
func pageQuery(c *gin.Context) (page, size int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	size, _ = strconv.Atoi(c.DefaultQuery("size", "20"))
	if size < 1 || size > 100 {
		size = 20
	}
	return page, size
}
