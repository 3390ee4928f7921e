package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/mybooks/storefront/internal/domain/order"
)

const dateLayout = "2006-01-02"

type orderLineRequest struct {
	BookID       int64           `json:"book_id" binding:"required"`
	Quantity     int             `json:"quantity" binding:"required"`
	BookCost     decimal.Decimal `json:"book_cost"`
	UserCouponID *int64          `json:"user_coupon_id"`
	WrapID       *int64          `json:"wrap_id"`
}

type createOrderRequest struct {
	Number          string             `json:"number" binding:"required"`
	DeliveryRuleID  int64              `json:"delivery_rule_id" binding:"required"`
	DeliveryDate    string             `json:"delivery_date" binding:"required"`
	ReceiverName    string             `json:"receiver_name" binding:"required"`
	ReceiverAddress string             `json:"receiver_address" binding:"required"`
	ReceiverPhone   string             `json:"receiver_phone" binding:"required"`
	ReceiverMessage string             `json:"receiver_message"`
	TotalCost       decimal.Decimal    `json:"total_cost"`
	CouponCost      decimal.Decimal    `json:"coupon_cost"`
	PointCost       decimal.Decimal    `json:"point_cost"`
	Lines           []orderLineRequest `json:"lines" binding:"required,min=1"`
}

type orderLineResponse struct {
	ID           int64           `json:"id"`
	BookID       int64           `json:"book_id"`
	Quantity     int             `json:"quantity"`
	BookCost     decimal.Decimal `json:"book_cost"`
	CouponUsed   bool            `json:"coupon_used"`
	Status       string          `json:"status"`
	UserCouponID *int64          `json:"user_coupon_id,omitempty"`
	WrapID       *int64          `json:"wrap_id,omitempty"`
}

type orderResponse struct {
	ID              int64               `json:"id"`
	Number          string              `json:"number"`
	UserID          *int64              `json:"user_id,omitempty"`
	DeliveryRuleID  int64               `json:"delivery_rule_id"`
	Status          string              `json:"status"`
	OrderDate       time.Time           `json:"order_date"`
	DeliveryDate    string              `json:"delivery_date"`
	ReceiverName    string              `json:"receiver_name"`
	ReceiverAddress string              `json:"receiver_address"`
	ReceiverPhone   string              `json:"receiver_phone"`
	ReceiverMessage string              `json:"receiver_message,omitempty"`
	TotalCost       decimal.Decimal     `json:"total_cost"`
	CouponCost      decimal.Decimal     `json:"coupon_cost"`
	PointCost       decimal.Decimal     `json:"point_cost"`
	CouponUsed      bool                `json:"coupon_used"`
	InvoiceNumber   *string             `json:"invoice_number,omitempty"`
	Lines           []orderLineResponse `json:"lines,omitempty"`
}

type createOrderResponse struct {
	orderResponse
	AccessCode string `json:"access_code,omitempty"`
}

type orderPageResponse struct {
	Orders []orderResponse `json:"orders"`
	Total  int64           `json:"total"`
	Page   int             `json:"page"`
	Size   int             `json:"size"`
}

// createOrder places an order with its line items in one request. A missing
// X-User-Id header means guest checkout; the response then carries the access
// code the guest needs to look the order up later.
func (h *Handler) createOrder(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid order payload: "+err.Error())
		return
	}

	deliveryDate, err := time.Parse(dateLayout, req.DeliveryDate)
	if err != nil {
		badRequest(c, "invalid delivery_date, want YYYY-MM-DD")
		return
	}

	createReq := order.CreateRequest{
		Number:          req.Number,
		DeliveryRuleID:  req.DeliveryRuleID,
		DeliveryDate:    deliveryDate,
		ReceiverName:    req.ReceiverName,
		ReceiverAddress: req.ReceiverAddress,
		ReceiverPhone:   req.ReceiverPhone,
		ReceiverMessage: req.ReceiverMessage,
		TotalCost:       req.TotalCost,
		CouponCost:      req.CouponCost,
		PointCost:       req.PointCost,
	}

	ctx := c.Request.Context()
	var o *order.Order
	if userID, ok := requestUserID(c); ok {
		o, err = h.orders.Create(ctx, createReq, userID)
	} else {
		o, err = h.orders.CreateForGuest(ctx, createReq)
	}
	if err != nil {
		respondError(c, err)
		return
	}

	lineReqs := make([]order.LineRequest, 0, len(req.Lines))
	for _, l := range req.Lines {
		lineReqs = append(lineReqs, order.LineRequest{
			BookID:       l.BookID,
			Quantity:     l.Quantity,
			BookCost:     l.BookCost,
			UserCouponID: l.UserCouponID,
			WrapID:       l.WrapID,
		})
	}
	details, err := h.lines.CreateLines(ctx, lineReqs, o.Number)
	if err != nil {
		respondError(c, err)
		return
	}
	o.CouponUsed = order.AnyCouponUsed(details)

	resp := createOrderResponse{orderResponse: toOrderResponse(o, details)}
	if o.User.IsGuest() {
		resp.AccessCode = o.AccessCode
	}
	c.JSON(http.StatusCreated, resp)
}

// getOrder returns one order with its line items. Guest orders additionally
// require the access_code query parameter issued at checkout; a wrong code is
// indistinguishable from a missing order.
func (h *Handler) getOrder(c *gin.Context) {
	number := c.Param("number")

	o, err := h.orders.GetByNumber(c.Request.Context(), number)
	if err != nil {
		respondError(c, err)
		return
	}
	if o.User.IsGuest() && c.Query("access_code") != o.AccessCode {
		respondError(c, &order.NotFoundError{Number: number})
		return
	}

	details, err := h.lines.ListByOrder(c.Request.Context(), o.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(o, details))
}

// orderNumberExists reports whether an order number is already taken, so
// clients can allocate numbers idempotently.
func (h *Handler) orderNumberExists(c *gin.Context) {
	exists, err := h.orders.NumberExists(c.Request.Context(), c.Param("number"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"exists": exists})
}

// listUserOrders returns one page of a user's order history, line items
// included.
func (h *Handler) listUserOrders(c *gin.Context) {
	userID, ok := userIDParam(c)
	if !ok {
		return
	}
	page, size := pageQuery(c)

	result, err := h.orders.ListForUser(c.Request.Context(), userID, page, size)
	if err != nil {
		respondError(c, err)
		return
	}

	orders := make([]orderResponse, 0, len(result.Orders))
	for _, uo := range result.Orders {
		orders = append(orders, toOrderResponse(&uo.Order, uo.Details))
	}
	c.JSON(http.StatusOK, orderPageResponse{
		Orders: orders, Total: result.Total, Page: result.Page, Size: result.Size,
	})
}

// listAllOrders returns one page of the store-wide order listing.
func (h *Handler) listAllOrders(c *gin.Context) {
	page, size := pageQuery(c)

	result, err := h.orders.ListForAdmin(c.Request.Context(), page, size)
	if err != nil {
		respondError(c, err)
		return
	}

	orders := make([]orderResponse, 0, len(result.Orders))
	for i := range result.Orders {
		orders = append(orders, toOrderResponse(&result.Orders[i], nil))
	}
	c.JSON(http.StatusOK, orderPageResponse{
		Orders: orders, Total: result.Total, Page: result.Page, Size: result.Size,
	})
}

type modifyStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// modifyOrderStatus moves an order along its lifecycle.
func (h *Handler) modifyOrderStatus(c *gin.Context) {
	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequest(c, "invalid order id")
		return
	}
	var req modifyStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid status payload: "+err.Error())
		return
	}

	o, err := h.orders.ModifyStatus(c.Request.Context(), orderID, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(o, nil))
}

type registerInvoiceRequest struct {
	InvoiceNumber string `json:"invoice_number" binding:"required"`
}

// registerInvoice records the carrier invoice number on an order.
func (h *Handler) registerInvoice(c *gin.Context) {
	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequest(c, "invalid order id")
		return
	}
	var req registerInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid invoice payload: "+err.Error())
		return
	}

	o, err := h.orders.RegisterInvoice(c.Request.Context(), orderID, req.InvoiceNumber)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(o, nil))
}

// requestUserID reads the authenticated account id from the X-User-Id header.
// Absent or malformed values mean the guest identity.
func requestUserID(c *gin.Context) (int64, bool) {
	raw := c.GetHeader("X-User-Id")
	if raw == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func toOrderResponse(o *order.Order, details []order.Detail) orderResponse {
	resp := orderResponse{
		ID:              o.ID,
		Number:          o.Number,
		DeliveryRuleID:  o.DeliveryRuleID,
		Status:          string(o.Status),
		OrderDate:       o.OrderDate,
		DeliveryDate:    o.DeliveryDate.Format(dateLayout),
		ReceiverName:    o.ReceiverName,
		ReceiverAddress: o.ReceiverAddress,
		ReceiverPhone:   o.ReceiverPhone,
		ReceiverMessage: o.ReceiverMessage,
		TotalCost:       o.TotalCost,
		CouponCost:      o.CouponCost,
		PointCost:       o.PointCost,
		CouponUsed:      o.CouponUsed,
		InvoiceNumber:   o.InvoiceNumber,
	}
	if id, ok := o.User.ID(); ok {
		resp.UserID = &id
	}
	for _, d := range details {
		resp.Lines = append(resp.Lines, orderLineResponse{
			ID:           d.ID,
			BookID:       d.BookID,
			Quantity:     d.Quantity,
			BookCost:     d.BookCost,
			CouponUsed:   d.CouponUsed,
			Status:       string(d.Status),
			UserCouponID: d.UserCouponID,
			WrapID:       d.WrapID,
		})
	}
	return resp
}
