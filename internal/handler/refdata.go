package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type deliveryRuleResponse struct {
	ID           int64           `json:"id"`
	Name         string          `json:"name"`
	CompanyName  string          `json:"company_name"`
	Cost         decimal.Decimal `json:"cost"`
	FreeOverCost decimal.Decimal `json:"free_over_cost"`
	Available    bool            `json:"available"`
}

type wrapResponse struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	Cost      decimal.Decimal `json:"cost"`
	Available bool            `json:"available"`
}

type returnRuleResponse struct {
	Name        string          `json:"name"`
	TermDays    int             `json:"term_days"`
	DeliveryFee decimal.Decimal `json:"delivery_fee"`
	Available   bool            `json:"available"`
}

// getDeliveryRule returns one shipping fee policy.
func (h *Handler) getDeliveryRule(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequest(c, "invalid delivery rule id")
		return
	}

	dr, err := h.deliveryRules.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, deliveryRuleResponse{
		ID:           dr.ID,
		Name:         dr.Name,
		CompanyName:  dr.CompanyName,
		Cost:         dr.Cost,
		FreeOverCost: dr.FreeOverCost,
		Available:    dr.Available,
	})
}

// getWrap returns one gift wrap option.
func (h *Handler) getWrap(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequest(c, "invalid wrap id")
		return
	}

	w, err := h.wraps.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, wrapResponse{
		ID: w.ID, Name: w.Name, Cost: w.Cost, Available: w.Available,
	})
}

// getReturnRule returns the return policy registered under a name.
func (h *Handler) getReturnRule(c *gin.Context) {
	rr, err := h.returnRules.GetByName(c.Request.Context(), c.Param("name"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, returnRuleResponse{
		Name:        rr.Name,
		TermDays:    rr.TermDays,
		DeliveryFee: rr.DeliveryFee,
		Available:   rr.Available,
	})
}
