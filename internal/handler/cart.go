package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mybooks/storefront/internal/rediscart"
)

// flushCart moves the user's fast cart into the durable cart and removes the
// fast-cart key.
func (h *Handler) flushCart(c *gin.Context) {
	userID, ok := userIDParam(c)
	if !ok {
		return
	}

	err := h.carts.FlushFastToDurable(c.Request.Context(), userID, rediscart.Key(userID))
	if err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// hydrateCart stages the user's durable cart into the fast store and clears
// the durable entries.
func (h *Handler) hydrateCart(c *gin.Context) {
	userID, ok := userIDParam(c)
	if !ok {
		return
	}

	err := h.carts.HydrateFastFromDurable(c.Request.Context(), userID, rediscart.Key(userID))
	if err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
