package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type bookResponse struct {
	ID            int64           `json:"id"`
	Name          string          `json:"name"`
	ISBN          string          `json:"isbn"`
	PublisherName string          `json:"publisher_name"`
	Description   string          `json:"description,omitempty"`
	OriginalCost  decimal.Decimal `json:"original_cost"`
	SaleCost      decimal.Decimal `json:"sale_cost"`
	Stock         int             `json:"stock"`
	Status        string          `json:"status"`
}

type searchHitResponse struct {
	BookID   int64           `json:"book_id"`
	Image    string          `json:"image"`
	Name     string          `json:"name"`
	Rate     float64         `json:"rate"`
	Cost     decimal.Decimal `json:"cost"`
	SaleCost decimal.Decimal `json:"sale_cost"`
}

type searchPageResponse struct {
	Books []searchHitResponse `json:"books"`
	Total int64               `json:"total"`
	Page  int                 `json:"page"`
	Size  int                 `json:"size"`
}

// getBook returns one catalog item.
func (h *Handler) getBook(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequest(c, "invalid book id")
		return
	}

	b, err := h.books.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, bookResponse{
		ID:            b.ID,
		Name:          b.Name,
		ISBN:          b.ISBN,
		PublisherName: b.PublisherName,
		Description:   b.Description,
		OriginalCost:  b.OriginalCost,
		SaleCost:      b.SaleCost,
		Stock:         b.Stock,
		Status:        b.Status,
	})
}

// searchBooks runs a free-text catalog query. An empty q matches everything.
func (h *Handler) searchBooks(c *gin.Context) {
	page, size := pageQuery(c)

	result, err := h.index.Search(c.Request.Context(), c.Query("q"), page, size)
	if err != nil {
		respondError(c, err)
		return
	}

	hits := make([]searchHitResponse, 0, len(result.Books))
	for _, b := range result.Books {
		hits = append(hits, searchHitResponse{
			BookID:   b.BookID,
			Image:    b.Image,
			Name:     b.Name,
			Rate:     b.Rate,
			Cost:     b.Cost,
			SaleCost: b.SaleCost,
		})
	}
	c.JSON(http.StatusOK, searchPageResponse{
		Books: hits, Total: result.Total, Page: result.Page, Size: result.Size,
	})
}
