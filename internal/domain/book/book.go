// Package book holds the catalog entities and the read interfaces the order
// and cart flows depend on.
package book

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// NotFoundError indicates a requested book does not exist in the catalog.
type NotFoundError struct {
	BookID int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("book %d not found", e.BookID)
}

// InsufficientStockError is returned when a stock decrement would drop the
// available quantity below zero.
type InsufficientStockError struct {
	BookID    int64
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("book %d: requested %d but only %d in stock",
		e.BookID, e.Requested, e.Available)
}

// Book represents a catalog item available for purchase.
type Book struct {
	ID            int64
	Name          string
	ISBN          string
	PublisherName string
	Description   string
	OriginalCost  decimal.Decimal
	SaleCost      decimal.Decimal
	Stock         int
	Status        string
}

// Repository defines catalog persistence operations.
type Repository interface {
	GetByID(ctx context.Context, id int64) (*Book, error)
	GetByIDs(ctx context.Context, ids []int64) ([]Book, error)
	// DecreaseStock atomically decrements the stock of a book, failing with
	// InsufficientStockError when not enough copies remain.
	DecreaseStock(ctx context.Context, id int64, quantity int) error
}

// Brief is the projection returned by catalog search: just enough to render
// a result tile without touching the relational store.
type Brief struct {
	BookID   int64
	Image    string
	Name     string
	Rate     float64
	Cost     decimal.Decimal
	SaleCost decimal.Decimal
}

// SearchPage is one page of catalog search results.
type SearchPage struct {
	Books []Brief
	Total int64
	Page  int
	Size  int
}

// SearchIndex defines free-text catalog queries backed by a search engine.
// An empty query matches the whole catalog.
type SearchIndex interface {
	Search(ctx context.Context, query string, page, size int) (*SearchPage, error)
}
