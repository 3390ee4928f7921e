// Package cart implements the two cart representations and the explicit
// synchronization between them: a durable per-user cart in the relational
// store and a fast per-user list in the cache, exchanged around login and
// logout boundaries.
package cart

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNoCart is returned by Store.FindByUser when the user has no durable cart.
var ErrNoCart = errors.New("no cart for user")

// Cart is the durable per-user cart container.
type Cart struct {
	ID     int64
	UserID int64
}

// Entry is a durable cart line: just the book and how many copies.
type Entry struct {
	BookID   int64
	Quantity int
}

// Detail is a fast-store cart line, denormalized so the storefront can render
// it without touching the relational store.
type Detail struct {
	BookID    int64           `json:"book_id"`
	Quantity  int             `json:"quantity"`
	Name      string          `json:"name"`
	Thumbnail string          `json:"thumbnail"`
	SalePrice decimal.Decimal `json:"sale_price"`
}

// Store defines the durable cart persistence operations.
type Store interface {
	FindByUser(ctx context.Context, userID int64) (*Cart, error)
	Create(ctx context.Context, userID int64) (*Cart, error)
	ListEntries(ctx context.Context, cartID int64) ([]Entry, error)
	DeleteEntries(ctx context.Context, cartID int64) error
	InsertEntry(ctx context.Context, cartID int64, e Entry) error
}

// FastStore defines the cache-backed cart with list semantics: ordered
// entries under a single per-user key.
type FastStore interface {
	// Range returns all entries under key, in insertion order. A missing key
	// yields an empty slice, not an error.
	Range(ctx context.Context, key string) ([]Detail, error)
	// Push appends one entry to the tail of the list at key.
	Push(ctx context.Context, key string, d Detail) error
	// Delete removes the key entirely.
	Delete(ctx context.Context, key string) error
}
