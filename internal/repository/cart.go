package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mybooks/storefront/internal/domain/cart"
)

const (
	findCartByUserSQL = `SELECT id, user_id FROM carts WHERE user_id = $1`

	createCartSQL = `INSERT INTO carts (user_id) VALUES ($1) RETURNING id`

	listCartEntriesSQL = `SELECT book_id, quantity FROM cart_entries
		WHERE cart_id = $1 ORDER BY id`

	deleteCartEntriesSQL = `DELETE FROM cart_entries WHERE cart_id = $1`

	insertCartEntrySQL = `INSERT INTO cart_entries (cart_id, book_id, quantity)
		VALUES ($1, $2, $3)`
)

var _ cart.Store = (*CartStore)(nil)

// CartStore implements cart.Store backed by PostgreSQL.
type CartStore struct {
	pool *pgxpool.Pool
}

// NewCartStore returns a CartStore that uses the given pool.
func NewCartStore(pool *pgxpool.Pool) *CartStore {
	return &CartStore{pool: pool}
}

// FindByUser returns the cart owned by a user, or cart.ErrNoCart when the
// user has never had one.
func (s *CartStore) FindByUser(ctx context.Context, userID int64) (*cart.Cart, error) {
	var c cart.Cart
	err := s.pool.QueryRow(ctx, findCartByUserSQL, userID).Scan(&c.ID, &c.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, cart.ErrNoCart
		}
		return nil, fmt.Errorf("finding cart for user %d: %w", userID, err)
	}
	return &c, nil
}

// Create allocates a new empty cart for a user.
func (s *CartStore) Create(ctx context.Context, userID int64) (*cart.Cart, error) {
	c := cart.Cart{UserID: userID}
	err := s.pool.QueryRow(ctx, createCartSQL, userID).Scan(&c.ID)
	if err != nil {
		return nil, fmt.Errorf("creating cart for user %d: %w", userID, err)
	}
	return &c, nil
}

// ListEntries returns the cart lines in insertion order.
func (s *CartStore) ListEntries(ctx context.Context, cartID int64) ([]cart.Entry, error) {
	rows, err := s.pool.Query(ctx, listCartEntriesSQL, cartID)
	if err != nil {
		return nil, fmt.Errorf("listing entries of cart %d: %w", cartID, err)
	}
	return pgx.CollectRows(rows, scanCartEntry)
}

// DeleteEntries removes all lines of a cart. Deleting from an empty cart is
// not an error.
func (s *CartStore) DeleteEntries(ctx context.Context, cartID int64) error {
	_, err := s.pool.Exec(ctx, deleteCartEntriesSQL, cartID)
	if err != nil {
		return fmt.Errorf("deleting entries of cart %d: %w", cartID, err)
	}
	return nil
}

// InsertEntry appends one line to a cart.
func (s *CartStore) InsertEntry(ctx context.Context, cartID int64, e cart.Entry) error {
	_, err := s.pool.Exec(ctx, insertCartEntrySQL, cartID, e.BookID, e.Quantity)
	if err != nil {
		return fmt.Errorf("inserting entry into cart %d: %w", cartID, err)
	}
	return nil
}

func scanCartEntry(row pgx.CollectableRow) (cart.Entry, error) {
	var e cart.Entry
	err := row.Scan(&e.BookID, &e.Quantity)
	return e, err
}
