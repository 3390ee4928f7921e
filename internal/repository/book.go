package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mybooks/storefront/internal/domain/book"
)

const (
	getBookByIDSQL = `SELECT id, name, isbn, publisher_name, description, original_cost, sale_cost, stock, status
		FROM books WHERE id = $1`

	getBooksByIDsSQL = `SELECT id, name, isbn, publisher_name, description, original_cost, sale_cost, stock, status
		FROM books WHERE id = ANY($1) ORDER BY id`

	decreaseStockSQL = `UPDATE books SET stock = stock - $2
		WHERE id = $1 AND stock >= $2`

	getStockSQL = `SELECT stock FROM books WHERE id = $1`
)

var _ book.Repository = (*BookRepository)(nil)

// BookRepository implements book.Repository backed by PostgreSQL.
type BookRepository struct {
	pool *pgxpool.Pool
}

// NewBookRepository returns a BookRepository that uses the given pool.
func NewBookRepository(pool *pgxpool.Pool) *BookRepository {
	return &BookRepository{pool: pool}
}

// GetByID returns a single book by its identifier.
func (r *BookRepository) GetByID(ctx context.Context, id int64) (*book.Book, error) {
	rows, err := r.pool.Query(ctx, getBookByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting book %d: %w", id, err)
	}

	b, err := pgx.CollectExactlyOneRow(rows, scanBook)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &book.NotFoundError{BookID: id}
		}
		return nil, fmt.Errorf("getting book %d: %w", id, err)
	}
	return &b, nil
}

// GetByIDs returns books matching any of the given IDs.
func (r *BookRepository) GetByIDs(ctx context.Context, ids []int64) ([]book.Book, error) {
	rows, err := r.pool.Query(ctx, getBooksByIDsSQL, ids)
	if err != nil {
		return nil, fmt.Errorf("getting books by ids: %w", err)
	}
	return pgx.CollectRows(rows, scanBook)
}

// DecreaseStock decrements the stock of a book inside a single guarded
// UPDATE so concurrent purchases cannot drive stock negative.
func (r *BookRepository) DecreaseStock(ctx context.Context, id int64, quantity int) error {
	tag, err := r.pool.Exec(ctx, decreaseStockSQL, id, quantity)
	if err != nil {
		return fmt.Errorf("decreasing stock for book %d: %w", id, err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	// The guarded update matched nothing: either the book is unknown or the
	// remaining stock is too low. Distinguish the two for the caller.
	var available int
	err = r.pool.QueryRow(ctx, getStockSQL, id).Scan(&available)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &book.NotFoundError{BookID: id}
		}
		return fmt.Errorf("decreasing stock for book %d: %w", id, err)
	}
	return &book.InsufficientStockError{BookID: id, Requested: quantity, Available: available}
}

func scanBook(row pgx.CollectableRow) (book.Book, error) {
	var b book.Book
	err := row.Scan(
		&b.ID, &b.Name, &b.ISBN, &b.PublisherName, &b.Description,
		&b.OriginalCost, &b.SaleCost, &b.Stock, &b.Status,
	)
	return b, err
}
