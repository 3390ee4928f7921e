package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mybooks/storefront/internal/domain/image"
)

const findThumbnailSQL = `SELECT id, book_id, kind, path
	FROM book_images WHERE book_id = $1 AND kind = $2`

var _ image.Repository = (*ImageRepository)(nil)

// ImageRepository implements image.Repository backed by PostgreSQL.
type ImageRepository struct {
	pool *pgxpool.Pool
}

// NewImageRepository returns an ImageRepository that uses the given pool.
func NewImageRepository(pool *pgxpool.Pool) *ImageRepository {
	return &ImageRepository{pool: pool}
}

// FindThumbnailByBook returns the thumbnail image record for a book.
func (r *ImageRepository) FindThumbnailByBook(ctx context.Context, bookID int64) (*image.Image, error) {
	rows, err := r.pool.Query(ctx, findThumbnailSQL, bookID, image.KindThumbnail)
	if err != nil {
		return nil, fmt.Errorf("finding thumbnail for book %d: %w", bookID, err)
	}

	img, err := pgx.CollectExactlyOneRow(rows, scanImage)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &image.ThumbnailNotFoundError{BookID: bookID}
		}
		return nil, fmt.Errorf("finding thumbnail for book %d: %w", bookID, err)
	}
	return &img, nil
}

func scanImage(row pgx.CollectableRow) (image.Image, error) {
	var img image.Image
	err := row.Scan(&img.ID, &img.BookID, &img.Kind, &img.Path)
	return img, err
}
