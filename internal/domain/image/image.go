// Package image holds book image metadata lookups. Only the thumbnail kind
// is consumed by the core flows; other kinds stay in object storage.
package image

import (
	"context"
	"fmt"
)

// ThumbnailNotFoundError indicates no thumbnail image is registered for a book.
type ThumbnailNotFoundError struct {
	BookID int64
}

func (e *ThumbnailNotFoundError) Error() string {
	return fmt.Sprintf("no thumbnail image registered for book %d", e.BookID)
}

// Kind values stored in the image table.
const (
	KindThumbnail = "thumbnail"
	KindContent   = "content"
)

// Image is a stored image reference for a book.
type Image struct {
	ID     int64
	BookID int64
	Kind   string
	Path   string
}

// Repository defines image metadata lookups.
type Repository interface {
	FindThumbnailByBook(ctx context.Context, bookID int64) (*Image, error)
}
