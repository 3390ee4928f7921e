package cart

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/mybooks/storefront/internal/domain/book"
	"github.com/mybooks/storefront/internal/domain/image"
	"github.com/mybooks/storefront/internal/domain/user"
)

// Syncer performs one-shot synchronization between the fast and durable cart
// representations. Each direction replaces the destination wholesale; nothing
// is merged.
type Syncer struct {
	durable Store
	fast    FastStore
	users   user.Repository
	books   book.Repository
	images  image.Repository
}

// NewSyncer creates a Syncer with the required collaborators.
func NewSyncer(
	durable Store,
	fast FastStore,
	users user.Repository,
	books book.Repository,
	images image.Repository,
) *Syncer {
	return &Syncer{
		durable: durable,
		fast:    fast,
		users:   users,
		books:   books,
		images:  images,
	}
}

// FlushFastToDurable moves the fast cart at key into the user's durable cart,
// replacing all existing durable entries, then removes the fast key. An empty
// or missing fast cart is a no-op. Every referenced book must still exist.
func (s *Syncer) FlushFastToDurable(ctx context.Context, userID int64, key string) error {
	details, err := s.fast.Range(ctx, key)
	if err != nil {
		return errors.Wrap(err, "read fast cart")
	}
	if len(details) == 0 {
		return nil
	}

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return errors.Wrap(err, "resolve user")
	}

	c, err := s.findOrCreateCart(ctx, u.ID)
	if err != nil {
		return err
	}

	if err := s.durable.DeleteEntries(ctx, c.ID); err != nil {
		return errors.Wrap(err, "clear durable cart")
	}

	for _, d := range details {
		if _, err := s.books.GetByID(ctx, d.BookID); err != nil {
			return errors.Wrapf(err, "resolve book %d", d.BookID)
		}
		e := Entry{BookID: d.BookID, Quantity: d.Quantity}
		if err := s.durable.InsertEntry(ctx, c.ID, e); err != nil {
			return errors.Wrapf(err, "insert entry for book %d", d.BookID)
		}
	}

	if err := s.fast.Delete(ctx, key); err != nil {
		return errors.Wrap(err, "delete fast cart key")
	}
	return nil
}

// HydrateFastFromDurable stages the user's durable cart into the fast store
// at key, denormalizing name, thumbnail, and sale price per entry and
// preserving entry order. A missing cart or an empty one is a no-op. The
// durable entries are cleared once, after all entries are staged.
func (s *Syncer) HydrateFastFromDurable(ctx context.Context, userID int64, key string) error {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return errors.Wrap(err, "resolve user")
	}

	c, err := s.durable.FindByUser(ctx, u.ID)
	if err != nil {
		if errors.Is(err, ErrNoCart) {
			return nil
		}
		return errors.Wrap(err, "find durable cart")
	}

	entries, err := s.durable.ListEntries(ctx, c.ID)
	if err != nil {
		return errors.Wrap(err, "list durable entries")
	}
	if len(entries) == 0 {
		return nil
	}

	for _, e := range entries {
		b, err := s.books.GetByID(ctx, e.BookID)
		if err != nil {
			return errors.Wrapf(err, "resolve book %d", e.BookID)
		}
		img, err := s.images.FindThumbnailByBook(ctx, e.BookID)
		if err != nil {
			return errors.Wrapf(err, "resolve thumbnail for book %d", e.BookID)
		}

		d := Detail{
			BookID:    e.BookID,
			Quantity:  e.Quantity,
			Name:      b.Name,
			Thumbnail: img.Path,
			SalePrice: b.SaleCost,
		}
		if err := s.fast.Push(ctx, key, d); err != nil {
			return errors.Wrapf(err, "push entry for book %d", e.BookID)
		}
	}

	if err := s.durable.DeleteEntries(ctx, c.ID); err != nil {
		return errors.Wrap(err, "clear durable cart")
	}
	return nil
}

func (s *Syncer) findOrCreateCart(ctx context.Context, userID int64) (*Cart, error) {
	c, err := s.durable.FindByUser(ctx, userID)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, ErrNoCart) {
		return nil, errors.Wrap(err, "find durable cart")
	}

	c, err = s.durable.Create(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "create durable cart")
	}
	return c, nil
}
