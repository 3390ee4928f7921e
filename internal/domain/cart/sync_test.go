package cart

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mybooks/storefront/internal/domain/book"
	"github.com/mybooks/storefront/internal/domain/image"
	"github.com/mybooks/storefront/internal/domain/user"
)

// --- Mock implementations ---

type mockStore struct {
	carts   map[int64]*Cart // keyed by user id
	entries map[int64][]Entry
	nextID  int64
	deleted []int64 // cart ids passed to DeleteEntries
}

func newMockStore() *mockStore {
	return &mockStore{
		carts:   make(map[int64]*Cart),
		entries: make(map[int64][]Entry),
		nextID:  50,
	}
}

func (m *mockStore) FindByUser(_ context.Context, userID int64) (*Cart, error) {
	c, ok := m.carts[userID]
	if !ok {
		return nil, ErrNoCart
	}
	return c, nil
}

func (m *mockStore) Create(_ context.Context, userID int64) (*Cart, error) {
	m.nextID++
	c := &Cart{ID: m.nextID, UserID: userID}
	m.carts[userID] = c
	return c, nil
}

func (m *mockStore) ListEntries(_ context.Context, cartID int64) ([]Entry, error) {
	return m.entries[cartID], nil
}

func (m *mockStore) DeleteEntries(_ context.Context, cartID int64) error {
	m.deleted = append(m.deleted, cartID)
	m.entries[cartID] = nil
	return nil
}

func (m *mockStore) InsertEntry(_ context.Context, cartID int64, e Entry) error {
	m.entries[cartID] = append(m.entries[cartID], e)
	return nil
}

type mockFastStore struct {
	lists map[string][]Detail
}

func newMockFastStore() *mockFastStore {
	return &mockFastStore{lists: make(map[string][]Detail)}
}

func (m *mockFastStore) Range(_ context.Context, key string) ([]Detail, error) {
	return m.lists[key], nil
}

func (m *mockFastStore) Push(_ context.Context, key string, d Detail) error {
	m.lists[key] = append(m.lists[key], d)
	return nil
}

func (m *mockFastStore) Delete(_ context.Context, key string) error {
	delete(m.lists, key)
	return nil
}

type mockUserRepo struct {
	byID map[int64]*user.User
}

func (m *mockUserRepo) GetByID(_ context.Context, id int64) (*user.User, error) {
	u, ok := m.byID[id]
	if !ok {
		return nil, &user.NotFoundError{UserID: id}
	}
	return u, nil
}

type mockBookRepo struct {
	byID map[int64]*book.Book
}

func (m *mockBookRepo) GetByID(_ context.Context, id int64) (*book.Book, error) {
	b, ok := m.byID[id]
	if !ok {
		return nil, &book.NotFoundError{BookID: id}
	}
	return b, nil
}

func (m *mockBookRepo) GetByIDs(_ context.Context, ids []int64) ([]book.Book, error) {
	var out []book.Book
	for _, id := range ids {
		if b, ok := m.byID[id]; ok {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (m *mockBookRepo) DecreaseStock(_ context.Context, _ int64, _ int) error {
	return nil
}

type mockImageRepo struct {
	byBook map[int64]*image.Image
}

func (m *mockImageRepo) FindThumbnailByBook(_ context.Context, bookID int64) (*image.Image, error) {
	img, ok := m.byBook[bookID]
	if !ok {
		return nil, &image.ThumbnailNotFoundError{BookID: bookID}
	}
	return img, nil
}

// --- Helpers ---

func newTestSyncer(durable *mockStore, fast *mockFastStore) *Syncer {
	users := &mockUserRepo{byID: map[int64]*user.User{
		7: {ID: 7, Name: "Reader"},
	}}
	books := &mockBookRepo{byID: map[int64]*book.Book{
		7: {ID: 7, Name: "Seven", SaleCost: decimal.NewFromInt(9900)},
		9: {ID: 9, Name: "Nine", SaleCost: decimal.NewFromInt(15000)},
	}}
	images := &mockImageRepo{byBook: map[int64]*image.Image{
		7: {ID: 1, BookID: 7, Kind: image.KindThumbnail, Path: "img/7-thumb.png"},
		9: {ID: 2, BookID: 9, Kind: image.KindThumbnail, Path: "img/9-thumb.png"},
	}}
	return NewSyncer(durable, fast, users, books, images)
}

// --- Tests ---

func TestFlush_ReplacesDurableAndDeletesKey(t *testing.T) {
	durable := newMockStore()
	fast := newMockFastStore()
	fast.lists["cart:7"] = []Detail{
		{BookID: 7, Quantity: 2},
		{BookID: 9, Quantity: 1},
	}
	s := newTestSyncer(durable, fast)

	err := s.FlushFastToDurable(context.Background(), 7, "cart:7")

	require.NoError(t, err)

	c, ok := durable.carts[7]
	require.True(t, ok, "durable cart should have been created")
	assert.Equal(t, []Entry{
		{BookID: 7, Quantity: 2},
		{BookID: 9, Quantity: 1},
	}, durable.entries[c.ID])

	_, exists := fast.lists["cart:7"]
	assert.False(t, exists, "fast key should be removed")
}

func TestFlush_EmptyFastCartIsNoOp(t *testing.T) {
	durable := newMockStore()
	fast := newMockFastStore()
	s := newTestSyncer(durable, fast)

	err := s.FlushFastToDurable(context.Background(), 7, "cart:7")

	require.NoError(t, err)
	assert.Empty(t, durable.carts)
	assert.Empty(t, durable.deleted)
}

func TestFlush_UnknownUser(t *testing.T) {
	fast := newMockFastStore()
	fast.lists["cart:999"] = []Detail{{BookID: 7, Quantity: 1}}
	s := newTestSyncer(newMockStore(), fast)

	err := s.FlushFastToDurable(context.Background(), 999, "cart:999")

	var nfErr *user.NotFoundError
	require.ErrorAs(t, err, &nfErr)
}

func TestFlush_MissingBookAborts(t *testing.T) {
	durable := newMockStore()
	fast := newMockFastStore()
	fast.lists["cart:7"] = []Detail{{BookID: 404, Quantity: 1}}
	s := newTestSyncer(durable, fast)

	err := s.FlushFastToDurable(context.Background(), 7, "cart:7")

	var nfErr *book.NotFoundError
	require.ErrorAs(t, err, &nfErr)
	_, exists := fast.lists["cart:7"]
	assert.True(t, exists, "fast key must survive a failed flush")
}

func TestFlush_ReusesExistingCart(t *testing.T) {
	durable := newMockStore()
	durable.carts[7] = &Cart{ID: 51, UserID: 7}
	durable.entries[51] = []Entry{{BookID: 9, Quantity: 5}}
	fast := newMockFastStore()
	fast.lists["cart:7"] = []Detail{{BookID: 7, Quantity: 1}}
	s := newTestSyncer(durable, fast)

	err := s.FlushFastToDurable(context.Background(), 7, "cart:7")

	require.NoError(t, err)
	assert.Equal(t, []Entry{{BookID: 7, Quantity: 1}}, durable.entries[51],
		"old entries replaced, not merged")
}

func TestHydrate_StagesDenormalizedEntries(t *testing.T) {
	durable := newMockStore()
	durable.carts[7] = &Cart{ID: 51, UserID: 7}
	durable.entries[51] = []Entry{
		{BookID: 7, Quantity: 2},
		{BookID: 9, Quantity: 1},
	}
	fast := newMockFastStore()
	s := newTestSyncer(durable, fast)

	err := s.HydrateFastFromDurable(context.Background(), 7, "cart:7")

	require.NoError(t, err)

	list := fast.lists["cart:7"]
	require.Len(t, list, 2)
	assert.Equal(t, Detail{
		BookID: 7, Quantity: 2, Name: "Seven",
		Thumbnail: "img/7-thumb.png", SalePrice: decimal.NewFromInt(9900),
	}, list[0])
	assert.Equal(t, int64(9), list[1].BookID)

	// Durable entries are cleared exactly once, after staging.
	assert.Equal(t, []int64{51}, durable.deleted)
	assert.Empty(t, durable.entries[51])
}

func TestHydrate_NoCartIsNoOp(t *testing.T) {
	fast := newMockFastStore()
	s := newTestSyncer(newMockStore(), fast)

	err := s.HydrateFastFromDurable(context.Background(), 7, "cart:7")

	require.NoError(t, err)
	assert.Empty(t, fast.lists)
}

func TestHydrate_EmptyCartIsNoOp(t *testing.T) {
	durable := newMockStore()
	durable.carts[7] = &Cart{ID: 51, UserID: 7}
	fast := newMockFastStore()
	s := newTestSyncer(durable, fast)

	err := s.HydrateFastFromDurable(context.Background(), 7, "cart:7")

	require.NoError(t, err)
	assert.Empty(t, fast.lists)
	assert.Empty(t, durable.deleted)
}

func TestHydrate_MissingThumbnailAborts(t *testing.T) {
	durable := newMockStore()
	durable.carts[7] = &Cart{ID: 51, UserID: 7}
	durable.entries[51] = []Entry{{BookID: 7, Quantity: 1}}
	fast := newMockFastStore()

	users := &mockUserRepo{byID: map[int64]*user.User{7: {ID: 7}}}
	books := &mockBookRepo{byID: map[int64]*book.Book{7: {ID: 7, Name: "Seven"}}}
	images := &mockImageRepo{byBook: map[int64]*image.Image{}}
	s := NewSyncer(durable, fast, users, books, images)

	err := s.HydrateFastFromDurable(context.Background(), 7, "cart:7")

	var nfErr *image.ThumbnailNotFoundError
	require.ErrorAs(t, err, &nfErr)
	assert.Empty(t, durable.deleted, "durable entries must survive a failed hydrate")
}

func TestRoundTrip_FlushThenHydrate(t *testing.T) {
	durable := newMockStore()
	fast := newMockFastStore()
	fast.lists["cart:7"] = []Detail{
		{BookID: 7, Quantity: 2},
		{BookID: 9, Quantity: 1},
	}
	s := newTestSyncer(durable, fast)

	require.NoError(t, s.FlushFastToDurable(context.Background(), 7, "cart:7"))
	require.NoError(t, s.HydrateFastFromDurable(context.Background(), 7, "cart:7"))

	list := fast.lists["cart:7"]
	require.Len(t, list, 2)

	pairs := make([][2]int64, len(list))
	for i, d := range list {
		pairs[i] = [2]int64{d.BookID, int64(d.Quantity)}
	}
	assert.Equal(t, [][2]int64{{7, 2}, {9, 1}}, pairs)
}
