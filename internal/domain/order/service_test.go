package order

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mybooks/storefront/internal/domain/refdata"
	"github.com/mybooks/storefront/internal/domain/user"
)

// --- Mock implementations ---

type mockOrderRepo struct {
	byID     map[int64]*Order
	byNumber map[string]*Order
	nextID   int64

	statusUpdates  map[int64]Status
	invoiceUpdates map[int64]string
}

func newMockOrderRepo(orders ...*Order) *mockOrderRepo {
	m := &mockOrderRepo{
		byID:           make(map[int64]*Order),
		byNumber:       make(map[string]*Order),
		statusUpdates:  make(map[int64]Status),
		invoiceUpdates: make(map[int64]string),
		nextID:         100,
	}
	for _, o := range orders {
		m.byID[o.ID] = o
		m.byNumber[o.Number] = o
	}
	return m
}

func (m *mockOrderRepo) Create(_ context.Context, o *Order) error {
	m.nextID++
	o.ID = m.nextID
	m.byID[o.ID] = o
	m.byNumber[o.Number] = o
	return nil
}

func (m *mockOrderRepo) GetByID(_ context.Context, id int64) (*Order, error) {
	o, ok := m.byID[id]
	if !ok {
		return nil, &NotFoundError{ID: id}
	}
	return o, nil
}

func (m *mockOrderRepo) GetByNumber(_ context.Context, number string) (*Order, error) {
	o, ok := m.byNumber[number]
	if !ok {
		return nil, &NotFoundError{Number: number}
	}
	return o, nil
}

func (m *mockOrderRepo) NumberExists(_ context.Context, number string) (bool, error) {
	_, ok := m.byNumber[number]
	return ok, nil
}

func (m *mockOrderRepo) UpdateStatus(_ context.Context, id int64, status Status) error {
	m.statusUpdates[id] = status
	return nil
}

func (m *mockOrderRepo) UpdateInvoice(_ context.Context, id int64, invoiceNumber string) error {
	m.invoiceUpdates[id] = invoiceNumber
	return nil
}

func (m *mockOrderRepo) ListByUser(_ context.Context, userID int64, _, _ int) ([]Order, int64, error) {
	var out []Order
	for _, o := range m.byID {
		if id, ok := o.User.ID(); ok && id == userID {
			out = append(out, *o)
		}
	}
	return out, int64(len(out)), nil
}

func (m *mockOrderRepo) List(_ context.Context, _, _ int) ([]Order, int64, error) {
	var out []Order
	for _, o := range m.byID {
		out = append(out, *o)
	}
	return out, int64(len(out)), nil
}

type mockDetailRepo struct {
	created []Detail
	byOrder map[int64][]Detail
}

func newMockDetailRepo() *mockDetailRepo {
	return &mockDetailRepo{byOrder: make(map[int64][]Detail)}
}

func (m *mockDetailRepo) Create(_ context.Context, d *Detail) error {
	d.ID = int64(len(m.created) + 1)
	m.created = append(m.created, *d)
	m.byOrder[d.OrderID] = append(m.byOrder[d.OrderID], *d)
	return nil
}

func (m *mockDetailRepo) ListByOrder(_ context.Context, orderID int64) ([]Detail, error) {
	return m.byOrder[orderID], nil
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

type mockDeliveryRuleRepo struct {
	byID map[int64]*refdata.DeliveryRule
}

func (m *mockDeliveryRuleRepo) GetByID(_ context.Context, id int64) (*refdata.DeliveryRule, error) {
	r, ok := m.byID[id]
	if !ok {
		return nil, &refdata.DeliveryRuleNotFoundError{RuleID: id}
	}
	return r, nil
}

// --- Helpers ---

func newTestService(orders *mockOrderRepo, details *mockDetailRepo) (*Service, time.Time) {
	users := &mockUserRepo{byID: map[int64]*user.User{
		7: {ID: 7, Name: "Reader", Email: "reader@example.com"},
	}}
	rules := &mockDeliveryRuleRepo{byID: map[int64]*refdata.DeliveryRule{
		1: {ID: 1, Name: "standard", Cost: decimal.NewFromInt(3000), Available: true},
	}}

	svc := NewService(orders, details, users, rules)
	stamped := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return stamped }
	return svc, stamped
}

func validCreateRequest(number string) CreateRequest {
	return CreateRequest{
		Number:          number,
		DeliveryRuleID:  1,
		DeliveryDate:    time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC),
		ReceiverName:    "Reader",
		ReceiverAddress: "1 Library Way",
		ReceiverPhone:   "010-0000-0000",
		TotalCost:       decimal.NewFromInt(45000),
		CouponCost:      decimal.NewFromInt(3000),
		PointCost:       decimal.NewFromInt(500),
	}
}

// --- Tests ---

func TestCreate_InitialStatusAndDate(t *testing.T) {
	svc, stamped := newTestService(newMockOrderRepo(), newMockDetailRepo())

	o, err := svc.Create(context.Background(), validCreateRequest("ORD-1"), 7)

	require.NoError(t, err)
	assert.Equal(t, StatusWait, o.Status)
	assert.Equal(t, stamped, o.OrderDate)
	assert.NotEmpty(t, o.AccessCode)

	id, ok := o.User.ID()
	require.True(t, ok)
	assert.Equal(t, int64(7), id)
}

func TestCreate_UnknownUser(t *testing.T) {
	svc, _ := newTestService(newMockOrderRepo(), newMockDetailRepo())

	_, err := svc.Create(context.Background(), validCreateRequest("ORD-1"), 999)

	var nfErr *user.NotFoundError
	require.ErrorAs(t, err, &nfErr)
	assert.Equal(t, int64(999), nfErr.UserID)
}

func TestCreate_UnknownDeliveryRule(t *testing.T) {
	svc, _ := newTestService(newMockOrderRepo(), newMockDetailRepo())

	req := validCreateRequest("ORD-1")
	req.DeliveryRuleID = 42

	_, err := svc.Create(context.Background(), req, 7)

	var nfErr *refdata.DeliveryRuleNotFoundError
	require.ErrorAs(t, err, &nfErr)
}

func TestCreate_NegativeTotal(t *testing.T) {
	svc, _ := newTestService(newMockOrderRepo(), newMockDetailRepo())

	req := validCreateRequest("ORD-1")
	req.TotalCost = decimal.NewFromInt(-1)

	_, err := svc.Create(context.Background(), req, 7)
	require.ErrorIs(t, err, ErrNegativeTotal)
}

func TestCreate_DuplicateNumber(t *testing.T) {
	svc, _ := newTestService(newMockOrderRepo(), newMockDetailRepo())

	_, err := svc.Create(context.Background(), validCreateRequest("ORD-1"), 7)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), validCreateRequest("ORD-1"), 7)
	require.ErrorIs(t, err, ErrNumberTaken)
}

func TestCreateForGuest_BindsGuestIdentity(t *testing.T) {
	svc, _ := newTestService(newMockOrderRepo(), newMockDetailRepo())

	o, err := svc.CreateForGuest(context.Background(), validCreateRequest("ORD-G1"))

	require.NoError(t, err)
	assert.True(t, o.User.IsGuest())
}

func TestModifyStatus_AllowedTransition(t *testing.T) {
	orders := newMockOrderRepo(&Order{ID: 1, Number: "ORD-1", Status: StatusWait})
	svc, _ := newTestService(orders, newMockDetailRepo())

	o, err := svc.ModifyStatus(context.Background(), 1, "paid")

	require.NoError(t, err)
	assert.Equal(t, StatusPaid, o.Status)
	assert.Equal(t, StatusPaid, orders.statusUpdates[1])
}

func TestModifyStatus_RejectedTransition(t *testing.T) {
	orders := newMockOrderRepo(&Order{ID: 1, Number: "ORD-1", Status: StatusWait})
	svc, _ := newTestService(orders, newMockDetailRepo())

	_, err := svc.ModifyStatus(context.Background(), 1, "completed")

	var itErr *InvalidTransitionError
	require.ErrorAs(t, err, &itErr)
	assert.Equal(t, StatusWait, itErr.From)
	assert.Equal(t, StatusCompleted, itErr.To)
	assert.Empty(t, orders.statusUpdates)
}

func TestModifyStatus_UnknownCode(t *testing.T) {
	orders := newMockOrderRepo(&Order{ID: 1, Number: "ORD-1", Status: StatusWait})
	svc, _ := newTestService(orders, newMockDetailRepo())

	_, err := svc.ModifyStatus(context.Background(), 1, "teleported")

	var usErr *UnknownStatusError
	require.ErrorAs(t, err, &usErr)
}

func TestModifyStatus_OrderNotFound(t *testing.T) {
	svc, _ := newTestService(newMockOrderRepo(), newMockDetailRepo())

	_, err := svc.ModifyStatus(context.Background(), 404, "paid")

	var nfErr *NotFoundError
	require.ErrorAs(t, err, &nfErr)
	assert.Equal(t, int64(404), nfErr.ID)
}

func TestModifyStatusByNumber(t *testing.T) {
	orders := newMockOrderRepo(&Order{ID: 2, Number: "ORD-2", Status: StatusPaid})
	svc, _ := newTestService(orders, newMockDetailRepo())

	o, err := svc.ModifyStatusByNumber(context.Background(), "ORD-2", "delivery")

	require.NoError(t, err)
	assert.Equal(t, StatusDelivery, o.Status)
}

func TestRegisterInvoice(t *testing.T) {
	orders := newMockOrderRepo(&Order{ID: 3, Number: "ORD-3", Status: StatusDelivery})
	svc, _ := newTestService(orders, newMockDetailRepo())

	o, err := svc.RegisterInvoice(context.Background(), 3, "INV-777")

	require.NoError(t, err)
	require.NotNil(t, o.InvoiceNumber)
	assert.Equal(t, "INV-777", *o.InvoiceNumber)
	assert.Equal(t, "INV-777", orders.invoiceUpdates[3])
}

func TestRegisterInvoice_OrderNotFound(t *testing.T) {
	svc, _ := newTestService(newMockOrderRepo(), newMockDetailRepo())

	_, err := svc.RegisterInvoice(context.Background(), 404, "INV-1")

	var nfErr *NotFoundError
	require.ErrorAs(t, err, &nfErr)
}

func TestNumberExists(t *testing.T) {
	orders := newMockOrderRepo(&Order{ID: 1, Number: "ORD-1", Status: StatusWait})
	svc, _ := newTestService(orders, newMockDetailRepo())

	exists, err := svc.NumberExists(context.Background(), "ORD-1")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = svc.NumberExists(context.Background(), "ORD-2")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestGetByNumber_NotFound(t *testing.T) {
	svc, _ := newTestService(newMockOrderRepo(), newMockDetailRepo())

	_, err := svc.GetByNumber(context.Background(), "ORD-1001")

	var nfErr *NotFoundError
	require.ErrorAs(t, err, &nfErr)
	assert.Equal(t, "ORD-1001", nfErr.Number)
}

func TestListForUser_AttachesDetails(t *testing.T) {
	orders := newMockOrderRepo(&Order{ID: 1, Number: "ORD-1", User: user.Authenticated(7), Status: StatusPaid})
	details := newMockDetailRepo()
	details.byOrder[1] = []Detail{
		{ID: 10, OrderID: 1, BookID: 5, Quantity: 2},
		{ID: 11, OrderID: 1, BookID: 9, Quantity: 1},
	}
	svc, _ := newTestService(orders, details)

	page, err := svc.ListForUser(context.Background(), 7, 0, 10)

	require.NoError(t, err)
	require.Len(t, page.Orders, 1)
	assert.Len(t, page.Orders[0].Details, 2)
	assert.Equal(t, int64(1), page.Total)
}
