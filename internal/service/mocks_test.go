package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/sorteos-app/sorteos-api/internal/domain"
	"github.com/sorteos-app/sorteos-api/internal/notification"
)

type mockOrderRepo struct {
	mock.Mock
}

func (m *mockOrderRepo) Create(ctx context.Context, order domain.Order) (domain.Order, error) {
	args := m.Called(ctx, order)
	return args.Get(0).(domain.Order), args.Error(1)
}

func (m *mockOrderRepo) FindByID(ctx context.Context, id uint) (domain.Order, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Order), args.Error(1)
}

func (m *mockOrderRepo) FindByUserID(ctx context.Context, userID uint) ([]domain.Order, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.Order), args.Error(1)
}

func (m *mockOrderRepo) FindByStatus(ctx context.Context, status domain.OrderStatus) ([]domain.Order, error) {
	args := m.Called(ctx, status)
	return args.Get(0).([]domain.Order), args.Error(1)
}

func (m *mockOrderRepo) SubmitReceipt(ctx context.Context, orderID uint, receiptURL string) error {
	args := m.Called(ctx, orderID, receiptURL)
	return args.Error(0)
}

func (m *mockOrderRepo) Approve(ctx context.Context, orderID, adminID uint, paymentReference string, now time.Time) error {
	args := m.Called(ctx, orderID, adminID, paymentReference, now)
	return args.Error(0)
}

func (m *mockOrderRepo) Reject(ctx context.Context, orderID, adminID uint, reason string, now time.Time) error {
	args := m.Called(ctx, orderID, adminID, reason, now)
	return args.Error(0)
}

func (m *mockOrderRepo) Complete(ctx context.Context, orderID uint) error {
	args := m.Called(ctx, orderID)
	return args.Error(0)
}

func (m *mockOrderRepo) Cancel(ctx context.Context, orderID uint) error {
	args := m.Called(ctx, orderID)
	return args.Error(0)
}

func (m *mockOrderRepo) CountByStatus(ctx context.Context) (map[domain.OrderStatus]int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(map[domain.OrderStatus]int64), args.Error(1)
}

func (m *mockOrderRepo) RevenueTotal(ctx context.Context) (decimal.Decimal, error) {
	args := m.Called(ctx)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

type mockRaffleRepo struct {
	mock.Mock
}

func (m *mockRaffleRepo) FindByID(ctx context.Context, id uint) (domain.Raffle, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Raffle), args.Error(1)
}

func (m *mockRaffleRepo) FindPackageByID(ctx context.Context, id uint) (domain.PricingPackage, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.PricingPackage), args.Error(1)
}

func (m *mockRaffleRepo) SalesSummary(ctx context.Context) ([]domain.RaffleSales, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.RaffleSales), args.Error(1)
}

type mockTicketRepo struct {
	mock.Mock
}

func (m *mockTicketRepo) FindByOrderID(ctx context.Context, orderID uint) ([]domain.Ticket, error) {
	args := m.Called(ctx, orderID)
	return args.Get(0).([]domain.Ticket), args.Error(1)
}

func (m *mockTicketRepo) FindByUserAndRaffle(ctx context.Context, userID, raffleID uint) ([]domain.Ticket, error) {
	args := m.Called(ctx, userID, raffleID)
	return args.Get(0).([]domain.Ticket), args.Error(1)
}

type mockAuthorizer struct {
	mock.Mock
}

func (m *mockAuthorizer) Authorize(user domain.User, action, resource string) (bool, error) {
	args := m.Called(user, action, resource)
	return args.Bool(0), args.Error(1)
}

// allowAll is an Authorizer that grants everything, for tests that are not
// about permissions.
type allowAll struct{}

func (allowAll) Authorize(domain.User, string, string) (bool, error) {
	return true, nil
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) Notify(ctx context.Context, event notification.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// fixedNumbers generates the same order number every time, keeping
// assertions simple.
type fixedNumbers struct {
	number string
}

func (g fixedNumbers) Generate(prefix string) string {
	return prefix + g.number
}

// sequenceNumbers hands out numbers in order, for collision scenarios.
type sequenceNumbers struct {
	numbers []string
	next    int
}

func (g *sequenceNumbers) Generate(prefix string) string {
	number := g.numbers[g.next]
	g.next++

	return prefix + number
}

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) Create(ctx context.Context, user domain.User) (domain.User, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(domain.User), args.Error(1)
}

func (m *mockUserRepo) FindByID(ctx context.Context, id uint) (domain.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.User), args.Error(1)
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(domain.User), args.Error(1)
}
