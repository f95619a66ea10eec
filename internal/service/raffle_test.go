package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sorteos-app/sorteos-api/internal/domain"
	"github.com/sorteos-app/sorteos-api/internal/repository"
)

type mockFullRaffleRepo struct {
	mock.Mock
}

func (m *mockFullRaffleRepo) Create(ctx context.Context, raffle domain.Raffle) (domain.Raffle, error) {
	args := m.Called(ctx, raffle)
	return args.Get(0).(domain.Raffle), args.Error(1)
}

func (m *mockFullRaffleRepo) FindByID(ctx context.Context, id uint) (domain.Raffle, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Raffle), args.Error(1)
}

func (m *mockFullRaffleRepo) FindAll(ctx context.Context) ([]domain.Raffle, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Raffle), args.Error(1)
}

func (m *mockFullRaffleRepo) FindByStatus(ctx context.Context, status domain.RaffleStatus) ([]domain.Raffle, error) {
	args := m.Called(ctx, status)
	return args.Get(0).([]domain.Raffle), args.Error(1)
}

func (m *mockFullRaffleRepo) Activate(ctx context.Context, raffleID uint) error {
	args := m.Called(ctx, raffleID)
	return args.Error(0)
}

func (m *mockFullRaffleRepo) UpdateStatus(ctx context.Context, raffleID uint, from, to domain.RaffleStatus) error {
	args := m.Called(ctx, raffleID, from, to)
	return args.Error(0)
}

func (m *mockFullRaffleRepo) CreatePackage(ctx context.Context, pkg domain.PricingPackage) (domain.PricingPackage, error) {
	args := m.Called(ctx, pkg)
	return args.Get(0).(domain.PricingPackage), args.Error(1)
}

func (m *mockFullRaffleRepo) FindPackageByID(ctx context.Context, id uint) (domain.PricingPackage, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.PricingPackage), args.Error(1)
}

func (m *mockFullRaffleRepo) FindPackagesByRaffleID(ctx context.Context, raffleID uint, activeOnly bool) ([]domain.PricingPackage, error) {
	args := m.Called(ctx, raffleID, activeOnly)
	return args.Get(0).([]domain.PricingPackage), args.Error(1)
}

func (m *mockFullRaffleRepo) DeactivatePackage(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockFullRaffleRepo) DeletePackage(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockFullRaffleRepo) SalesSummary(ctx context.Context) ([]domain.RaffleSales, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.RaffleSales), args.Error(1)
}

type mockPackageRefRepo struct {
	mock.Mock
}

func (m *mockPackageRefRepo) IsPackageReferenced(ctx context.Context, packageID uint) (bool, error) {
	args := m.Called(ctx, packageID)
	return args.Bool(0), args.Error(1)
}

func TestRaffleService_CreateRaffle(t *testing.T) {
	ctx := context.Background()

	t.Run("new raffle starts in draft with a full pool", func(t *testing.T) {
		repo := new(mockFullRaffleRepo)
		repo.On("Create", ctx, mock.MatchedBy(func(raffle domain.Raffle) bool {
			return raffle.Status == domain.RaffleStatusDraft &&
				raffle.TicketsSold == 0 &&
				raffle.TicketsAvailable == 1000
		})).Return(domain.Raffle{ID: 1, Status: domain.RaffleStatusDraft}, nil)

		svc := NewRaffleService(repo, new(mockPackageRefRepo), allowAll{})

		raffle := testRaffle()
		raffle.Status = domain.RaffleStatusActive // caller cannot force a status

		created, err := svc.CreateRaffle(ctx, admin(), raffle)
		require.NoError(t, err)
		assert.Equal(t, domain.RaffleStatusDraft, created.Status)
		repo.AssertExpectations(t)
	})

	t.Run("invalid configuration", func(t *testing.T) {
		svc := NewRaffleService(new(mockFullRaffleRepo), new(mockPackageRefRepo), allowAll{})

		bad := testRaffle()
		bad.TotalTickets = 0
		_, err := svc.CreateRaffle(ctx, admin(), bad)
		require.ErrorIs(t, err, ErrInvalidRaffle)

		bad = testRaffle()
		bad.MinPurchase = 60
		bad.MaxPurchase = 50
		_, err = svc.CreateRaffle(ctx, admin(), bad)
		require.ErrorIs(t, err, ErrInvalidRaffle)
	})

	t.Run("permission denied", func(t *testing.T) {
		authz := new(mockAuthorizer)
		authz.On("Authorize", mock.Anything, "create", "raffles").Return(false, nil)

		svc := NewRaffleService(new(mockFullRaffleRepo), new(mockPackageRefRepo), authz)

		_, err := svc.CreateRaffle(ctx, customer(), testRaffle())
		require.ErrorIs(t, err, ErrPermissionDenied)
	})
}

func TestRaffleService_ActivateRaffle(t *testing.T) {
	ctx := context.Background()

	t.Run("draft raffle activates", func(t *testing.T) {
		repo := new(mockFullRaffleRepo)
		repo.On("Activate", ctx, uint(1)).Return(nil)
		repo.On("FindByID", ctx, uint(1)).Return(activeRaffle(), nil)

		svc := NewRaffleService(repo, new(mockPackageRefRepo), allowAll{})

		raffle, err := svc.ActivateRaffle(ctx, admin(), 1)
		require.NoError(t, err)
		assert.Equal(t, domain.RaffleStatusActive, raffle.Status)
	})

	t.Run("only draft raffles activate", func(t *testing.T) {
		repo := new(mockFullRaffleRepo)
		repo.On("Activate", ctx, uint(1)).Return(repository.ErrRaffleNotDraft)

		svc := NewRaffleService(repo, new(mockPackageRefRepo), allowAll{})

		_, err := svc.ActivateRaffle(ctx, admin(), 1)
		require.ErrorIs(t, err, ErrRaffleNotDraft)
	})
}

func TestRaffleService_DeletePackage(t *testing.T) {
	ctx := context.Background()

	t.Run("unreferenced package is deleted", func(t *testing.T) {
		repo := new(mockFullRaffleRepo)
		orderRepo := new(mockPackageRefRepo)
		orderRepo.On("IsPackageReferenced", ctx, uint(3)).Return(false, nil)
		repo.On("DeletePackage", ctx, uint(3)).Return(nil)

		svc := NewRaffleService(repo, orderRepo, allowAll{})

		require.NoError(t, svc.DeletePackage(ctx, admin(), 3))
		repo.AssertExpectations(t)
	})

	t.Run("referenced package survives", func(t *testing.T) {
		repo := new(mockFullRaffleRepo)
		orderRepo := new(mockPackageRefRepo)
		orderRepo.On("IsPackageReferenced", ctx, uint(3)).Return(true, nil)

		svc := NewRaffleService(repo, orderRepo, allowAll{})

		require.ErrorIs(t, svc.DeletePackage(ctx, admin(), 3), ErrPackageInUse)
		repo.AssertNotCalled(t, "DeletePackage", mock.Anything, mock.Anything)
	})
}

func TestRaffleService_ListRaffles(t *testing.T) {
	ctx := context.Background()

	t.Run("no filter lists everything", func(t *testing.T) {
		repo := new(mockFullRaffleRepo)
		repo.On("FindAll", ctx).Return([]domain.Raffle{{ID: 1}, {ID: 2}}, nil)

		svc := NewRaffleService(repo, new(mockPackageRefRepo), allowAll{})

		raffles, err := svc.ListRaffles(ctx, "")
		require.NoError(t, err)
		assert.Len(t, raffles, 2)
	})

	t.Run("status filter", func(t *testing.T) {
		repo := new(mockFullRaffleRepo)
		repo.On("FindByStatus", ctx, domain.RaffleStatusActive).Return([]domain.Raffle{{ID: 1}}, nil)

		svc := NewRaffleService(repo, new(mockPackageRefRepo), allowAll{})

		raffles, err := svc.ListRaffles(ctx, domain.RaffleStatusActive)
		require.NoError(t, err)
		assert.Len(t, raffles, 1)
	})
}

// Guards against the raffle state machine accepting stale activations.
func TestRaffleService_CompleteRaffle(t *testing.T) {
	ctx := context.Background()

	t.Run("active raffle completes", func(t *testing.T) {
		repo := new(mockFullRaffleRepo)
		completed := activeRaffle()
		completed.Status = domain.RaffleStatusCompleted
		completed.UpdatedAt = time.Now()

		repo.On("UpdateStatus", ctx, uint(1), domain.RaffleStatusActive, domain.RaffleStatusCompleted).Return(nil)
		repo.On("FindByID", ctx, uint(1)).Return(completed, nil)

		svc := NewRaffleService(repo, new(mockPackageRefRepo), allowAll{})

		raffle, err := svc.CompleteRaffle(ctx, admin(), 1)
		require.NoError(t, err)
		assert.Equal(t, domain.RaffleStatusCompleted, raffle.Status)
	})

	t.Run("draft raffle cannot complete", func(t *testing.T) {
		repo := new(mockFullRaffleRepo)
		repo.On("UpdateStatus", ctx, uint(1), domain.RaffleStatusActive, domain.RaffleStatusCompleted).
			Return(repository.ErrRaffleStatusConflict)

		svc := NewRaffleService(repo, new(mockPackageRefRepo), allowAll{})

		_, err := svc.CompleteRaffle(ctx, admin(), 1)
		require.ErrorIs(t, err, ErrRaffleNotComplete)
	})
}
