package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sorteos-app/sorteos-api/internal/domain"
)

type mockPrizeRepo struct {
	mock.Mock
}

func (m *mockPrizeRepo) Create(ctx context.Context, prize domain.Prize) (domain.Prize, error) {
	args := m.Called(ctx, prize)
	return args.Get(0).(domain.Prize), args.Error(1)
}

func (m *mockPrizeRepo) FindByID(ctx context.Context, id uint) (domain.Prize, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Prize), args.Error(1)
}

func (m *mockPrizeRepo) FindByRaffleID(ctx context.Context, raffleID uint) ([]domain.Prize, error) {
	args := m.Called(ctx, raffleID)
	return args.Get(0).([]domain.Prize), args.Error(1)
}

func (m *mockPrizeRepo) FindLockedByRaffleID(ctx context.Context, raffleID uint) ([]domain.Prize, error) {
	args := m.Called(ctx, raffleID)
	return args.Get(0).([]domain.Prize), args.Error(1)
}

func (m *mockPrizeRepo) Unlock(ctx context.Context, prizeID uint, now time.Time) (bool, error) {
	args := m.Called(ctx, prizeID, now)
	return args.Bool(0), args.Error(1)
}

func (m *mockPrizeRepo) Claim(ctx context.Context, prizeID, winningTicketID uint) error {
	args := m.Called(ctx, prizeID, winningTicketID)
	return args.Error(0)
}

type mockPrizeTicketRepo struct {
	mock.Mock
}

func (m *mockPrizeTicketRepo) FindByRaffleAndNumber(ctx context.Context, raffleID uint, number int) (domain.Ticket, error) {
	args := m.Called(ctx, raffleID, number)
	return args.Get(0).(domain.Ticket), args.Error(1)
}

func (m *mockPrizeTicketRepo) MarkWinner(ctx context.Context, ticketID uint) error {
	args := m.Called(ctx, ticketID)
	return args.Error(0)
}

func lockedPrize(t *testing.T, id uint, threshold int) domain.Prize {
	t.Helper()

	cond, err := domain.UnlockAtTicketsSold(threshold)
	require.NoError(t, err)
	reward, err := domain.ProductReward("test product")
	require.NoError(t, err)

	return domain.Prize{
		ID:        id,
		RaffleID:  1,
		Condition: cond,
		Reward:    reward,
		Status:    domain.PrizeStatusLocked,
	}
}

func TestPrizeService_EvaluateUnlocks(t *testing.T) {
	ctx := context.Background()

	t.Run("only met conditions unlock", func(t *testing.T) {
		repo := new(mockPrizeRepo)
		raffleRepo := new(mockRaffleRepo)

		raffle := activeRaffle()
		raffle.TicketsSold = 50

		raffleRepo.On("FindByID", ctx, uint(1)).Return(raffle, nil)
		repo.On("FindLockedByRaffleID", ctx, uint(1)).Return([]domain.Prize{
			lockedPrize(t, 10, 50),
			lockedPrize(t, 11, 51),
		}, nil)
		repo.On("Unlock", ctx, uint(10), mock.AnythingOfType("time.Time")).Return(true, nil)

		svc := NewPrizeService(repo, raffleRepo, new(mockPrizeTicketRepo), allowAll{})

		unlocked, err := svc.EvaluateUnlocks(ctx, admin(), 1)
		require.NoError(t, err)
		require.Len(t, unlocked, 1)
		assert.Equal(t, uint(10), unlocked[0].ID)
		assert.Equal(t, domain.PrizeStatusUnlocked, unlocked[0].Status)
		repo.AssertNotCalled(t, "Unlock", ctx, uint(11), mock.Anything)
	})

	t.Run("already flipped prizes are not reported", func(t *testing.T) {
		repo := new(mockPrizeRepo)
		raffleRepo := new(mockRaffleRepo)

		raffle := activeRaffle()
		raffle.TicketsSold = 100

		raffleRepo.On("FindByID", ctx, uint(1)).Return(raffle, nil)
		repo.On("FindLockedByRaffleID", ctx, uint(1)).Return([]domain.Prize{
			lockedPrize(t, 10, 50),
		}, nil)
		// A concurrent evaluation already unlocked it.
		repo.On("Unlock", ctx, uint(10), mock.AnythingOfType("time.Time")).Return(false, nil)

		svc := NewPrizeService(repo, raffleRepo, new(mockPrizeTicketRepo), allowAll{})

		unlocked, err := svc.EvaluateUnlocks(ctx, admin(), 1)
		require.NoError(t, err)
		assert.Empty(t, unlocked)
	})

	t.Run("permission denied before touching the repo", func(t *testing.T) {
		repo := new(mockPrizeRepo)
		authz := new(mockAuthorizer)
		authz.On("Authorize", mock.Anything, "evaluate", "prizes").Return(false, nil)

		svc := NewPrizeService(repo, new(mockRaffleRepo), new(mockPrizeTicketRepo), authz)

		_, err := svc.EvaluateUnlocks(ctx, customer(), 1)
		require.ErrorIs(t, err, ErrPermissionDenied)
		repo.AssertNotCalled(t, "FindLockedByRaffleID", mock.Anything, mock.Anything)
	})
}

func TestPrizeService_DesignateWinner(t *testing.T) {
	ctx := context.Background()

	unlockedPrize := func() domain.Prize {
		prize := lockedPrize(t, 10, 50)
		prize.Unlock(time.Now())
		return prize
	}

	t.Run("sold ticket wins an unlocked prize", func(t *testing.T) {
		repo := new(mockPrizeRepo)
		ticketRepo := new(mockPrizeTicketRepo)

		winningID := uint(200)
		claimed := unlockedPrize()
		require.NoError(t, claimed.MarkClaimed(winningID))

		repo.On("FindByID", ctx, uint(10)).Return(unlockedPrize(), nil).Once()
		ticketRepo.On("FindByRaffleAndNumber", ctx, uint(1), 42).Return(domain.Ticket{
			ID:           winningID,
			RaffleID:     1,
			TicketNumber: 42,
			Status:       domain.TicketStatusSold,
		}, nil)
		ticketRepo.On("MarkWinner", ctx, winningID).Return(nil)
		repo.On("Claim", ctx, uint(10), winningID).Return(nil)
		repo.On("FindByID", ctx, uint(10)).Return(claimed, nil).Once()

		svc := NewPrizeService(repo, new(mockRaffleRepo), ticketRepo, allowAll{})

		prize, err := svc.DesignateWinner(ctx, admin(), 10, 42)
		require.NoError(t, err)
		assert.Equal(t, domain.PrizeStatusClaimed, prize.Status)
		require.NotNil(t, prize.WinningTicketID)
		assert.Equal(t, winningID, *prize.WinningTicketID)
	})

	t.Run("locked prize cannot take a winner", func(t *testing.T) {
		repo := new(mockPrizeRepo)
		repo.On("FindByID", ctx, uint(10)).Return(lockedPrize(t, 10, 50), nil)

		svc := NewPrizeService(repo, new(mockRaffleRepo), new(mockPrizeTicketRepo), allowAll{})

		_, err := svc.DesignateWinner(ctx, admin(), 10, 42)
		require.ErrorIs(t, err, ErrPrizeNotUnlocked)
	})

	t.Run("unsold ticket is refused", func(t *testing.T) {
		repo := new(mockPrizeRepo)
		ticketRepo := new(mockPrizeTicketRepo)

		repo.On("FindByID", ctx, uint(10)).Return(unlockedPrize(), nil)
		ticketRepo.On("FindByRaffleAndNumber", ctx, uint(1), 42).Return(domain.Ticket{
			ID:     200,
			Status: domain.TicketStatusAvailable,
		}, nil)
		ticketRepo.On("MarkWinner", ctx, uint(200)).Return(ErrTicketNotSold)

		svc := NewPrizeService(repo, new(mockRaffleRepo), ticketRepo, allowAll{})

		_, err := svc.DesignateWinner(ctx, admin(), 10, 42)
		require.ErrorIs(t, err, ErrTicketNotSold)
	})

	t.Run("permission denied", func(t *testing.T) {
		authz := new(mockAuthorizer)
		authz.On("Authorize", mock.Anything, "designate_winner", "prizes").Return(false, nil)

		svc := NewPrizeService(new(mockPrizeRepo), new(mockRaffleRepo), new(mockPrizeTicketRepo), authz)

		_, err := svc.DesignateWinner(ctx, customer(), 10, 42)
		require.ErrorIs(t, err, ErrPermissionDenied)
	})
}
