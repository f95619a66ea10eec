package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sorteos-app/sorteos-api/internal/domain"
	"github.com/sorteos-app/sorteos-api/internal/repository"
)

var (
	ErrPrizeNotFound    = repository.ErrPrizeNotFound
	ErrPrizeNotUnlocked = domain.ErrPrizeNotUnlocked
	ErrTicketNotFound   = repository.ErrTicketNotFound
	ErrTicketNotSold    = repository.ErrTicketNotSold
)

type PrizeRepository interface {
	Create(ctx context.Context, prize domain.Prize) (domain.Prize, error)
	FindByID(ctx context.Context, id uint) (domain.Prize, error)
	FindByRaffleID(ctx context.Context, raffleID uint) ([]domain.Prize, error)
	FindLockedByRaffleID(ctx context.Context, raffleID uint) ([]domain.Prize, error)
	Unlock(ctx context.Context, prizeID uint, now time.Time) (bool, error)
	Claim(ctx context.Context, prizeID, winningTicketID uint) error
}

type PrizeRaffleRepository interface {
	FindByID(ctx context.Context, id uint) (domain.Raffle, error)
}

type PrizeTicketRepository interface {
	FindByRaffleAndNumber(ctx context.Context, raffleID uint, number int) (domain.Ticket, error)
	MarkWinner(ctx context.Context, ticketID uint) error
}

type PrizeService struct {
	repo       PrizeRepository
	raffleRepo PrizeRaffleRepository
	ticketRepo PrizeTicketRepository
	authz      Authorizer
}

func NewPrizeService(repo PrizeRepository, raffleRepo PrizeRaffleRepository, ticketRepo PrizeTicketRepository, authz Authorizer) *PrizeService {
	return &PrizeService{
		repo:       repo,
		raffleRepo: raffleRepo,
		ticketRepo: ticketRepo,
		authz:      authz,
	}
}

func (s *PrizeService) CreatePrize(ctx context.Context, admin domain.User, prize domain.Prize) (domain.Prize, error) {
	if err := s.authorize(admin, "create", "prizes"); err != nil {
		return domain.Prize{}, err
	}

	if _, err := s.raffleRepo.FindByID(ctx, prize.RaffleID); err != nil {
		return domain.Prize{}, fmt.Errorf("s.raffleRepo.FindByID -> %w", err)
	}

	prize.Status = domain.PrizeStatusLocked

	created, err := s.repo.Create(ctx, prize)
	if err != nil {
		return domain.Prize{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	return created, nil
}

func (s *PrizeService) ListPrizes(ctx context.Context, raffleID uint) ([]domain.Prize, error) {
	prizes, err := s.repo.FindByRaffleID(ctx, raffleID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindByRaffleID -> %w", err)
	}

	return prizes, nil
}

// EvaluateUnlocks re-checks every locked prize of a raffle against its
// current sold count and unlocks the ones whose condition is met. The
// approval path already performs this inside its own transaction; this
// entry point exists for manual re-evaluation. Unlocking is monotonic, so
// running it twice is harmless. Returns the prizes that flipped.
func (s *PrizeService) EvaluateUnlocks(ctx context.Context, admin domain.User, raffleID uint) ([]domain.Prize, error) {
	if err := s.authorize(admin, "evaluate", "prizes"); err != nil {
		return nil, err
	}

	raffle, err := s.raffleRepo.FindByID(ctx, raffleID)
	if err != nil {
		return nil, fmt.Errorf("s.raffleRepo.FindByID -> %w", err)
	}

	locked, err := s.repo.FindLockedByRaffleID(ctx, raffleID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindLockedByRaffleID -> %w", err)
	}

	now := time.Now()

	var unlocked []domain.Prize
	for _, prize := range locked {
		if !prize.Condition.MetBy(raffle.TicketsSold, raffle.TotalTickets) {
			continue
		}

		flipped, err := s.repo.Unlock(ctx, prize.ID, now)
		if err != nil {
			return nil, fmt.Errorf("s.repo.Unlock -> %w", err)
		}
		if flipped {
			prize.Unlock(now)
			unlocked = append(unlocked, prize)
		}
	}

	return unlocked, nil
}

// DesignateWinner binds a sold ticket to an unlocked prize and moves the
// prize to claimed. The ticket is addressed by its number within the
// prize's raffle.
func (s *PrizeService) DesignateWinner(ctx context.Context, admin domain.User, prizeID uint, ticketNumber int) (domain.Prize, error) {
	if err := s.authorize(admin, "designate_winner", "prizes"); err != nil {
		return domain.Prize{}, err
	}

	prize, err := s.repo.FindByID(ctx, prizeID)
	if err != nil {
		return domain.Prize{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}
	if prize.Status != domain.PrizeStatusUnlocked {
		return domain.Prize{}, ErrPrizeNotUnlocked
	}

	ticket, err := s.ticketRepo.FindByRaffleAndNumber(ctx, prize.RaffleID, ticketNumber)
	if err != nil {
		return domain.Prize{}, fmt.Errorf("s.ticketRepo.FindByRaffleAndNumber -> %w", err)
	}

	if err = s.ticketRepo.MarkWinner(ctx, ticket.ID); err != nil {
		return domain.Prize{}, err
	}

	if err = s.repo.Claim(ctx, prize.ID, ticket.ID); err != nil {
		return domain.Prize{}, err
	}

	return s.repo.FindByID(ctx, prizeID)
}

func (s *PrizeService) authorize(user domain.User, action, resource string) error {
	allowed, err := s.authz.Authorize(user, action, resource)
	if err != nil {
		return err
	}
	if !allowed {
		return ErrPermissionDenied
	}

	return nil
}
