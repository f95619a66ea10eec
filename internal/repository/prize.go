package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sorteos-app/sorteos-api/internal/domain"
	"github.com/sorteos-app/sorteos-api/internal/repository/dao"
)

var (
	ErrPrizeNotFound    = dao.ErrPrizeNotFound
	ErrPrizeNotUnlocked = dao.ErrPrizeNotUnlocked
)

type PrizeDAO interface {
	Insert(ctx context.Context, prize dao.Prize) (dao.Prize, error)
	FindByID(ctx context.Context, id uint) (dao.Prize, error)
	FindByRaffleID(ctx context.Context, raffleID uint) ([]dao.Prize, error)
	FindLockedByRaffleID(ctx context.Context, raffleID uint) ([]dao.Prize, error)
	Unlock(ctx context.Context, prizeID uint, now time.Time) (bool, error)
	Claim(ctx context.Context, prizeID, winningTicketID uint) error
}

type PrizeRepository struct {
	dao PrizeDAO
}

func NewPrizeRepository(dao PrizeDAO) *PrizeRepository {
	return &PrizeRepository{
		dao: dao,
	}
}

func (r *PrizeRepository) Create(ctx context.Context, prize domain.Prize) (domain.Prize, error) {
	created, err := r.dao.Insert(ctx, r.domainToDao(prize))
	if err != nil {
		return domain.Prize{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.daoToDomain(created)
}

func (r *PrizeRepository) FindByID(ctx context.Context, id uint) (domain.Prize, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Prize{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return r.daoToDomain(found)
}

func (r *PrizeRepository) FindByRaffleID(ctx context.Context, raffleID uint) ([]domain.Prize, error) {
	found, err := r.dao.FindByRaffleID(ctx, raffleID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByRaffleID -> %w", err)
	}

	return r.daosToDomain(found)
}

func (r *PrizeRepository) FindLockedByRaffleID(ctx context.Context, raffleID uint) ([]domain.Prize, error) {
	found, err := r.dao.FindLockedByRaffleID(ctx, raffleID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindLockedByRaffleID -> %w", err)
	}

	return r.daosToDomain(found)
}

func (r *PrizeRepository) Unlock(ctx context.Context, prizeID uint, now time.Time) (bool, error) {
	unlocked, err := r.dao.Unlock(ctx, prizeID, now)
	if err != nil {
		return false, fmt.Errorf("r.dao.Unlock -> %w", err)
	}

	return unlocked, nil
}

func (r *PrizeRepository) Claim(ctx context.Context, prizeID, winningTicketID uint) error {
	if err := r.dao.Claim(ctx, prizeID, winningTicketID); err != nil {
		return fmt.Errorf("r.dao.Claim -> %w", err)
	}

	return nil
}

func (r *PrizeRepository) domainToDao(prize domain.Prize) dao.Prize {
	row := dao.Prize{
		ID:              prize.ID,
		RaffleID:        prize.RaffleID,
		Name:            prize.Name,
		Description:     prize.Description,
		UnlockMode:      string(prize.Condition.Mode()),
		UnlockThreshold: prize.Condition.Threshold(),
		RewardKind:      string(prize.Reward.Kind()),
		Status:          string(prize.Status),
		UnlockedAt:      prize.UnlockedAt,
		WinningTicketID: prize.WinningTicketID,
		CreatedAt:       prize.CreatedAt,
		UpdatedAt:       prize.UpdatedAt,
	}

	switch prize.Reward.Kind() {
	case domain.RewardKindCash:
		row.CashValue = decimal.NewNullDecimal(prize.Reward.CashValue())
	case domain.RewardKindProduct:
		row.ProductDescription = prize.Reward.Product()
	}

	return row
}

func (r *PrizeRepository) daoToDomain(prize dao.Prize) (domain.Prize, error) {
	var (
		condition domain.UnlockCondition
		reward    domain.Reward
		err       error
	)

	switch domain.UnlockMode(prize.UnlockMode) {
	case domain.UnlockModeTicketsSold:
		condition, err = domain.UnlockAtTicketsSold(prize.UnlockThreshold)
	case domain.UnlockModePercentage:
		condition, err = domain.UnlockAtPercentage(prize.UnlockThreshold)
	default:
		err = fmt.Errorf("unknown unlock mode %q", prize.UnlockMode)
	}
	if err != nil {
		return domain.Prize{}, fmt.Errorf("prize %d has an invalid unlock condition -> %w", prize.ID, err)
	}

	switch domain.RewardKind(prize.RewardKind) {
	case domain.RewardKindCash:
		reward, err = domain.CashReward(prize.CashValue.Decimal)
	case domain.RewardKindProduct:
		reward, err = domain.ProductReward(prize.ProductDescription)
	default:
		err = fmt.Errorf("unknown reward kind %q", prize.RewardKind)
	}
	if err != nil {
		return domain.Prize{}, fmt.Errorf("prize %d has an invalid reward -> %w", prize.ID, err)
	}

	return domain.Prize{
		ID:              prize.ID,
		RaffleID:        prize.RaffleID,
		Name:            prize.Name,
		Description:     prize.Description,
		Condition:       condition,
		Reward:          reward,
		Status:          domain.PrizeStatus(prize.Status),
		UnlockedAt:      prize.UnlockedAt,
		WinningTicketID: prize.WinningTicketID,
		CreatedAt:       prize.CreatedAt,
		UpdatedAt:       prize.UpdatedAt,
	}, nil
}

func (r *PrizeRepository) daosToDomain(prizes []dao.Prize) ([]domain.Prize, error) {
	result := make([]domain.Prize, len(prizes))
	for i, prize := range prizes {
		converted, err := r.daoToDomain(prize)
		if err != nil {
			return nil, err
		}
		result[i] = converted
	}

	return result, nil
}
