package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidUnlockThreshold = errors.New("unlock threshold must be positive")
	ErrInvalidPercentage      = errors.New("unlock percentage must be between 1 and 100")
	ErrInvalidReward          = errors.New("prize reward must be either a cash value or a product")
	ErrPrizeNotUnlocked       = errors.New("prize has not been unlocked yet")
)

type PrizeStatus string

const (
	PrizeStatusLocked   PrizeStatus = "locked"
	PrizeStatusUnlocked PrizeStatus = "unlocked"
	PrizeStatusClaimed  PrizeStatus = "claimed"
)

func (s PrizeStatus) IsValid() bool {
	switch s {
	case PrizeStatusLocked, PrizeStatusUnlocked, PrizeStatusClaimed:
		return true
	default:
		return false
	}
}

type UnlockMode string

const (
	UnlockModeTicketsSold UnlockMode = "tickets_sold"
	UnlockModePercentage  UnlockMode = "percentage"
)

// UnlockCondition is the sales level at which a progressive prize becomes
// visible. It is either an absolute tickets-sold threshold or a percentage
// of the raffle's pool, never both.
type UnlockCondition struct {
	mode      UnlockMode
	threshold int
}

func UnlockAtTicketsSold(count int) (UnlockCondition, error) {
	if count <= 0 {
		return UnlockCondition{}, ErrInvalidUnlockThreshold
	}

	return UnlockCondition{mode: UnlockModeTicketsSold, threshold: count}, nil
}

func UnlockAtPercentage(percent int) (UnlockCondition, error) {
	if percent <= 0 || percent > 100 {
		return UnlockCondition{}, ErrInvalidPercentage
	}

	return UnlockCondition{mode: UnlockModePercentage, threshold: percent}, nil
}

func (c UnlockCondition) Mode() UnlockMode {
	return c.mode
}

func (c UnlockCondition) Threshold() int {
	return c.threshold
}

// MetBy reports whether the condition is satisfied at the given sold count.
// Percentage comparison stays in integer arithmetic to avoid float drift.
func (c UnlockCondition) MetBy(soldCount, totalTickets int) bool {
	switch c.mode {
	case UnlockModeTicketsSold:
		return soldCount >= c.threshold
	case UnlockModePercentage:
		if totalTickets <= 0 {
			return false
		}
		return soldCount*100 >= c.threshold*totalTickets
	default:
		return false
	}
}

type RewardKind string

const (
	RewardKindCash    RewardKind = "cash"
	RewardKindProduct RewardKind = "product"
)

// Reward is what the prize pays out: a cash value or a product, never both.
type Reward struct {
	kind      RewardKind
	cashValue decimal.Decimal
	product   string
}

func CashReward(value decimal.Decimal) (Reward, error) {
	if !value.IsPositive() {
		return Reward{}, ErrInvalidReward
	}

	return Reward{kind: RewardKindCash, cashValue: value}, nil
}

func ProductReward(description string) (Reward, error) {
	if description == "" {
		return Reward{}, ErrInvalidReward
	}

	return Reward{kind: RewardKindProduct, product: description}, nil
}

func (r Reward) Kind() RewardKind {
	return r.kind
}

func (r Reward) CashValue() decimal.Decimal {
	return r.cashValue
}

func (r Reward) Product() string {
	return r.product
}

// Prize is a progressive reward tied to a raffle. Status is derived from
// sales, not freely settable: locked -> unlocked happens automatically when
// the unlock condition is first met, unlocked -> claimed only after a
// winning ticket has been designated.
type Prize struct {
	ID              uint            `json:"id"`
	RaffleID        uint            `json:"raffle_id"`
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	Condition       UnlockCondition `json:"-"`
	Reward          Reward          `json:"-"`
	Status          PrizeStatus     `json:"status"`
	UnlockedAt      *time.Time      `json:"unlocked_at,omitempty"`
	WinningTicketID *uint           `json:"winning_ticket_id,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// Unlock flips a locked prize to unlocked. It never re-locks: calling it on
// an already unlocked or claimed prize is a no-op. Returns true when the
// status actually changed.
func (p *Prize) Unlock(now time.Time) bool {
	if p.Status != PrizeStatusLocked {
		return false
	}

	p.Status = PrizeStatusUnlocked
	p.UnlockedAt = &now

	return true
}

// MarkClaimed records the winning ticket. Only an unlocked prize can be
// claimed.
func (p *Prize) MarkClaimed(winningTicketID uint) error {
	if p.Status != PrizeStatusUnlocked {
		return ErrPrizeNotUnlocked
	}

	p.Status = PrizeStatusClaimed
	p.WinningTicketID = &winningTicketID

	return nil
}
