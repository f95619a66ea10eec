package response

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/sorteos-app/sorteos-api/internal/domain"
)

// PrizeResponse flattens the unlock condition and the reward, which the
// domain type keeps opaque.
type PrizeResponse struct {
	ID                 uint             `json:"id"`
	RaffleID           uint             `json:"raffle_id"`
	Name               string           `json:"name"`
	Description        string           `json:"description"`
	UnlockMode         string           `json:"unlock_mode"`
	UnlockThreshold    int              `json:"unlock_threshold"`
	RewardKind         string           `json:"reward_kind"`
	CashValue          *decimal.Decimal `json:"cash_value,omitempty"`
	ProductDescription string           `json:"product_description,omitempty"`
	Status             string           `json:"status"`
	UnlockedAt         *time.Time       `json:"unlocked_at,omitempty"`
	WinningTicketID    *uint            `json:"winning_ticket_id,omitempty"`
	CreatedAt          time.Time        `json:"created_at"`
}

func NewPrizeResponse(prize domain.Prize) PrizeResponse {
	resp := PrizeResponse{
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
	}

	switch prize.Reward.Kind() {
	case domain.RewardKindCash:
		value := prize.Reward.CashValue()
		resp.CashValue = &value
	case domain.RewardKindProduct:
		resp.ProductDescription = prize.Reward.Product()
	}

	return resp
}

func NewPrizeResponses(prizes []domain.Prize) []PrizeResponse {
	resps := make([]PrizeResponse, len(prizes))
	for i, prize := range prizes {
		resps[i] = NewPrizeResponse(prize)
	}

	return resps
}
