package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnlockAtTicketsSold(t *testing.T) {
	t.Run("valid threshold", func(t *testing.T) {
		cond, err := UnlockAtTicketsSold(50)
		require.NoError(t, err)
		assert.Equal(t, UnlockModeTicketsSold, cond.Mode())
		assert.Equal(t, 50, cond.Threshold())
	})

	t.Run("non-positive threshold", func(t *testing.T) {
		_, err := UnlockAtTicketsSold(0)
		require.ErrorIs(t, err, ErrInvalidUnlockThreshold)

		_, err = UnlockAtTicketsSold(-5)
		require.ErrorIs(t, err, ErrInvalidUnlockThreshold)
	})
}

func TestUnlockAtPercentage(t *testing.T) {
	t.Run("valid percentage", func(t *testing.T) {
		cond, err := UnlockAtPercentage(100)
		require.NoError(t, err)
		assert.Equal(t, UnlockModePercentage, cond.Mode())
	})

	t.Run("out of range", func(t *testing.T) {
		for _, percent := range []int{0, -1, 101} {
			_, err := UnlockAtPercentage(percent)
			require.ErrorIs(t, err, ErrInvalidPercentage, "percent=%d", percent)
		}
	})
}

func TestUnlockCondition_MetBy(t *testing.T) {
	tests := []struct {
		name         string
		cond         func() UnlockCondition
		soldCount    int
		totalTickets int
		want         bool
	}{
		{
			name:         "tickets sold below threshold",
			cond:         mustTicketsSold(50),
			soldCount:    49,
			totalTickets: 1000,
			want:         false,
		},
		{
			name:         "tickets sold at threshold",
			cond:         mustTicketsSold(50),
			soldCount:    50,
			totalTickets: 1000,
			want:         true,
		},
		{
			name:         "percentage just below",
			cond:         mustPercentage(50),
			soldCount:    49,
			totalTickets: 100,
			want:         false,
		},
		{
			name:         "percentage exactly at",
			cond:         mustPercentage(50),
			soldCount:    50,
			totalTickets: 100,
			want:         true,
		},
		{
			name:         "percentage rounds without floats",
			cond:         mustPercentage(33),
			soldCount:    33,
			totalTickets: 100,
			want:         true,
		},
		{
			name:         "percentage with odd pool size",
			cond:         mustPercentage(50),
			soldCount:    2,
			totalTickets: 3,
			want:         true,
		},
		{
			name:         "percentage with zero pool never unlocks",
			cond:         mustPercentage(50),
			soldCount:    10,
			totalTickets: 0,
			want:         false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cond().MetBy(tt.soldCount, tt.totalTickets))
		})
	}
}

func mustTicketsSold(count int) func() UnlockCondition {
	return func() UnlockCondition {
		cond, err := UnlockAtTicketsSold(count)
		if err != nil {
			panic(err)
		}
		return cond
	}
}

func mustPercentage(percent int) func() UnlockCondition {
	return func() UnlockCondition {
		cond, err := UnlockAtPercentage(percent)
		if err != nil {
			panic(err)
		}
		return cond
	}
}

func TestRewards(t *testing.T) {
	t.Run("cash reward", func(t *testing.T) {
		reward, err := CashReward(decimal.RequireFromString("100.00"))
		require.NoError(t, err)
		assert.Equal(t, RewardKindCash, reward.Kind())
		assert.True(t, reward.CashValue().Equal(decimal.RequireFromString("100.00")))
	})

	t.Run("cash reward must be positive", func(t *testing.T) {
		_, err := CashReward(decimal.Zero)
		require.ErrorIs(t, err, ErrInvalidReward)
	})

	t.Run("product reward", func(t *testing.T) {
		reward, err := ProductReward("a very large ham")
		require.NoError(t, err)
		assert.Equal(t, RewardKindProduct, reward.Kind())
		assert.Equal(t, "a very large ham", reward.Product())
	})

	t.Run("product reward needs a description", func(t *testing.T) {
		_, err := ProductReward("")
		require.ErrorIs(t, err, ErrInvalidReward)
	})
}

func TestPrize_Unlock(t *testing.T) {
	now := time.Now()

	t.Run("locked prize unlocks once", func(t *testing.T) {
		prize := Prize{Status: PrizeStatusLocked}

		assert.True(t, prize.Unlock(now))
		assert.Equal(t, PrizeStatusUnlocked, prize.Status)
		require.NotNil(t, prize.UnlockedAt)

		// Unlocking never re-fires.
		assert.False(t, prize.Unlock(now.Add(time.Hour)))
		assert.Equal(t, now, *prize.UnlockedAt)
	})

	t.Run("claimed prize stays claimed", func(t *testing.T) {
		prize := Prize{Status: PrizeStatusClaimed}

		assert.False(t, prize.Unlock(now))
		assert.Equal(t, PrizeStatusClaimed, prize.Status)
	})
}

func TestPrize_MarkClaimed(t *testing.T) {
	t.Run("unlocked prize can be claimed", func(t *testing.T) {
		prize := Prize{Status: PrizeStatusUnlocked}

		require.NoError(t, prize.MarkClaimed(77))
		assert.Equal(t, PrizeStatusClaimed, prize.Status)
		require.NotNil(t, prize.WinningTicketID)
		assert.Equal(t, uint(77), *prize.WinningTicketID)
	})

	t.Run("locked prize cannot be claimed", func(t *testing.T) {
		prize := Prize{Status: PrizeStatusLocked}

		require.ErrorIs(t, prize.MarkClaimed(77), ErrPrizeNotUnlocked)
		assert.Nil(t, prize.WinningTicketID)
	})
}
