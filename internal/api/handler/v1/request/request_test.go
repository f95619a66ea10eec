package request

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckoutItemRequest_Validate(t *testing.T) {
	packageID := uint(3)

	t.Run("custom purchase requires a quantity", func(t *testing.T) {
		req := CheckoutItemRequest{RaffleID: 1}
		require.ErrorIs(t, req.Validate(), errQuantityRequired)

		req.Quantity = 5
		assert.NoError(t, req.Validate())
	})

	t.Run("package line needs no quantity", func(t *testing.T) {
		req := CheckoutItemRequest{RaffleID: 1, PackageID: &packageID}
		assert.NoError(t, req.Validate())
	})

	t.Run("raffle is mandatory", func(t *testing.T) {
		req := CheckoutItemRequest{Quantity: 5}
		assert.Error(t, req.Validate())
	})
}

func TestCreatePrizeRequest_Validate(t *testing.T) {
	base := CreatePrizeRequest{
		Name:            "Early bird TV",
		UnlockMode:      "tickets_sold",
		UnlockThreshold: 100,
	}

	t.Run("cash reward requires a positive cash value", func(t *testing.T) {
		req := base
		req.RewardKind = "cash"
		require.ErrorIs(t, req.Validate(), errCashValueRequired)

		req.CashValue = decimal.NewFromInt(-10)
		require.ErrorIs(t, req.Validate(), errCashValueRequired)

		req.CashValue = decimal.NewFromInt(500)
		assert.NoError(t, req.Validate())
	})

	t.Run("product reward requires a description", func(t *testing.T) {
		req := base
		req.RewardKind = "product"
		require.ErrorIs(t, req.Validate(), errProductDescRequired)

		req.ProductDescription = "55 inch TV"
		assert.NoError(t, req.Validate())
	})

	t.Run("unknown reward kind is rejected", func(t *testing.T) {
		req := base
		req.RewardKind = "points"
		assert.Error(t, req.Validate())
	})
}

func TestCreateRaffleRequest_Validate(t *testing.T) {
	valid := CreateRaffleRequest{
		Name:         "Spring raffle",
		TotalTickets: 1000,
		TicketPrice:  decimal.NewFromInt(1),
		TaxRate:      decimal.RequireFromString("12"),
	}

	t.Run("valid", func(t *testing.T) {
		req := valid
		assert.NoError(t, req.Validate())
	})

	t.Run("price must be positive", func(t *testing.T) {
		req := valid
		req.TicketPrice = decimal.Zero
		assert.Error(t, req.Validate())
	})

	t.Run("tax rate may be zero but not negative", func(t *testing.T) {
		req := valid
		req.TaxRate = decimal.Zero
		require.NoError(t, req.Validate())

		req.TaxRate = decimal.RequireFromString("-1")
		assert.Error(t, req.Validate())
	})
}

func TestCreatePackageRequest_Validate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		req := CreatePackageRequest{
			Name:     "Bundle of 10",
			Quantity: 10,
			Price:    decimal.RequireFromString("8.50"),
		}
		assert.NoError(t, req.Validate())
	})

	t.Run("price must be positive", func(t *testing.T) {
		req := CreatePackageRequest{
			Name:     "Bundle of 10",
			Quantity: 10,
		}
		assert.Error(t, req.Validate())
	})
}
