package service

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/sorteos-app/sorteos-api/internal/domain"
)

var (
	ErrInvalidQuantity    = errors.New("quantity is outside the raffle's allowed purchase range")
	ErrPackageNotInRaffle = errors.New("pricing package does not belong to this raffle")
)

// CustomPurchaseFloor is the minimum quantity for a purchase that is not
// backed by a pricing package.
const CustomPurchaseFloor = 3

var hundred = decimal.NewFromInt(100)

// PricingService resolves a cart selection into a financial quote. It is
// pure; identical inputs always produce identical quotes, so a total shown
// by the client and the one recomputed at checkout match to the cent.
type PricingService struct{}

func NewPricingService() *PricingService {
	return &PricingService{}
}

// QuotePackage prices a fixed bundle against the raffle's tax configuration.
func (s *PricingService) QuotePackage(raffle domain.Raffle, pkg domain.PricingPackage) (domain.Quote, error) {
	if pkg.RaffleID != raffle.ID {
		return domain.Quote{}, ErrPackageNotInRaffle
	}
	if err := s.checkPurchaseRange(raffle, pkg.Quantity); err != nil {
		return domain.Quote{}, err
	}

	return s.quote(raffle, pkg.Price), nil
}

// QuoteCustom prices a raw ticket quantity at the raffle's unit price.
// Custom purchases have a floor of 3 units regardless of the raffle's
// configured minimum.
func (s *PricingService) QuoteCustom(raffle domain.Raffle, quantity int) (domain.Quote, error) {
	if quantity < CustomPurchaseFloor {
		return domain.Quote{}, ErrInvalidQuantity
	}
	if err := s.checkPurchaseRange(raffle, quantity); err != nil {
		return domain.Quote{}, err
	}

	nominal := raffle.TicketPrice.Mul(decimal.NewFromInt(int64(quantity)))

	return s.quote(raffle, nominal), nil
}

func (s *PricingService) checkPurchaseRange(raffle domain.Raffle, quantity int) error {
	if raffle.MinPurchase > 0 && quantity < raffle.MinPurchase {
		return ErrInvalidQuantity
	}
	if raffle.MaxPurchase > 0 && quantity > raffle.MaxPurchase {
		return ErrInvalidQuantity
	}

	return nil
}

// quote splits a nominal price into subtotal/tax/total. When the raffle's
// prices are tax-inclusive the tax is backed out for accounting display and
// the total stays equal to the nominal price; otherwise tax is added on top.
func (s *PricingService) quote(raffle domain.Raffle, nominal decimal.Decimal) domain.Quote {
	if raffle.PriceIncludesTax {
		tax := nominal.Mul(raffle.TaxRate).Div(hundred.Add(raffle.TaxRate)).Round(2)

		return domain.Quote{
			Subtotal:  nominal.Sub(tax),
			TaxAmount: tax,
			Total:     nominal,
		}
	}

	tax := nominal.Mul(raffle.TaxRate).Div(hundred).Round(2)

	return domain.Quote{
		Subtotal:  nominal,
		TaxAmount: tax,
		Total:     nominal.Add(tax),
	}
}
