package domain

import "github.com/shopspring/decimal"

// Quote is the financial breakdown of a cart selection. The same inputs
// always produce the same quote, so a client-displayed total and the
// server-recomputed one match to the cent.
type Quote struct {
	Subtotal  decimal.Decimal `json:"subtotal"`
	TaxAmount decimal.Decimal `json:"tax_amount"`
	Total     decimal.Decimal `json:"total"`
}

// Add returns the component-wise sum of two quotes.
func (q Quote) Add(other Quote) Quote {
	return Quote{
		Subtotal:  q.Subtotal.Add(other.Subtotal),
		TaxAmount: q.TaxAmount.Add(other.TaxAmount),
		Total:     q.Total.Add(other.Total),
	}
}
