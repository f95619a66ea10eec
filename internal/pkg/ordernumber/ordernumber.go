// Package ordernumber generates human-readable order numbers that are
// sortable by creation time.
package ordernumber

import (
	"fmt"
	"time"
)

type Generator interface {
	Generate(prefix string) string
}

type DefaultGenerator struct{}

func NewGenerator() *DefaultGenerator {
	return &DefaultGenerator{}
}

// Generate returns prefix + UTC timestamp + a sub-second suffix. The suffix
// keeps numbers minted in the same second distinct; the database's unique
// constraint on order_number backstops the rest.
func (g *DefaultGenerator) Generate(prefix string) string {
	now := time.Now().UTC()

	return fmt.Sprintf("%s%s%06d",
		prefix,
		now.Format("20060102150405"),
		now.Nanosecond()%1000000,
	)
}
