// Package pricing derives cart totals. Sums are exact decimals; rounding is
// applied once, to the aggregate.
package pricing

import (
	"github.com/shopspring/decimal"

	"brewhaha/internal/domain"
)

var hundred = decimal.NewFromInt(100)

// Subtotal returns the exact sum of price * quantity over items.
func Subtotal(items []domain.LineItem) decimal.Decimal {
	sum := decimal.Zero
	for _, item := range items {
		sum = sum.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return sum
}

// CalculateTotal formats the cart total with exactly two decimals, e.g. "14.25".
func CalculateTotal(items []domain.LineItem) string {
	return Subtotal(items).StringFixed(2)
}

// CalculateAmount returns the cart total in minor units for the payment processor.
func CalculateAmount(items []domain.LineItem) int64 {
	return Subtotal(items).Mul(hundred).Round(0).IntPart()
}

// LineTotal formats a single line for display. Not used for charging.
func LineTotal(item domain.LineItem) string {
	return item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))).StringFixed(2)
}

// ItemCount is the number of units across all lines.
func ItemCount(items []domain.LineItem) int {
	n := 0
	for _, item := range items {
		n += item.Quantity
	}
	return n
}
