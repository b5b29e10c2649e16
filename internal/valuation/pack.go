package valuation

import (
	"github.com/shopspring/decimal"

	"github.com/xtding233/pack-sim/internal/catalog"
)

// Currency is the unit of catalog market prices.
const Currency = "EUR"

// PackTotal sums the market price of every card (absent prices count as 0)
// and returns it with exactly two decimals, e.g. "3.40".
func PackTotal(cards []catalog.Card) string {
	return Sum(cards).StringFixed(2)
}

// Sum adds the market prices of cards.
func Sum(cards []catalog.Card) decimal.Decimal {
	total := decimal.Zero
	for _, c := range cards {
		total = total.Add(decimal.NewFromFloat(c.MarketPrice()))
	}
	return total
}

// Parse reads a two-decimal total back; malformed values count as zero.
func Parse(total string) decimal.Decimal {
	d, err := decimal.NewFromString(total)
	if err != nil {
		return decimal.Zero
	}
	return d
}
