package valuation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/xtding233/pack-sim/internal/catalog"
)

func priced(avg float64) catalog.Card {
	return catalog.Card{Pricing: &catalog.Pricing{Cardmarket: &catalog.CardmarketPrice{Avg: avg}}}
}

func TestPackTotal(t *testing.T) {
	assert.Equal(t, "0.00", PackTotal(nil))
	assert.Equal(t, "0.00", PackTotal([]catalog.Card{{}, {}}))
	assert.Equal(t, "0.30", PackTotal([]catalog.Card{priced(0.1), priced(0.2)}))
	assert.Equal(t, "12.35", PackTotal([]catalog.Card{priced(10), priced(2.345), {}}))
}

func TestParse(t *testing.T) {
	assert.Equal(t, "1.50", Parse("1.5").StringFixed(2))
	assert.True(t, Parse("nope").IsZero())
}

func TestSummarize(t *testing.T) {
	s := Summarize([]string{"1.00", "4.50", "0.50"})
	assert.Equal(t, 3, s.Packs)
	assert.Equal(t, "6.00", s.Total)
	assert.Equal(t, "2.00", s.Average)
	assert.Equal(t, "4.50", s.Best)
	assert.Equal(t, 1, s.BestAt)
	assert.Equal(t, Currency, s.Currency)
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	assert.Equal(t, 0, s.Packs)
	assert.Equal(t, "0.00", s.Total)
	assert.Equal(t, "0.00", s.Average)
	assert.Equal(t, -1, s.BestAt)
}
