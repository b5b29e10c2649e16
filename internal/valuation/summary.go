package valuation

import "github.com/shopspring/decimal"

// Summary aggregates the value of a run of opened packs.
type Summary struct {
	Packs    int    `json:"packs"`
	Total    string `json:"total"`   // sum of pack totals
	Average  string `json:"average"` // mean pack total
	Best     string `json:"best"`    // highest pack total
	BestAt   int    `json:"best_at"` // index of the best pack, -1 when empty
	Currency string `json:"currency"`
}

// Summarize folds two-decimal pack totals (newest first) into a Summary.
func Summarize(totals []string) Summary {
	s := Summary{BestAt: -1, Currency: Currency}
	sum := decimal.Zero
	best := decimal.Zero
	for i, t := range totals {
		v := Parse(t)
		sum = sum.Add(v)
		if s.BestAt < 0 || v.GreaterThan(best) {
			best = v
			s.BestAt = i
		}
	}
	s.Packs = len(totals)
	s.Total = sum.StringFixed(2)
	s.Best = best.StringFixed(2)
	if s.Packs > 0 {
		s.Average = sum.Div(decimal.NewFromInt(int64(s.Packs))).StringFixed(2)
	} else {
		s.Average = decimal.Zero.StringFixed(2)
	}
	return s
}
