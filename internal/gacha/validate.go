package gacha

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// PackSize is the number of cards in every pack.
const PackSize = 10

// MaxPoolSize caps how many distinct cards a pack is drawn from.
const MaxPoolSize = 45

var ErrInvalidPlan = errors.New("invalid slot plan")

// SlotPlan is the per-tier slot count of one pack.
type SlotPlan struct {
	Common       int `json:"common" yaml:"common"`
	Uncommon     int `json:"uncommon" yaml:"uncommon"`
	RareOrBetter int `json:"rare_or_better" yaml:"rare_or_better"`
}

// DefaultSlotPlan is 6 common, 3 uncommon and 1 rare-or-better slot.
var DefaultSlotPlan = SlotPlan{Common: 6, Uncommon: 3, RareOrBetter: 1}

func (p SlotPlan) Total() int { return p.Common + p.Uncommon + p.RareOrBetter }

// Validate checks the counts are non-negative and fill exactly one pack.
func (p SlotPlan) Validate() error {
	var errs []string
	if p.Common < 0 {
		errs = append(errs, "common must be >= 0")
	}
	if p.Uncommon < 0 {
		errs = append(errs, "uncommon must be >= 0")
	}
	if p.RareOrBetter < 0 {
		errs = append(errs, "rare_or_better must be >= 0")
	}
	if p.Total() != PackSize {
		errs = append(errs, fmt.Sprintf("slots must add up to %d, got %d", PackSize, p.Total()))
	}
	if len(errs) > 0 {
		return errors.Wrap(ErrInvalidPlan, strings.Join(errs, "; "))
	}
	return nil
}
