package packrules

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/xtding233/pack-sim/internal/gacha"
)

var ErrInvalidRules = errors.New("invalid pack rules")

// ValidateRaw checks a merged rules file, reporting every violation at once.
func ValidateRaw(cfg RawRules) error {
	var errs []string

	if cfg.PoolSize != nil && *cfg.PoolSize <= 0 {
		errs = append(errs, "pool_size must be >= 1")
	}
	if s := cfg.Slots; s != nil {
		slots := []struct {
			name string
			v    *int
		}{
			{"common", s.Common},
			{"uncommon", s.Uncommon},
			{"rare_or_better", s.RareOrBetter},
		}
		for _, slot := range slots {
			if slot.v != nil && *slot.v < 0 {
				errs = append(errs, fmt.Sprintf("slots.%s must be >= 0", slot.name))
			}
		}
		if plan := resolvePlan(s); plan.Total() != gacha.PackSize {
			errs = append(errs, fmt.Sprintf("slots must add up to %d, got %d", gacha.PackSize, plan.Total()))
		}
	}

	if len(errs) > 0 {
		return errors.Wrap(ErrInvalidRules, strings.Join(errs, "; "))
	}
	return nil
}

// resolvePlan fills unset slot counts from the default plan.
func resolvePlan(s *SlotsConfig) gacha.SlotPlan {
	plan := gacha.DefaultSlotPlan
	if s == nil {
		return plan
	}
	if s.Common != nil {
		plan.Common = *s.Common
	}
	if s.Uncommon != nil {
		plan.Uncommon = *s.Uncommon
	}
	if s.RareOrBetter != nil {
		plan.RareOrBetter = *s.RareOrBetter
	}
	return plan
}
