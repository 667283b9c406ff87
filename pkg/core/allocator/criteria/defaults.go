package criteria

import (
	"github.com/shopspring/decimal"

	"github.com/kenger42-gif/uretim-planlayici/pkg/core/allocator"
)

// Default returns the criteria every planning run applies
func Default(weeklyCap decimal.Decimal) []allocator.Criterion {
	return []allocator.Criterion{
		NewShiftSizeCriterion(),
		NewNoDoubleShiftsCriterion(),
		NewWeeklyHourCapCriterion(weeklyCap),
	}
}
