package criteria

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/kenger42-gif/uretim-planlayici/pkg/core/allocator"
)

// WeeklyHourCapCriterion keeps every person's cumulative hours within the weekly cap.
//
// Validity:
//   - Returns false if the person's hours so far plus the slot hours exceed the cap
//
// Validation:
//   - Reports every person whose ledger total exceeds the cap
type WeeklyHourCapCriterion struct {
	cap decimal.Decimal
}

// NewWeeklyHourCapCriterion creates a new WeeklyHourCapCriterion.
// The cap is the weekly FTE hours, optionally inflated by an overtime allowance.
func NewWeeklyHourCapCriterion(cap decimal.Decimal) *WeeklyHourCapCriterion {
	return &WeeklyHourCapCriterion{cap: cap}
}

func (c *WeeklyHourCapCriterion) Name() string {
	return "WeeklyHourCap"
}

// Cap returns the configured weekly cap in hours
func (c *WeeklyHourCapCriterion) Cap() decimal.Decimal {
	return c.cap
}

func (c *WeeklyHourCapCriterion) IsCandidateEligible(state *allocator.RunState, person string, slot *allocator.SlotRequest) bool {
	return state.Ledger.Hours(person).Add(slot.Hours).LessThanOrEqual(c.cap)
}

func (c *WeeklyHourCapCriterion) ValidateRunState(state *allocator.RunState) []allocator.SlotValidationError {
	var errors []allocator.SlotValidationError

	for _, person := range state.Ledger.Persons() {
		hours := state.Ledger.Hours(person)
		if hours.GreaterThan(c.cap) {
			errors = append(errors, allocator.SlotValidationError{
				SlotIndex:     -1,
				CriterionName: c.Name(),
				Description: fmt.Sprintf("%s is assigned %s hours, above the weekly cap of %s",
					person, hours.StringFixed(2), c.cap.StringFixed(2)),
			})
		}
	}

	return errors
}
