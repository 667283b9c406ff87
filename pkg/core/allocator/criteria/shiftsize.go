package criteria

import (
	"fmt"

	"github.com/kenger42-gif/uretim-planlayici/pkg/core/allocator"
)

// ShiftSizeCriterion prevents overfilling of slots.
//
// Validity:
//   - Returns false once the slot has reached its required headcount
//
// Validation:
//   - Reports slots with more people than required, and people listed twice in one slot
//   - Underfilled slots are not errors; they are reported as shortages
type ShiftSizeCriterion struct{}

// NewShiftSizeCriterion creates a new ShiftSizeCriterion
func NewShiftSizeCriterion() *ShiftSizeCriterion {
	return &ShiftSizeCriterion{}
}

func (c *ShiftSizeCriterion) Name() string {
	return "ShiftSize"
}

func (c *ShiftSizeCriterion) IsCandidateEligible(state *allocator.RunState, person string, slot *allocator.SlotRequest) bool {
	return len(slot.Assigned) < slot.Required
}

func (c *ShiftSizeCriterion) ValidateRunState(state *allocator.RunState) []allocator.SlotValidationError {
	var errors []allocator.SlotValidationError

	for i, slot := range state.Slots {
		if slot.AssignedCount() > slot.RequiredHeadcount {
			errors = append(errors, allocator.SlotValidationError{
				SlotIndex:     i,
				SlotDate:      slot.DateKey(),
				Machine:       slot.Machine,
				CriterionName: c.Name(),
				Description: fmt.Sprintf("Slot is overfilled: has %d people but headcount is %d",
					slot.AssignedCount(), slot.RequiredHeadcount),
			})
		}

		seen := make(map[string]bool, len(slot.Assigned))
		for _, person := range slot.Assigned {
			if seen[person] {
				errors = append(errors, allocator.SlotValidationError{
					SlotIndex:     i,
					SlotDate:      slot.DateKey(),
					Machine:       slot.Machine,
					CriterionName: c.Name(),
					Description:   fmt.Sprintf("%s is listed more than once", person),
				})
			}
			seen[person] = true
		}
	}

	return errors
}
