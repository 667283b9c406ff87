package criteria

import (
	"fmt"
	"sort"

	"github.com/kenger42-gif/uretim-planlayici/pkg/core/allocator"
)

// NoDoubleShiftsCriterion allows at most one shift per person per calendar date.
//
// Validity:
//   - Returns false if the person is already booked on the slot's date, on any machine
//
// Validation:
//   - Reports every person who appears in more than one slot on the same date
type NoDoubleShiftsCriterion struct{}

// NewNoDoubleShiftsCriterion creates a new NoDoubleShiftsCriterion
func NewNoDoubleShiftsCriterion() *NoDoubleShiftsCriterion {
	return &NoDoubleShiftsCriterion{}
}

func (c *NoDoubleShiftsCriterion) Name() string {
	return "NoDoubleShifts"
}

func (c *NoDoubleShiftsCriterion) IsCandidateEligible(state *allocator.RunState, person string, slot *allocator.SlotRequest) bool {
	_, booked := state.Ledger.ShiftOn(person, slot.Date)
	return !booked
}

func (c *NoDoubleShiftsCriterion) ValidateRunState(state *allocator.RunState) []allocator.SlotValidationError {
	var errors []allocator.SlotValidationError

	// person -> date -> index of the first slot seen
	firstSeen := make(map[string]map[string]int)

	for i, slot := range state.Slots {
		dateKey := slot.DateKey()
		for _, person := range slot.Assigned {
			days, ok := firstSeen[person]
			if !ok {
				days = make(map[string]int)
				firstSeen[person] = days
			}

			if first, seen := days[dateKey]; seen {
				errors = append(errors, allocator.SlotValidationError{
					SlotIndex:     i,
					SlotDate:      dateKey,
					Machine:       slot.Machine,
					CriterionName: c.Name(),
					Description: fmt.Sprintf("%s is booked twice on %s (slots %d and %d)",
						person, dateKey, first, i),
				})
				continue
			}
			days[dateKey] = i
		}
	}

	sort.SliceStable(errors, func(i, j int) bool {
		return errors[i].SlotIndex < errors[j].SlotIndex
	})

	return errors
}
