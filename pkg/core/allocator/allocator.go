package allocator

import (
	"fmt"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kenger42-gif/uretim-planlayici/pkg/core/calendar"
	"github.com/kenger42-gif/uretim-planlayici/pkg/core/model"
	"github.com/kenger42-gif/uretim-planlayici/pkg/core/rotation"
)

// Allocator turns plan lines into shift slots
type Allocator struct {
	config   AllocationConfig
	machines map[string]model.Machine
	state    *RunState

	// cursors holds where each machine's last plan line stopped
	cursors map[string]calendar.Cursor

	outcome *AllocationOutcome
}

// AllocationConfig contains the configuration for one planning run
type AllocationConfig struct {
	// Calendar provides the shift sequence and shift duration
	Calendar *calendar.Calendar

	// Rotation holds the per-machine cursors; it is mutated by the run
	Rotation *rotation.Index

	// Machines available to the plan
	Machines []model.Machine

	// Pools maps machine name to its ordered personnel list
	Pools map[string][]string

	// Plan lines, scheduled in order
	Plan []model.PlanItem

	// Start is the first date of the run
	Start time.Time

	// Criteria decide candidate eligibility and audit the result
	Criteria []Criterion

	// ContinueCalendarPerMachine makes a machine's next plan line resume where its
	// previous one stopped instead of restarting at Start
	ContinueCalendarPerMachine bool
}

// AllocationOutcome represents the result of a planning run
type AllocationOutcome struct {
	// State is the final run state (slots and ledger)
	State *RunState

	// TotalShortage is the sum of unfilled positions over all slots
	TotalShortage int

	// Skipped plan lines (invalid capacity or quantity)
	Skipped []SkippedItem

	// Late plan lines finishing after their due date
	Late []LateItem

	// ValidationErrors contains any criterion violations found in the final state
	ValidationErrors []SlotValidationError

	// Success indicates the schedule passed validation
	Success bool
}

// Allocate runs the slot allocator over every plan line.
// Plan lines referencing an unknown machine abort the run before any cursor moves.
func Allocate(config AllocationConfig) (*AllocationOutcome, error) {
	allocator, err := newAllocator(config)
	if err != nil {
		return nil, err
	}

	// Reject unknown machines up front so an aborted run leaves rotation state alone
	for _, item := range config.Plan {
		if _, ok := allocator.machines[item.Machine]; !ok {
			return nil, &model.PlanError{
				Kind:    model.KindUnknownMachine,
				Machine: item.Machine,
				Product: item.Product,
				Detail:  "plan item references an unknown machine",
			}
		}
	}

	for _, item := range config.Plan {
		machine := allocator.machines[item.Machine]

		if machine.CapacityPerHour <= 0 {
			allocator.skip(item, &model.PlanError{
				Kind:    model.KindInvalidCapacity,
				Machine: machine.Name,
				Product: item.Product,
				Detail:  fmt.Sprintf("capacity must be positive, got %g", machine.CapacityPerHour),
			})
			continue
		}

		if item.Quantity <= 0 {
			allocator.skip(item, &model.PlanError{
				Kind:    model.KindInvalidInput,
				Machine: machine.Name,
				Product: item.Product,
				Detail:  fmt.Sprintf("quantity must be positive, got %g", item.Quantity),
			})
			continue
		}

		allocator.allocateItem(item, machine)
	}

	return allocator.buildOutcome(), nil
}

func newAllocator(config AllocationConfig) (*Allocator, error) {
	if config.Calendar == nil {
		return nil, fmt.Errorf("allocation config is missing a calendar")
	}
	if config.Rotation == nil {
		return nil, fmt.Errorf("allocation config is missing a rotation index")
	}

	machines := make(map[string]model.Machine, len(config.Machines))
	for _, m := range config.Machines {
		machines[m.Name] = m
	}

	return &Allocator{
		config:   config,
		machines: machines,
		state: &RunState{
			Slots:  []model.ShiftSlot{},
			Ledger: NewLedger(),
		},
		cursors: make(map[string]calendar.Cursor),
		outcome: &AllocationOutcome{
			Skipped: []SkippedItem{},
			Late:    []LateItem{},
		},
	}, nil
}

// allocateItem walks the calendar for one plan line until its labour hours are consumed
func (a *Allocator) allocateItem(item model.PlanItem, machine model.Machine) {
	cal := a.config.Calendar

	cursor := calendar.Start(a.config.Start)
	if a.config.ContinueCalendarPerMachine {
		if resumed, ok := a.cursors[machine.Name]; ok {
			cursor = resumed
		}
	}

	remaining := decimal.NewFromFloat(item.Quantity).Div(decimal.NewFromFloat(machine.CapacityPerHour))

	var finish time.Time
	for remaining.IsPositive() {
		slotHours := decimal.Min(cal.Duration(), remaining)

		request := &SlotRequest{
			Date:       cursor.Date,
			ShiftIndex: cursor.Index,
			ShiftLabel: cal.Label(cursor.Index),
			Machine:    machine.Name,
			Product:    item.Product,
			Hours:      slotHours,
			Required:   machine.HeadcountPerShift,
		}
		a.fillSlot(request)

		slot := model.ShiftSlot{
			Date:              request.Date,
			ShiftIndex:        request.ShiftIndex,
			ShiftLabel:        request.ShiftLabel,
			Machine:           request.Machine,
			Product:           request.Product,
			Hours:             slotHours.Round(2),
			RequiredHeadcount: request.Required,
			Assigned:          request.Assigned,
		}
		a.state.Slots = append(a.state.Slots, slot)
		a.outcome.TotalShortage += slot.Shortage()

		remaining = remaining.Sub(slotHours)
		finish = cursor.Date
		cursor = cal.Next(cursor)
	}

	a.cursors[machine.Name] = cursor

	if item.DueDate != nil && finish.After(*item.DueDate) {
		a.outcome.Late = append(a.outcome.Late, LateItem{Item: item, FinishDate: finish})
	}
}

// fillSlot probes up to twice the pool size via the rotation index, accepting
// eligible candidates in probe order until the headcount is reached.
// The rotation cursor advances once per probe, successful or not.
func (a *Allocator) fillSlot(request *SlotRequest) {
	pool := a.config.Pools[request.Machine]
	if len(pool) == 0 {
		return
	}

	maxProbes := 2 * len(pool)
	for probes := 0; len(request.Assigned) < request.Required && probes < maxProbes; probes++ {
		candidate, ok := a.config.Rotation.NextCandidate(request.Machine, pool)
		if !ok {
			return
		}

		if slices.Contains(request.Assigned, candidate) {
			continue
		}

		if !IsCandidateEligible(a.state, candidate, request, a.config.Criteria) {
			continue
		}

		request.Assigned = append(request.Assigned, candidate)
		a.state.Ledger.Record(candidate, request.Date, request.ShiftLabel, request.Hours)
	}
}

func (a *Allocator) skip(item model.PlanItem, err error) {
	a.outcome.Skipped = append(a.outcome.Skipped, SkippedItem{Item: item, Err: err})
}

// buildOutcome creates the final allocation outcome report
func (a *Allocator) buildOutcome() *AllocationOutcome {
	outcome := a.outcome
	outcome.State = a.state

	outcome.ValidationErrors = ValidateRunState(a.state, a.config.Criteria)
	if outcome.ValidationErrors == nil {
		outcome.ValidationErrors = []SlotValidationError{}
	}

	outcome.Success = len(outcome.ValidationErrors) == 0

	return outcome
}
