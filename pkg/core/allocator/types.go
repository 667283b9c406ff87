package allocator

import (
	"maps"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kenger42-gif/uretim-planlayici/pkg/core/model"
)

// Ledger records what every person has been given during one planning run.
// It is rebuilt for each run; only rotation cursors and pools outlive a run.
type Ledger struct {
	// shifts maps person -> date key -> shift label
	shifts map[string]map[string]string

	// hours maps person -> cumulative assigned hours within the horizon
	hours map[string]decimal.Decimal
}

// NewLedger creates an empty ledger
func NewLedger() *Ledger {
	return &Ledger{
		shifts: make(map[string]map[string]string),
		hours:  make(map[string]decimal.Decimal),
	}
}

// ShiftOn returns the shift label the person works on the given date, if any
func (l *Ledger) ShiftOn(person string, date time.Time) (string, bool) {
	label, ok := l.shifts[person][date.Format(model.DateLayout)]
	return label, ok
}

// Hours returns the person's cumulative assigned hours
func (l *Ledger) Hours(person string) decimal.Decimal {
	return l.hours[person]
}

// Record books the person on a shift and adds the hours to their total
func (l *Ledger) Record(person string, date time.Time, label string, hours decimal.Decimal) {
	days, ok := l.shifts[person]
	if !ok {
		days = make(map[string]string)
		l.shifts[person] = days
	}
	days[date.Format(model.DateLayout)] = label
	l.hours[person] = l.hours[person].Add(hours)
}

// Assignments returns a copy of the person's date -> shift label map
func (l *Ledger) Assignments(person string) map[string]string {
	return maps.Clone(l.shifts[person])
}

// Persons returns every person with at least one booking, sorted by name
func (l *Ledger) Persons() []string {
	return slices.Sorted(maps.Keys(l.shifts))
}

// SlotRequest is the slot currently being filled
type SlotRequest struct {
	Date       time.Time
	ShiftIndex int
	ShiftLabel string
	Machine    string
	Product    string

	// Hours is the unrounded slot length charged to each assignee
	Hours decimal.Decimal

	// Required is the machine's headcount per shift
	Required int

	// Assigned holds the people accepted for this slot so far
	Assigned []string
}

// RunState is the state of one planning run as seen by criteria
type RunState struct {
	// Slots emitted so far, in emission order
	Slots []model.ShiftSlot

	// Ledger of bookings made so far
	Ledger *Ledger
}

// SkippedItem is a plan line that could not be scheduled
type SkippedItem struct {
	Item model.PlanItem
	Err  error
}

// LateItem is a plan line whose last slot falls after its due date
type LateItem struct {
	Item       model.PlanItem
	FinishDate time.Time
}

// DaysLate returns how many days past the due date the item finishes
func (li LateItem) DaysLate() int {
	if li.Item.DueDate == nil {
		return 0
	}
	return int(li.FinishDate.Sub(*li.Item.DueDate).Hours() / 24)
}
