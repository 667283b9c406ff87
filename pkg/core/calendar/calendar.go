package calendar

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/teambition/rrule-go"

	"github.com/kenger42-gif/uretim-planlayici/pkg/core/model"
)

// ShiftDefinition describes one shift of the day
type ShiftDefinition struct {
	Label string
	Range string
}

// Calendar is the fixed cyclic sequence of shifts for every day.
// All shifts share the same duration.
type Calendar struct {
	shifts   []ShiftDefinition
	duration decimal.Decimal
}

// Cursor points at one shift of one date
type Cursor struct {
	Date  time.Time
	Index int
}

// New creates a Calendar. At least one shift and a positive duration are required.
func New(shifts []ShiftDefinition, duration decimal.Decimal) (*Calendar, error) {
	if len(shifts) == 0 {
		return nil, fmt.Errorf("calendar needs at least one shift definition")
	}
	if !duration.IsPositive() {
		return nil, fmt.Errorf("shift duration must be positive, got %s", duration)
	}

	return &Calendar{
		shifts:   append([]ShiftDefinition(nil), shifts...),
		duration: duration,
	}, nil
}

// Start returns the cursor at the first shift of the given date
func Start(date time.Time) Cursor {
	return Cursor{Date: model.Day(date), Index: 0}
}

// Next returns the cursor after consuming one shift.
// Advancing past the last shift of the day moves to shift 0 of the next date.
func (c *Calendar) Next(cur Cursor) Cursor {
	next := cur.Index + 1
	if next >= len(c.shifts) {
		return Cursor{Date: cur.Date.AddDate(0, 0, 1), Index: 0}
	}
	return Cursor{Date: cur.Date, Index: next}
}

// Duration returns the length of every shift in hours
func (c *Calendar) Duration() decimal.Decimal {
	return c.duration
}

// ShiftsPerDay returns the number of shifts in one day
func (c *Calendar) ShiftsPerDay() int {
	return len(c.shifts)
}

// Label returns the label of the shift at index (wrapped)
func (c *Calendar) Label(index int) string {
	return c.shifts[index%len(c.shifts)].Label
}

// Shift returns the definition of the shift at index (wrapped)
func (c *Calendar) Shift(index int) ShiftDefinition {
	return c.shifts[index%len(c.shifts)]
}

// DateSpan returns every calendar date from `from` to `to` inclusive.
// Returns nil when to is before from.
func DateSpan(from, to time.Time) []time.Time {
	from, to = model.Day(from), model.Day(to)
	if to.Before(from) {
		return nil
	}

	rule, err := rrule.NewRRule(rrule.ROption{
		Freq:    rrule.DAILY,
		Dtstart: from,
		Until:   to,
	})
	if err != nil {
		return nil
	}

	return rule.All()
}

// Horizon returns `days` consecutive dates starting at start
func Horizon(start time.Time, days int) []time.Time {
	if days <= 0 {
		return nil
	}
	start = model.Day(start)
	return DateSpan(start, start.AddDate(0, 0, days-1))
}
