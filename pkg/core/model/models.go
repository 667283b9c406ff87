package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// DateLayout is the layout used for every date key (ledger, exports, matrices)
const DateLayout = "2006-01-02"

// Machine is a production machine with its own personnel pool
type Machine struct {
	// Name identifies the machine (unique within a session)
	Name string `validate:"required"`

	// CapacityPerHour is the throughput in kg/hour
	CapacityPerHour float64 `validate:"gt=0"`

	// HeadcountPerShift is the number of people required on every shift slot
	HeadcountPerShift int `validate:"min=1"`

	// TotalPersonnel is the nominal pool size, used only to size placeholder generation
	TotalPersonnel int `validate:"min=0"`
}

// PlanItem is one line of the weekly production plan
type PlanItem struct {
	Product  string  `validate:"required"`
	Quantity float64 `validate:"gt=0"`
	Machine  string  `validate:"required"`

	// DueDate is optional (nil when not given)
	DueDate *time.Time
}

// ShiftSlot is one (date, shift, machine, product) unit of planned work.
// Slots are immutable once produced by the allocator.
type ShiftSlot struct {
	Date       time.Time
	ShiftIndex int
	ShiftLabel string
	Machine    string
	Product    string

	// Hours is the planned hours for the slot, rounded to 2 places
	Hours decimal.Decimal

	RequiredHeadcount int

	// Assigned holds the names of the people assigned, in rotation order
	Assigned []string
}

// AssignedCount returns the number of people assigned to the slot
func (s ShiftSlot) AssignedCount() int {
	return len(s.Assigned)
}

// Shortage returns the number of required positions left unfilled
func (s ShiftSlot) Shortage() int {
	return max(s.RequiredHeadcount-len(s.Assigned), 0)
}

// DateKey returns the slot date formatted with DateLayout
func (s ShiftSlot) DateKey() string {
	return s.Date.Format(DateLayout)
}

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// NewMachine builds a validated Machine. The name is trimmed.
func NewMachine(name string, capacityPerHour float64, headcountPerShift, totalPersonnel int) (Machine, error) {
	m := Machine{
		Name:              strings.TrimSpace(name),
		CapacityPerHour:   capacityPerHour,
		HeadcountPerShift: headcountPerShift,
		TotalPersonnel:    totalPersonnel,
	}
	if err := validate.Struct(m); err != nil {
		return Machine{}, &PlanError{
			Kind:    KindInvalidInput,
			Machine: m.Name,
			Detail:  "machine validation failed",
			Err:     err,
		}
	}
	return m, nil
}

// NewPlanItem builds a validated PlanItem. Product and machine names are trimmed.
func NewPlanItem(product string, quantity float64, machine string, dueDate *time.Time) (PlanItem, error) {
	item := PlanItem{
		Product:  strings.TrimSpace(product),
		Quantity: quantity,
		Machine:  strings.TrimSpace(machine),
	}
	if dueDate != nil {
		d := Day(*dueDate)
		item.DueDate = &d
	}
	if err := validate.Struct(item); err != nil {
		return PlanItem{}, &PlanError{
			Kind:    KindInvalidInput,
			Machine: item.Machine,
			Product: item.Product,
			Detail:  "plan item validation failed",
			Err:     err,
		}
	}
	return item, nil
}

// PlaceholderName returns the generated name for the n-th (1-based) person of a machine
func PlaceholderName(machine string, n int) string {
	return fmt.Sprintf("%s-Personel%d", machine, n)
}

// Day truncates t to midnight UTC of its calendar date
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD date as midnight UTC
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD): %w", s, err)
	}
	return d, nil
}
