package roster

import (
	"slices"
	"time"

	"github.com/kenger42-gif/uretim-planlayici/pkg/core/model"
)

// Matrix is one machine's person × date grid. A cell holds the shift label the
// person works on that date, or "" when they are off.
type Matrix struct {
	Machine string
	Dates   []time.Time
	Persons []string

	// cells maps person -> date key -> shift label
	cells map[string]map[string]string
}

// Cell returns the shift label for the person on the date, or ""
func (m *Matrix) Cell(person string, date time.Time) string {
	return m.cells[person][date.Format(model.DateLayout)]
}

// Rows returns the grid as string rows (one per person, one column per date)
func (m *Matrix) Rows() [][]string {
	rows := make([][]string, 0, len(m.Persons))
	for _, person := range m.Persons {
		row := make([]string, len(m.Dates))
		for i, date := range m.Dates {
			row[i] = m.Cell(person, date)
		}
		rows = append(rows, row)
	}
	return rows
}

// SlotDates returns the sorted distinct dates of the slots.
// With no slots it returns fallback unchanged.
func SlotDates(slots []model.ShiftSlot, fallback []time.Time) []time.Time {
	if len(slots) == 0 {
		return fallback
	}

	seen := make(map[time.Time]bool)
	var dates []time.Time
	for _, slot := range slots {
		day := model.Day(slot.Date)
		if !seen[day] {
			seen[day] = true
			dates = append(dates, day)
		}
	}
	slices.SortFunc(dates, func(a, b time.Time) int { return a.Compare(b) })

	return dates
}

// Build projects the slots into one matrix per machine, in machine order.
// Rows are the machine's pool members in pool order, including people with no
// assignments. Only slots of the row's own machine fill its cells.
func Build(machines []model.Machine, pools map[string][]string, slots []model.ShiftSlot, dates []time.Time) []*Matrix {
	matrices := make([]*Matrix, 0, len(machines))

	for _, machine := range machines {
		matrix := &Matrix{
			Machine: machine.Name,
			Dates:   dates,
			Persons: slices.Clone(pools[machine.Name]),
			cells:   make(map[string]map[string]string),
		}
		if matrix.Persons == nil {
			matrix.Persons = []string{}
		}

		for _, slot := range slots {
			if slot.Machine != machine.Name {
				continue
			}
			for _, person := range slot.Assigned {
				days, ok := matrix.cells[person]
				if !ok {
					days = make(map[string]string)
					matrix.cells[person] = days
				}
				days[slot.DateKey()] = slot.ShiftLabel
			}
		}

		matrices = append(matrices, matrix)
	}

	return matrices
}
