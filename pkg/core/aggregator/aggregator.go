package aggregator

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/kenger42-gif/uretim-planlayici/pkg/core/calendar"
	"github.com/kenger42-gif/uretim-planlayici/pkg/core/model"
)

// Config holds the FTE baselines used by the summaries
type Config struct {
	DailyFTEHours  decimal.Decimal
	WeeklyFTEHours decimal.Decimal
}

// DailySummary is one machine on one date
type DailySummary struct {
	Machine        string
	Date           time.Time
	ScheduledHours decimal.Decimal
	PersonnelCount int
	AvailableHours decimal.Decimal
	OvertimeHours  decimal.Decimal
	FTE            decimal.Decimal
}

// WeeklySummary is one machine over the whole date span
type WeeklySummary struct {
	Machine        string
	ScheduledHours decimal.Decimal
	AvailableHours decimal.Decimal
	OvertimeHours  decimal.Decimal
	FTE            decimal.Decimal
}

// Totals sums the weekly summaries across machines
type Totals struct {
	ScheduledHours decimal.Decimal
	AvailableHours decimal.Decimal
	OvertimeHours  decimal.Decimal
	FTE            decimal.Decimal
	Shortages      int
}

// Report is the full roll-up of one planning run
type Report struct {
	Dates  []time.Time
	Daily  []DailySummary
	Weekly []WeeklySummary
	Totals Totals
}

// RunDateSpan returns every date from the earliest to the latest slot date.
// With no slots it falls back to horizonDays dates starting at start.
func RunDateSpan(slots []model.ShiftSlot, start time.Time, horizonDays int) []time.Time {
	if len(slots) == 0 {
		return calendar.Horizon(start, horizonDays)
	}

	first, last := slots[0].Date, slots[0].Date
	for _, slot := range slots[1:] {
		if slot.Date.Before(first) {
			first = slot.Date
		}
		if slot.Date.After(last) {
			last = slot.Date
		}
	}

	return calendar.DateSpan(first, last)
}

// Summarise rolls the slots up per machine and date.
// poolSizes gives the personnel count of each machine; machines appear in the given order.
// Every figure is rounded to two places, and totals are summed from the rounded weekly rows.
func Summarise(slots []model.ShiftSlot, machines []model.Machine, poolSizes map[string]int, dates []time.Time, cfg Config) *Report {
	// machine -> date key -> scheduled hours
	scheduled := make(map[string]map[string]decimal.Decimal)
	weekly := make(map[string]decimal.Decimal)
	shortages := 0

	for _, slot := range slots {
		byDate, ok := scheduled[slot.Machine]
		if !ok {
			byDate = make(map[string]decimal.Decimal)
			scheduled[slot.Machine] = byDate
		}
		byDate[slot.DateKey()] = byDate[slot.DateKey()].Add(slot.Hours)
		weekly[slot.Machine] = weekly[slot.Machine].Add(slot.Hours)
		shortages += slot.Shortage()
	}

	report := &Report{
		Dates:  dates,
		Daily:  make([]DailySummary, 0, len(machines)*len(dates)),
		Weekly: make([]WeeklySummary, 0, len(machines)),
	}

	totals := Totals{
		ScheduledHours: decimal.Zero,
		AvailableHours: decimal.Zero,
		FTE:            decimal.Zero,
		Shortages:      shortages,
	}

	for _, machine := range machines {
		personnel := poolSizes[machine.Name]
		headcount := decimal.NewFromInt(int64(personnel))

		dailyAvailable := headcount.Mul(cfg.DailyFTEHours)
		for _, date := range dates {
			hours := scheduled[machine.Name][date.Format(model.DateLayout)]
			report.Daily = append(report.Daily, DailySummary{
				Machine:        machine.Name,
				Date:           date,
				ScheduledHours: hours.Round(2),
				PersonnelCount: personnel,
				AvailableHours: dailyAvailable.Round(2),
				OvertimeHours:  overtime(hours, dailyAvailable).Round(2),
				FTE:            safeDiv(hours, cfg.DailyFTEHours).Round(2),
			})
		}

		hours := weekly[machine.Name]
		weeklyAvailable := headcount.Mul(cfg.WeeklyFTEHours)
		summary := WeeklySummary{
			Machine:        machine.Name,
			ScheduledHours: hours.Round(2),
			AvailableHours: weeklyAvailable.Round(2),
			OvertimeHours:  overtime(hours, weeklyAvailable).Round(2),
			FTE:            safeDiv(hours, cfg.WeeklyFTEHours).Round(2),
		}
		report.Weekly = append(report.Weekly, summary)

		totals.ScheduledHours = totals.ScheduledHours.Add(summary.ScheduledHours)
		totals.AvailableHours = totals.AvailableHours.Add(summary.AvailableHours)
		totals.FTE = totals.FTE.Add(summary.FTE)
	}

	totals.OvertimeHours = overtime(totals.ScheduledHours, totals.AvailableHours).Round(2)
	report.Totals = totals

	return report
}

func overtime(scheduled, available decimal.Decimal) decimal.Decimal {
	return decimal.Max(decimal.Zero, scheduled.Sub(available))
}

// safeDiv returns zero when the FTE baseline is configured as zero
func safeDiv(hours, baseline decimal.Decimal) decimal.Decimal {
	if baseline.IsZero() {
		return decimal.Zero
	}
	return hours.Div(baseline)
}
