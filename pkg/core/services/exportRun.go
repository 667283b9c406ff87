package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/kenger42-gif/uretim-planlayici/pkg/core/model"
	"github.com/kenger42-gif/uretim-planlayici/pkg/tabular"
)

// SlotRow is one exported shift slot
type SlotRow struct {
	Date              time.Time       `table:"date"`
	Shift             string          `table:"shift"`
	Machine           string          `table:"machine"`
	Product           string          `table:"product"`
	PlannedHours      decimal.Decimal `table:"planned_hours"`
	RequiredHeadcount int             `table:"required_headcount"`
	AssignedCount     int             `table:"assigned_count"`
	Shortage          int             `table:"shortage"`
	AssignedNames     []string        `table:"assigned_names"`
}

// DailyRow is one exported machine/date summary
type DailyRow struct {
	Machine              string          `table:"machine"`
	Date                 time.Time       `table:"date"`
	ScheduledHours       decimal.Decimal `table:"scheduled_hours"`
	PersonnelCount       int             `table:"personnel_count"`
	AvailablePersonHours decimal.Decimal `table:"available_person_hours"`
	OvertimeHours        decimal.Decimal `table:"overtime_hours"`
	DailyFTE             decimal.Decimal `table:"daily_fte"`
}

// WeeklyRow is one exported machine summary over the run
type WeeklyRow struct {
	Machine              string          `table:"machine"`
	WeeklyScheduledHours decimal.Decimal `table:"weekly_scheduled_hours"`
	WeeklyAvailableHours decimal.Decimal `table:"weekly_available_hours"`
	WeeklyOvertimeHours  decimal.Decimal `table:"weekly_overtime_hours"`
	WeeklyFTE            decimal.Decimal `table:"weekly_fte"`
}

// TotalsRow is the exported cumulative totals
type TotalsRow struct {
	TotalScheduledHours decimal.Decimal `table:"total_scheduled_hours"`
	TotalAvailableHours decimal.Decimal `table:"total_available_hours"`
	TotalOvertimeHours  decimal.Decimal `table:"total_overtime_hours"`
	TotalFTE            decimal.Decimal `table:"total_fte"`
	TotalShortages      int             `table:"total_shortages"`
}

// LateRow is one exported plan line finishing after its due date
type LateRow struct {
	Product    string    `table:"product"`
	Machine    string    `table:"machine"`
	DueDate    time.Time `table:"due_date"`
	FinishDate time.Time `table:"finish_date"`
	DaysLate   int       `table:"days_late"`
}

// Exporter writes named tables somewhere and returns where they went
type Exporter interface {
	Export(prefix string, tables []tabular.Table) ([]string, error)
}

// ExportRun writes every table of a run through the exporter.
// Files are prefixed with the run's start date and ID.
func ExportRun(ctx context.Context, result *RunResult, exporter Exporter, logger *zap.Logger) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("export cancelled: %w", err)
	}

	tables, err := BuildTables(result)
	if err != nil {
		return nil, fmt.Errorf("failed to build export tables: %w", err)
	}

	prefix := fmt.Sprintf("plan_%s_%s", result.Start.Format(model.DateLayout), shortID(result.RunID))
	paths, err := exporter.Export(prefix, tables)
	if err != nil {
		return paths, fmt.Errorf("failed to export run %s: %w", result.RunID, err)
	}

	logger.Info("Exported planning run",
		zap.String("run_id", result.RunID),
		zap.Int("tables", len(tables)),
		zap.Strings("paths", paths))

	return paths, nil
}

// BuildTables renders a run as export tables: slots, daily, weekly, totals, late
// and one person x date matrix per machine
func BuildTables(result *RunResult) ([]tabular.Table, error) {
	slotRows := make([]SlotRow, 0, len(result.Slots))
	for _, slot := range result.Slots {
		slotRows = append(slotRows, SlotRow{
			Date:              slot.Date,
			Shift:             slot.ShiftLabel,
			Machine:           slot.Machine,
			Product:           slot.Product,
			PlannedHours:      slot.Hours,
			RequiredHeadcount: slot.RequiredHeadcount,
			AssignedCount:     slot.AssignedCount(),
			Shortage:          slot.Shortage(),
			AssignedNames:     slot.Assigned,
		})
	}

	dailyRows := make([]DailyRow, 0, len(result.Report.Daily))
	for _, d := range result.Report.Daily {
		dailyRows = append(dailyRows, DailyRow{
			Machine:              d.Machine,
			Date:                 d.Date,
			ScheduledHours:       d.ScheduledHours,
			PersonnelCount:       d.PersonnelCount,
			AvailablePersonHours: d.AvailableHours,
			OvertimeHours:        d.OvertimeHours,
			DailyFTE:             d.FTE,
		})
	}

	weeklyRows := make([]WeeklyRow, 0, len(result.Report.Weekly))
	for _, w := range result.Report.Weekly {
		weeklyRows = append(weeklyRows, WeeklyRow{
			Machine:              w.Machine,
			WeeklyScheduledHours: w.ScheduledHours,
			WeeklyAvailableHours: w.AvailableHours,
			WeeklyOvertimeHours:  w.OvertimeHours,
			WeeklyFTE:            w.FTE,
		})
	}

	totals := result.Report.Totals
	totalsRows := []TotalsRow{{
		TotalScheduledHours: totals.ScheduledHours,
		TotalAvailableHours: totals.AvailableHours,
		TotalOvertimeHours:  totals.OvertimeHours,
		TotalFTE:            totals.FTE,
		TotalShortages:      totals.Shortages,
	}}

	lateRows := make([]LateRow, 0, len(result.Late))
	for _, late := range result.Late {
		lateRows = append(lateRows, LateRow{
			Product:    late.Item.Product,
			Machine:    late.Item.Machine,
			DueDate:    *late.Item.DueDate,
			FinishDate: late.FinishDate,
			DaysLate:   late.DaysLate(),
		})
	}

	tables := make([]tabular.Table, 0, 5+len(result.Matrices))
	for _, t := range []struct {
		name   string
		encode func() ([][]string, error)
	}{
		{"slots", func() ([][]string, error) { return tabular.Encode(slotRows) }},
		{"daily", func() ([][]string, error) { return tabular.Encode(dailyRows) }},
		{"weekly", func() ([][]string, error) { return tabular.Encode(weeklyRows) }},
		{"totals", func() ([][]string, error) { return tabular.Encode(totalsRows) }},
		{"late", func() ([][]string, error) { return tabular.Encode(lateRows) }},
	} {
		rows, err := t.encode()
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s: %w", t.name, err)
		}
		tables = append(tables, tabular.Table{Name: t.name, Rows: rows})
	}

	for _, matrix := range result.Matrices {
		header := make([]string, 0, len(matrix.Dates)+1)
		header = append(header, "person")
		for _, date := range matrix.Dates {
			header = append(header, date.Format(model.DateLayout))
		}

		rows := [][]string{header}
		for i, cells := range matrix.Rows() {
			rows = append(rows, append([]string{matrix.Persons[i]}, cells...))
		}

		tables = append(tables, tabular.Table{Name: "matrix_" + matrix.Machine, Rows: rows})
	}

	return tables, nil
}

func shortID(id string) string {
	id, _, _ = strings.Cut(id, "-")
	return id
}
