package commands

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kenger42-gif/uretim-planlayici/pkg/core/model"
	"github.com/kenger42-gif/uretim-planlayici/pkg/core/services"
	"github.com/kenger42-gif/uretim-planlayici/pkg/tabular"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorDim    = "\033[2m"
)

// PlanCmd creates the plan command
func PlanCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Allocate shifts for the current plan and print the summaries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			startFlag, _ := cmd.Flags().GetString("start")
			days, _ := cmd.Flags().GetInt("days")
			machinesFile, _ := cmd.Flags().GetString("machines")
			planFile, _ := cmd.Flags().GetString("plan")
			exportFormat, _ := cmd.Flags().GetString("export")

			exporter, err := exporterFor(exportFormat, app.Cfg.ExportDir)
			if err != nil {
				return err
			}

			var start time.Time
			if startFlag != "" {
				start, err = model.ParseDate(startFlag)
				if err != nil {
					return err
				}
			}

			if machinesFile != "" {
				if _, err := services.ImportMachines(app.Ctx, app.Reader, app.State, app.Logger, machinesFile); err != nil {
					return err
				}
			}
			if planFile != "" {
				if _, err := services.ImportPlan(app.Ctx, app.Reader, app.State, app.Logger, planFile); err != nil {
					return err
				}
			}

			app.Logger.Debug("plan command",
				zap.String("start", startFlag),
				zap.Int("days", days),
				zap.String("export", exportFormat))

			result, err := services.RunPlanning(app.Ctx, app.State, app.Cfg, app.Logger, services.RunOptions{
				Start:       start,
				HorizonDays: days,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			printRun(out, result)

			if exporter != nil {
				paths, err := services.ExportRun(app.Ctx, result, exporter, app.Logger)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Exported %d files:\n", len(paths))
				for _, p := range paths {
					fmt.Fprintf(out, "  %s\n", p)
				}
				fmt.Fprintln(out)
			}

			return nil
		},
	}

	cmd.Flags().String("start", "", "First date of the run (YYYY-MM-DD, defaults to today)")
	cmd.Flags().Int("days", 0, "Planning horizon in days (defaults to the configured horizon)")
	cmd.Flags().String("machines", "", "Import machines from this file before planning")
	cmd.Flags().String("plan", "", "Import plan lines from this file before planning")
	cmd.Flags().String("export", "none", "Export format: csv, xlsx or none")

	return cmd
}

// ResetRotationCmd creates the resetRotation command
func ResetRotationCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "resetRotation [machine]",
		Short: "Restart the rotation of one machine, or of every machine",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				app.State.ResetAllRotations()
				fmt.Fprintln(cmd.OutOrStdout(), "✓ Rotation reset for every machine")
				return nil
			}

			if err := app.State.ResetRotation(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Rotation reset for %s\n", args[0])
			return nil
		},
	}
}

func exporterFor(format, dir string) (services.Exporter, error) {
	switch strings.ToLower(format) {
	case "", "none":
		return nil, nil
	case "csv":
		return tabular.CSVExporter{Dir: dir}, nil
	case "xlsx":
		return tabular.XLSXExporter{Dir: dir}, nil
	default:
		return nil, fmt.Errorf("export must be csv, xlsx or none, got: %s", format)
	}
}

func printRun(out io.Writer, result *services.RunResult) {
	fmt.Fprintf(out, "\n✓ Planning run %s complete!\n\n", result.RunID)

	// Slots
	fmt.Fprintf(out, "%-11s %-14s %-14s %-18s %7s %5s  %s\n",
		"Date", "Shift", "Machine", "Product", "Hours", "Staff", "Assigned")
	for _, slot := range result.Slots {
		staff := fmt.Sprintf("%d/%d", slot.AssignedCount(), slot.RequiredHeadcount)
		if slot.Shortage() > 0 {
			staff = fmt.Sprintf("%s%5s%s", colorRed, staff, colorReset)
		} else {
			staff = fmt.Sprintf("%5s", staff)
		}
		fmt.Fprintf(out, "%-11s %-14s %-14s %-18s %7s %s  %s\n",
			slot.DateKey(),
			slot.ShiftLabel,
			slot.Machine,
			slot.Product,
			slot.Hours.StringFixed(2),
			staff,
			strings.Join(slot.Assigned, ", "))
	}
	fmt.Fprintln(out)

	// Daily summary
	fmt.Fprintln(out, "Daily summary")
	fmt.Fprintf(out, "%-14s %-11s %10s %9s %10s %10s %8s\n",
		"Machine", "Date", "Scheduled", "Personnel", "Available", "Overtime", "FTE")
	for _, d := range result.Report.Daily {
		fmt.Fprintf(out, "%-14s %-11s %10s %9d %10s %10s %8s\n",
			d.Machine,
			d.Date.Format(model.DateLayout),
			d.ScheduledHours.StringFixed(2),
			d.PersonnelCount,
			d.AvailableHours.StringFixed(2),
			d.OvertimeHours.StringFixed(2),
			d.FTE.StringFixed(2))
	}
	fmt.Fprintln(out)

	// Weekly summary
	fmt.Fprintln(out, "Weekly summary")
	fmt.Fprintf(out, "%-14s %10s %10s %10s %8s\n", "Machine", "Scheduled", "Available", "Overtime", "FTE")
	for _, w := range result.Report.Weekly {
		fmt.Fprintf(out, "%-14s %10s %10s %10s %8s\n",
			w.Machine,
			w.ScheduledHours.StringFixed(2),
			w.AvailableHours.StringFixed(2),
			w.OvertimeHours.StringFixed(2),
			w.FTE.StringFixed(2))
	}
	totals := result.Report.Totals
	fmt.Fprintf(out, "%-14s %10s %10s %10s %8s\n\n",
		"Total",
		totals.ScheduledHours.StringFixed(2),
		totals.AvailableHours.StringFixed(2),
		totals.OvertimeHours.StringFixed(2),
		totals.FTE.StringFixed(2))

	if result.TotalShortage > 0 {
		fmt.Fprintf(out, "%s⚠️  %d positions could not be filled%s\n", colorYellow, result.TotalShortage, colorReset)
	} else {
		fmt.Fprintln(out, "All positions filled.")
	}

	for _, skipped := range result.Skipped {
		fmt.Fprintf(out, "%s✗ Skipped %s on %s: %v%s\n", colorRed, skipped.Item.Product, skipped.Item.Machine, skipped.Err, colorReset)
	}
	for _, late := range result.Late {
		fmt.Fprintf(out, "%s⚠️  %s on %s finishes %s, %d days after %s%s\n",
			colorYellow,
			late.Item.Product,
			late.Item.Machine,
			late.FinishDate.Format(model.DateLayout),
			late.DaysLate(),
			late.Item.DueDate.Format(model.DateLayout),
			colorReset)
	}
	fmt.Fprintln(out)

	// Person x date matrices
	for _, matrix := range result.Matrices {
		fmt.Fprintf(out, "%s\n", matrix.Machine)
		if len(matrix.Persons) == 0 {
			fmt.Fprintf(out, "%s  no personnel%s\n\n", colorDim, colorReset)
			continue
		}

		nameWidth := len("Person")
		for _, p := range matrix.Persons {
			nameWidth = max(nameWidth, len(p))
		}
		const cellWidth = 14

		fmt.Fprintf(out, "  %-*s", nameWidth, "Person")
		for _, d := range matrix.Dates {
			fmt.Fprintf(out, " %-*s", cellWidth, d.Format("01-02 Mon"))
		}
		fmt.Fprintln(out)

		for i, cells := range matrix.Rows() {
			fmt.Fprintf(out, "  %-*s", nameWidth, matrix.Persons[i])
			for _, cell := range cells {
				if cell == "" {
					fmt.Fprintf(out, " %s%-*s%s", colorDim, cellWidth, "-", colorReset)
				} else {
					fmt.Fprintf(out, " %-*s", cellWidth, cell)
				}
			}
			fmt.Fprintln(out)
		}
		fmt.Fprintln(out)
	}
}
