package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kenger42-gif/uretim-planlayici/pkg/core/model"
	"github.com/kenger42-gif/uretim-planlayici/pkg/core/services"
)

// AddPlanCmd creates the addPlan command
func AddPlanCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "addPlan <product> <quantity_kg> <machine> [due_date]",
		Short: "Add a production plan line",
		Args:  cobra.RangeArgs(3, 4),
		RunE: func(cmd *cobra.Command, args []string) error {
			quantity, err := parseQuantity(args[1])
			if err != nil {
				return fmt.Errorf("quantity_kg must be a number: %w", err)
			}

			var due *time.Time
			if len(args) > 3 {
				d, err := model.ParseDate(args[3])
				if err != nil {
					return err
				}
				due = &d
			}

			item, err := model.NewPlanItem(args[0], quantity, args[2], due)
			if err != nil {
				return err
			}
			if err := app.State.AddPlanItem(item); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✓ Plan line added: %s, %.2f kg on %s\n", item.Product, item.Quantity, item.Machine)
			return nil
		},
	}
}

// ShowPlanCmd creates the showPlan command
func ShowPlanCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "showPlan",
		Short: "Show the current production plan",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			plan := app.State.Plan()
			if len(plan) == 0 {
				fmt.Fprintln(out, "The plan is empty.")
				return nil
			}

			fmt.Fprintf(out, "\n%-4s %-24s %12s  %-16s %s\n", "#", "Product", "Quantity kg", "Machine", "Due")
			for i, item := range plan {
				due := "-"
				if item.DueDate != nil {
					due = item.DueDate.Format(model.DateLayout)
				}
				fmt.Fprintf(out, "%-4d %-24s %12.2f  %-16s %s\n", i+1, item.Product, item.Quantity, item.Machine, due)
			}
			fmt.Fprintln(out)

			return nil
		},
	}
}

// ClearPlanCmd creates the clearPlan command
func ClearPlanCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clearPlan",
		Short: "Remove every plan line",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app.State.ClearPlan()
			fmt.Fprintln(cmd.OutOrStdout(), "✓ Plan cleared")
			return nil
		},
	}
}

// ImportPlanCmd creates the importPlan command
func ImportPlanCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "importPlan <file>",
		Short: "Import plan lines from a .csv or .xlsx file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := services.ImportPlan(app.Ctx, app.Reader, app.State, app.Logger, args[0])
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✓ Imported %d plan lines from %s\n", len(items), args[0])
			return nil
		},
	}
}
