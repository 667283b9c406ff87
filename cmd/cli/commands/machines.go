package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kenger42-gif/uretim-planlayici/pkg/core/model"
	"github.com/kenger42-gif/uretim-planlayici/pkg/core/services"
)

// AddMachineCmd creates the addMachine command
func AddMachineCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "addMachine <name> <capacity_kg_per_hour> <headcount_per_shift> [total_personnel]",
		Short: "Add a production machine to the session",
		Args:  cobra.RangeArgs(3, 4),
		RunE: func(cmd *cobra.Command, args []string) error {
			capacity, err := parseQuantity(args[1])
			if err != nil {
				return fmt.Errorf("capacity_kg_per_hour must be a number: %w", err)
			}

			headcount, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("headcount_per_shift must be a whole number: %w", err)
			}

			total := 0
			if len(args) > 3 {
				total, err = strconv.Atoi(args[3])
				if err != nil {
					return fmt.Errorf("total_personnel must be a whole number: %w", err)
				}
			}

			m, err := model.NewMachine(args[0], capacity, headcount, total)
			if err != nil {
				return err
			}
			if err := app.State.AddMachine(m); err != nil {
				return err
			}

			app.Logger.Debug("Machine added", zap.String("machine", m.Name))
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Machine %s added (%.2f kg/h, %d per shift)\n", m.Name, m.CapacityPerHour, m.HeadcountPerShift)
			return nil
		},
	}
}

// RemoveMachineCmd creates the removeMachine command
func RemoveMachineCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "removeMachine <name>",
		Short: "Remove a machine with its personnel, plan lines and rotation position",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.State.RemoveMachine(args[0]); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✓ Machine %s removed\n", args[0])
			return nil
		},
	}
}

// ListMachinesCmd creates the listMachines command
func ListMachinesCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "listMachines",
		Short: "List machines with their personnel pools",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			machines := app.State.Machines()
			if len(machines) == 0 {
				fmt.Fprintln(out, "No machines defined.")
				return nil
			}

			rotation := app.State.Rotation()
			fmt.Fprintf(out, "\nFound %d machines:\n\n", len(machines))
			for _, m := range machines {
				pool := app.State.Pool(m.Name)
				fmt.Fprintf(out, "- %s: %.2f kg/h, %d per shift, %d/%d personnel, next in rotation: %d\n",
					m.Name,
					m.CapacityPerHour,
					m.HeadcountPerShift,
					len(pool),
					m.TotalPersonnel,
					rotation.Position(m.Name, len(pool))+1,
				)
				if len(pool) > 0 {
					fmt.Fprintf(out, "    %s\n", strings.Join(pool, ", "))
				}
			}

			return nil
		},
	}
}

// ImportMachinesCmd creates the importMachines command
func ImportMachinesCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "importMachines <file>",
		Short: "Import machines from a .csv or .xlsx file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			machines, err := services.ImportMachines(app.Ctx, app.Reader, app.State, app.Logger, args[0])
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✓ Imported %d machines from %s\n", len(machines), args[0])
			return nil
		},
	}
}

// AddPersonCmd creates the addPerson command
func AddPersonCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "addPerson <machine> [name]",
		Short: "Add a person to a machine's pool (no name generates placeholders)",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var name string
			if len(args) > 1 {
				name = args[1]
			}

			added, err := app.State.AddPerson(args[0], name)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✓ Added to %s: %s\n", args[0], strings.Join(added, ", "))
			return nil
		},
	}
}

// parseQuantity parses a number, accepting a decimal comma
func parseQuantity(s string) (float64, error) {
	return strconv.ParseFloat(strings.Replace(strings.TrimSpace(s), ",", ".", 1), 64)
}
