package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kenger42-gif/uretim-planlayici/cmd/cli/commands"
	"github.com/kenger42-gif/uretim-planlayici/internal/config"
	"github.com/kenger42-gif/uretim-planlayici/pkg/core/session"
	"github.com/kenger42-gif/uretim-planlayici/pkg/tabular"
	"github.com/kenger42-gif/uretim-planlayici/pkg/utils/logging"
)

var (
	env     string
	verbose bool
	app     = &commands.AppContext{}
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "cli",
		Short: "Üretim planlayıcı - Production shift planner",
		Long: `A CLI tool for turning a weekly production plan into shift slots,
rotating each machine's personnel through them, and summarising hours, overtime and FTE.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app.Logger != nil {
				app.Logger.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&env, "env", "e", "", "Environment (selects planner_config.<env>.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output to the console")

	rootCmd.AddCommand(commands.AddMachineCmd(app))
	rootCmd.AddCommand(commands.RemoveMachineCmd(app))
	rootCmd.AddCommand(commands.ListMachinesCmd(app))
	rootCmd.AddCommand(commands.ImportMachinesCmd(app))
	rootCmd.AddCommand(commands.AddPersonCmd(app))
	rootCmd.AddCommand(commands.AddPlanCmd(app))
	rootCmd.AddCommand(commands.ShowPlanCmd(app))
	rootCmd.AddCommand(commands.ClearPlanCmd(app))
	rootCmd.AddCommand(commands.ImportPlanCmd(app))
	rootCmd.AddCommand(commands.PlanCmd(app))
	rootCmd.AddCommand(commands.ResetRotationCmd(app))
	rootCmd.AddCommand(commands.InteractiveCmd(app))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// initApp sets up logger, config and an empty planning session
func initApp() error {
	var err error
	app.Ctx = context.Background()

	// Initialize logger
	app.Logger, err = logging.New(logging.Options{Env: env, Verbose: verbose})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	app.Logger.Debug("Starting application", zap.String("environment", env))

	// Load configuration
	app.Cfg, err = config.LoadWithEnv(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	app.Logger.Debug("Configuration loaded successfully",
		zap.Int("shifts", len(app.Cfg.Shifts)),
		zap.Float64("shift_duration_hours", app.Cfg.ShiftDurationHours),
		zap.String("weekly_cap", app.Cfg.WeeklyCap().String()))

	app.State = session.New()
	app.Reader = tabular.FileReader{}

	return nil
}
