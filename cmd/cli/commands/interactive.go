package commands

import (
	"bufio"
	"fmt"
	"io"
	"slices"
	"strings"
	"unicode"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/kenger42-gif/uretim-planlayici/pkg/core/session"
)

// InteractiveCmd creates the interactive command
func InteractiveCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "interactive",
		Short: "Start an interactive planning session",
		Long: `Start an interactive session where machines, personnel and plan lines stay in memory
between commands, and every plan run continues the rotation of the previous one.
The session will keep running until you type 'exit' or 'quit'.

Type 'help' to see available commands.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "\n🚀 Starting interactive session...")
			fmt.Fprintln(out, "Type 'help' for available commands, 'exit' or 'quit' to leave")

			// Get all sibling commands (excluding interactive itself)
			rootCmd := cmd.Parent()
			commands := make(map[string]*cobra.Command)
			for _, subCmd := range rootCmd.Commands() {
				if subCmd.Name() != "interactive" && subCmd.Name() != "completion" && subCmd.Name() != "help" {
					commands[subCmd.Name()] = subCmd
				}
			}

			fmt.Fprintln(out, sessionSummary(app.State))

			return runSession(cmd.InOrStdin(), out, commands, app.State)
		},
	}

	return cmd
}

// runSession reads command lines until exit or end of input
func runSession(in io.Reader, out io.Writer, commands map[string]*cobra.Command, state *session.SchedulerState) error {
	scanner := bufio.NewScanner(in)

	for {
		fmt.Fprint(out, "> ")

		if !scanner.Scan() {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		// Parse command (respecting quotes)
		parts, err := parseCommandLine(line)
		if err != nil {
			fmt.Fprintf(out, "❌ Error parsing command: %v\n\n", err)
			continue
		}
		if len(parts) == 0 {
			continue
		}
		cmdName := parts[0]
		cmdArgs := parts[1:]

		if cmdName == "exit" || cmdName == "quit" {
			fmt.Fprintln(out, "👋 Goodbye!")
			return nil
		}

		if cmdName == "help" {
			printInteractiveHelp(out, commands)
			fmt.Fprintf(out, "\n%s\n\n", sessionSummary(state))
			continue
		}

		targetCmd, exists := commands[cmdName]
		if !exists {
			fmt.Fprintf(out, "❌ Unknown command: %s (type 'help' for available commands)\n\n", cmdName)
			continue
		}

		// Reset command flags and args
		targetCmd.Flags().VisitAll(func(flag *pflag.Flag) {
			flag.Changed = false
			flag.Value.Set(flag.DefValue)
		})

		// Execute the command's RunE directly, bypassing the full Execute() flow
		// This avoids re-running PersistentPreRunE which would reset the session
		if err := targetCmd.ParseFlags(cmdArgs); err != nil {
			fmt.Fprintf(out, "❌ Error parsing flags: %v\n\n", err)
			continue
		}

		cmdArgs = targetCmd.Flags().Args()

		if targetCmd.Args != nil {
			if err := targetCmd.Args(targetCmd, cmdArgs); err != nil {
				fmt.Fprintf(out, "❌ Error: %v\n\n", err)
				continue
			}
		}

		if targetCmd.RunE != nil {
			if err := targetCmd.RunE(targetCmd, cmdArgs); err != nil {
				fmt.Fprintf(out, "❌ Error: %v\n\n", err)
			}
		} else if targetCmd.Run != nil {
			targetCmd.Run(targetCmd, cmdArgs)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading input: %w", err)
	}

	return nil
}

// sessionSummary describes what the session currently holds
func sessionSummary(state *session.SchedulerState) string {
	personnel := 0
	for _, size := range state.PoolSizes() {
		personnel += size
	}
	return fmt.Sprintf("📋 Session: %d machines, %d personnel, %d plan lines",
		len(state.Machines()), personnel, len(state.Plan()))
}

func printInteractiveHelp(out io.Writer, commands map[string]*cobra.Command) {
	fmt.Fprintln(out, "\nAvailable commands:")

	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		cmd := commands[name]
		fmt.Fprintf(out, "  %-70s %s\n", cmd.Use, cmd.Short)
	}

	fmt.Fprintf(out, "\n  %-70s %s\n", "help", "Show this help message")
	fmt.Fprintf(out, "  %-70s %s\n", "exit, quit", "Exit the interactive session")
}

// parseCommandLine splits a command line into arguments, respecting quoted strings
// Supports both single and double quotes
func parseCommandLine(line string) ([]string, error) {
	var args []string
	var current strings.Builder
	var inQuote rune // 0 if not in quote, '"' or '\'' if in quote
	quoted := false  // an empty quoted argument still counts

	for _, r := range line {
		switch {
		case inQuote != 0:
			if r == inQuote {
				inQuote = 0
			} else {
				current.WriteRune(r)
			}
		case r == '"' || r == '\'':
			inQuote = r
			quoted = true
		case unicode.IsSpace(r):
			// Whitespace outside quotes - end current argument
			if current.Len() > 0 || quoted {
				args = append(args, current.String())
				current.Reset()
				quoted = false
			}
		default:
			current.WriteRune(r)
		}
	}

	if inQuote != 0 {
		return nil, fmt.Errorf("unclosed quote: %c", inQuote)
	}

	if current.Len() > 0 || quoted {
		args = append(args, current.String())
	}

	return args, nil
}
