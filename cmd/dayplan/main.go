// dayplan prints today's calendar schedule in the terminal.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/cpuguy83/dayplan/internal/render"
)

// version is set by the linker at release time.
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		verbose    bool
		configPath string
	)

	root := &cobra.Command{
		Use:   "dayplan",
		Short: "Show today's calendar schedule",
		Long: `dayplan fetches today's appointments from a calendar store (Outlook,
an ICS feed, or a CalDAV server), normalizes them into a consistent local
timeline, and prints them as a schedule table.

Running dayplan with no subcommand shows the banner and today's schedule.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
			slog.SetDefault(logger)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprint(cmd.OutOrStdout(), render.Banner(version))
			fmt.Fprintln(cmd.OutOrStdout())
			return runToday(cmd, configPath, todayOptions{})
		},
	}

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config file (default: ~/.config/dayplan/config.yaml)")

	root.Version = version
	root.SetVersionTemplate(`{{printf "dayplan version %s\n" .Version}}`)

	root.AddCommand(newTodayCmd(&configPath))
	root.AddCommand(newVersionCmd())

	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the dayplan version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "dayplan version %s\n", version)
		},
	}
}
