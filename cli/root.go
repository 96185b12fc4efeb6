package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	clierrors "github.com/aklyachkin/usrgrp/internal/errors"
	"github.com/aklyachkin/usrgrp/internal/upgrade"
	"github.com/aklyachkin/usrgrp/tui"
)

// version is set at build time via -X github.com/aklyachkin/usrgrp/cli.version=<ver>.
var version = "0.3.0"

// global flags
var (
	flagOutput  string
	flagUpgrade bool
)

// rootCmd is the base command. Running it without a sub-command starts the
// interactive console.
var rootCmd = &cobra.Command{
	Use:     "usrgrp",
	Version: version,
	Short:   "Manage local users and groups from the terminal",
	Long: `usrgrp is a keyboard-driven console for local account management:
browse users and groups, filter and search them, and apply changes
(membership, shells, passwords, creation and deletion) with sudo
escalation prompted only when needed.

Run without arguments for the interactive console, or use the
sub-commands for one-shot scripting:
  usrgrp user list -o json
  usrgrp group members add dev alice bob`,
	SilenceUsage:  true,
	SilenceErrors: true,
	Run: func(cmd *cobra.Command, args []string) {
		if flagUpgrade {
			if err := upgrade.Run(version); err != nil {
				fmt.Fprintln(os.Stderr, "Error:", err)
				os.Exit(1)
			}
			return
		}
		if err := tui.LaunchTUI(); err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			os.Exit(1)
		}
	},
}

// Execute wires the command tree and runs it.
func Execute() {
	rootCmd.SetVersionTemplate("usrgrp {{.Version}}\n")

	// Local flags (root command only)
	rootCmd.Flags().BoolVar(&flagUpgrade, "upgrade", false, "upgrade usrgrp to the latest release")

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&flagOutput, "output", "o", "table", "output format: table or json")

	rootCmd.AddCommand(userCmd())
	rootCmd.AddCommand(groupCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// handleErr maps an error through the error handler. Commands call this in
// their RunE return.
func handleErr(err error) error {
	return clierrors.Handle(err)
}
