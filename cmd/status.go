// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// statusCmd shows the saved session without contacting the account service.
var statusCmd = &cobra.Command{
	Use:     "status",
	Aliases: []string{"whoami"},
	Short:   "Show the current session",
	Long: `The status command reports whether this machine is logged in, and for whom, from
the saved session. It does not contact the account service. A missing or damaged
session file is reset to logged out.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		snap := app.manager.Status(app.home)

		if jsonOutput {
			return printJSON(out, snap)
		}
		if !snap.LoggedIn {
			pterm.Info.WithWriter(out).Println("You're not logged in. Run 'tiauth login' to get started.")
			return nil
		}

		data := pterm.TableData{
			{"Field", "Value"},
			{"Logged in", "yes"},
			{"Email", snap.Email},
			{"UID", snap.UID},
			{"GUID", snap.GUID},
		}
		return pterm.DefaultTable.WithHasHeader().WithWriter(out).WithData(data).Render()
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
