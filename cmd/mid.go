// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"errors"
	"fmt"
	"os"

	"tiauth/cli/internal/mid"

	"github.com/spf13/cobra"
)

var midReset bool

// midCmd prints the machine identifier sent with login requests.
var midCmd = &cobra.Command{
	Use:   "mid",
	Short: "Print the machine identifier",
	Long: `The mid command prints the identifier that tags login requests from this
installation. It is derived once from a network adapter's MAC address (or a random
UUID when none is available) and saved in mid.json.

With --reset, mid.json is deleted and a new identifier is derived.`,
	Args: cobra.NoArgs,

	RunE: func(cmd *cobra.Command, args []string) error {
		if midReset {
			if err := os.Remove(mid.Path(app.home)); err != nil && !errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("remove machine id: %w", err)
			}
			app.manager.ResetMachineIDCache()
		}

		id := app.manager.ResolveMachineID(app.home, "")
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), map[string]string{"mid": id})
		}
		fmt.Fprintln(cmd.OutOrStdout(), id)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(midCmd)
	midCmd.Flags().BoolVar(&midReset, "reset", false, "Discard the saved machine id and derive a new one")
}
