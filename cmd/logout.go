// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"log/slog"

	"tiauth/cli/internal/auth"
	apperr "tiauth/cli/internal/errors"
	"tiauth/cli/internal/httperrors"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var logoutForget bool

// logoutCmd represents the logout command for clearing authentication state.
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out and clear the saved session",
	Long: `The logout command invalidates the saved session with the account service and
resets auth_session.json to logged out. The local session is cleared even when the
service cannot be reached or refuses the logout.

With --forget, credentials remembered in the OS keychain are removed as well.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		if logoutForget {
			if store, err := openCredentials(); err == nil {
				if err := store.ClearCredentials(); err != nil {
					slog.Warn("logout: cannot clear remembered credentials", "err", err)
				}
			} else {
				slog.Debug("logout: keychain unavailable", "err", err)
			}
		}

		logoutURL := app.cfg.LogoutURL
		if logoutURL == "" {
			logoutURL = auth.DefaultLogoutURL
		}

		res, err := app.manager.Logout(cmd.Context(), auth.LogoutOptions{
			HomeDir:   app.home,
			LogoutURL: logoutURL,
			Proxy:     app.cfg.Proxy,
		})
		if err != nil {
			if remoteFailure(err) && !res.LoggedIn && !jsonOutput {
				pterm.Warning.WithWriter(out).Println("Local session cleared, but the service did not confirm the logout.")
			}
			return renderError(out, "logging out", err, httperrors.ExtractHostFromURL(logoutURL))
		}

		if jsonOutput {
			return printJSON(out, res)
		}
		if res.AlreadyLoggedOut {
			pterm.Info.WithWriter(out).Println("Already logged out")
		} else {
			pterm.Success.WithWriter(out).Println("Logged out")
		}
		return nil
	},
}

// remoteFailure reports whether err came from the service after the local session was reset.
func remoteFailure(err error) bool {
	switch apperr.KindOf(err) {
	case apperr.ConnectFailure, apperr.LogoutServerError:
		return true
	}
	return false
}

func init() {
	rootCmd.AddCommand(logoutCmd)
	logoutCmd.Flags().BoolVar(&logoutForget, "forget", false, "Also remove credentials remembered in the OS keychain")
}
