// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"errors"
	"fmt"
	"log/slog"

	"tiauth/cli/internal/auth"
	"tiauth/cli/internal/httperrors"
	"tiauth/cli/internal/keychain"
	"tiauth/cli/internal/session"
	"tiauth/cli/internal/terminal"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	loginUsername string
	loginPassword string
	loginMID      string
	loginRemember bool
)

// credentialStore is the subset of the keychain used by login and logout.
type credentialStore interface {
	SaveCredentials(username, password string) error
	LoadCredentials() (string, string, error)
	ClearCredentials() error
}

// openCredentials returns the OS keychain; swapped out in tests.
var openCredentials = func() (credentialStore, error) {
	m, err := keychain.GetManager()
	if err != nil {
		return nil, err
	}
	return m, nil
}

// newPrompter returns the interactive prompter; swapped out in tests.
var newPrompter = terminal.NewPrompter

// loginCmd represents the login command.
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and save the session for this machine",
	Long: `The login command exchanges a username and password for a session cookie and
saves it in auth_session.json in the configuration directory.

Missing credentials are prompted for (the password is not echoed). With --remember,
the credentials are stored in the OS keychain and reused by later logins.

Passing --mid sends an externally managed machine identifier and writes nothing to
disk: the session is printed but not saved.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		remember := loginRemember || app.cfg.RememberCredentials

		username, password, err := resolveCredentials(remember)
		if err != nil {
			return err
		}

		loginURL := app.cfg.LoginURL
		if loginURL == "" {
			loginURL = auth.DefaultLoginURL
		}

		rec, err := app.manager.Login(cmd.Context(), auth.LoginOptions{
			Username: username,
			Password: password,
			MID:      loginMID,
			HomeDir:  app.home,
			LoginURL: loginURL,
			Proxy:    app.cfg.Proxy,
		})
		if err != nil {
			return renderError(out, "logging in", err, httperrors.ExtractHostFromURL(loginURL))
		}

		if remember {
			saveCredentials(username, password)
		}

		if jsonOutput {
			return printJSON(out, rec)
		}
		showLoginGreeting(cmd, rec)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)
	f := loginCmd.Flags()
	f.StringVarP(&loginUsername, "username", "u", "", "Account username (email)")
	f.StringVarP(&loginPassword, "password", "p", "", "Account password")
	f.StringVar(&loginMID, "mid", "", "Use this machine id and do not write any files")
	f.BoolVar(&loginRemember, "remember", false, "Remember the credentials in the OS keychain")
}

// resolveCredentials fills missing credentials from the keychain (when remembering) and then
// from interactive prompts.
func resolveCredentials(remember bool) (string, string, error) {
	username, password := loginUsername, loginPassword

	if remember && (username == "" || password == "") {
		if store, err := openCredentials(); err == nil {
			u, p, err := store.LoadCredentials()
			switch {
			case err == nil && (username == "" || username == u):
				username = u
				if password == "" {
					password = p
				}
			case err != nil && !errors.Is(err, keychain.ErrNotFound):
				slog.Debug("login: keychain lookup failed", "err", err)
			}
		} else {
			slog.Debug("login: keychain unavailable", "err", err)
		}
	}

	if username != "" && password != "" {
		return username, password, nil
	}

	p := newPrompter()
	var err error
	if username == "" {
		if username, err = p.Prompt("Username", ""); err != nil {
			return "", "", fmt.Errorf("username: %w", err)
		}
	}
	if password == "" {
		if password, err = p.Password("Password"); err != nil {
			return "", "", fmt.Errorf("password: %w", err)
		}
	}
	return username, password, nil
}

func saveCredentials(username, password string) {
	store, err := openCredentials()
	if err != nil {
		slog.Warn("login: cannot remember credentials, keychain unavailable", "err", err)
		return
	}
	if err := store.SaveCredentials(username, password); err != nil {
		slog.Warn("login: cannot remember credentials", "err", err)
	}
}

// showLoginGreeting displays a greeting with the account's email, or its uid.
func showLoginGreeting(cmd *cobra.Command, rec session.Record) {
	snap := session.Project(rec)
	who := snap.Email
	if who == "" {
		who = snap.UID
	}
	success := pterm.Success.WithWriter(cmd.OutOrStdout())
	if who == "" {
		success.Println("Logged in")
	} else {
		success.Printfln("Logged in as %s", who)
	}
	if loginMID != "" {
		pterm.Info.WithWriter(cmd.OutOrStdout()).Println("Session not saved (--mid was supplied)")
	}
}
