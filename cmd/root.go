// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package cmd provides the command-line interface for tiauth.
// It implements the login, logout, status, mid and config subcommands using the
// Cobra CLI framework. Settings are resolved from flags, then environment
// variables, then config.yaml in the configuration directory.
package cmd

import (
	"errors"
	"fmt"
	"os"

	"tiauth/cli/internal/auth"
	"tiauth/cli/internal/backend"
	"tiauth/cli/internal/config"
	"tiauth/cli/internal/homedir"
	"tiauth/cli/internal/logging"
	"tiauth/cli/internal/mid"

	"github.com/spf13/cobra"
)

var (
	homeFlag      string
	loginURLFlag  string
	logoutURLFlag string
	proxyFlag     string
	verbose       bool
	jsonOutput    bool
)

// env is the per-invocation state shared by subcommands.
type env struct {
	home    string
	cfg     config.Config
	manager *auth.Manager
}

var app *env

// manager is shared by every invocation in the process so status and machine id caches
// survive across commands run in one process (tests, embedding).
var manager = auth.NewManager(backend.NewHTTP("tiauth/"+Version), mid.NewResolver(nil))

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:           "tiauth",
	Short:         "Manage the account session for this installation",
	Long:          `tiauth logs in to the account service, logs out, and reports the current session for this machine.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		home, err := homedir.Resolve(homeFlag)
		if err != nil {
			return fmt.Errorf("resolve configuration directory: %w", err)
		}
		cfg, err := config.Load(home)
		if err != nil {
			return err
		}
		cfg = cfg.WithEnv()
		if loginURLFlag != "" {
			cfg.LoginURL = loginURLFlag
		}
		if logoutURLFlag != "" {
			cfg.LogoutURL = logoutURLFlag
		}
		if proxyFlag != "" {
			cfg.Proxy = proxyFlag
		}

		level := cfg.LogLevel
		if verbose {
			level = logging.LevelDebug
		}
		if err := logging.ConfigureWriter(cmd.ErrOrStderr(), level); err != nil {
			return err
		}

		app = &env{home: home, cfg: cfg, manager: manager}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// Execute runs the CLI application.
// It executes the root command and handles any errors that occur during execution.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		var reported errReported
		if !errors.As(err, &reported) {
			fmt.Fprintln(os.Stderr, logging.PresentError("tiauth", err))
		}
		os.Exit(exitCode(err))
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&homeFlag, "home", "", "Configuration directory (default ~/.titanium, or $"+homedir.EnvHome+")")
	pf.StringVar(&loginURLFlag, "login-url", "", "Override the login endpoint")
	pf.StringVar(&logoutURLFlag, "logout-url", "", "Override the logout endpoint")
	pf.StringVar(&proxyFlag, "proxy", "", "Proxy URL for requests to the account service")
	pf.BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	pf.BoolVar(&jsonOutput, "json", false, "Print results as JSON")
}
