// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"encoding/json"
	"errors"
	"io"

	apperr "tiauth/cli/internal/errors"
	"tiauth/cli/internal/httperrors"
	"tiauth/cli/internal/logging"

	"github.com/pterm/pterm"
)

// errReported marks an error whose message has already been printed.
type errReported struct{ err error }

func (e errReported) Error() string { return e.err.Error() }
func (e errReported) Unwrap() error { return e.err }

// exitCode maps error kinds to process exit codes so scripts can branch on them.
func exitCode(err error) int {
	switch apperr.KindOf(err) {
	case apperr.BadCredentials:
		return 3
	case apperr.AccountNotActive:
		return 4
	case apperr.ConnectFailure:
		return 5
	case apperr.PathNotWritable:
		return 6
	case "":
		return 1
	default:
		return 2
	}
}

// printJSON writes v as indented JSON.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// renderError prints a friendly explanation of err for action ("logging in", "logging out")
// and returns err marked as reported.
func renderError(w io.Writer, action string, err error, host string) error {
	if err == nil {
		return nil
	}
	if jsonOutput {
		_ = printJSON(w, map[string]string{
			"error": logging.Mask(err.Error()),
			"code":  string(apperr.KindOf(err)),
		})
		return errReported{err}
	}

	printer := pterm.Error.WithWriter(w)
	var e *apperr.E
	if !errors.As(err, &e) {
		printer.Println(logging.PresentError(action, err))
		return errReported{err}
	}

	switch e.Kind {
	case apperr.BadCredentials:
		printer.Println("Invalid username or password.")
	case apperr.AccountNotActive:
		printer.Println("This account has not been activated yet. Check your email for the activation link.")
	case apperr.PathNotWritable:
		printer.Println(logging.Mask(e.Message))
		pterm.Info.WithWriter(w).Println("Use --home to pick a writable configuration directory.")
	case apperr.ConnectFailure:
		printer.Println("Unable to reach the account service while " + action + ".")
		httperrors.PrintHelp(w, e.Err, host)
	default:
		printer.Println(logging.PresentError(action, err))
	}
	return errReported{err}
}
