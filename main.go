// Package main is the entry point for the tiauth CLI application.
// It manages the account session of this installation: login, logout and status.
package main

import (
	"tiauth/cli/cmd"
)

func main() {
	cmd.Execute()
}
