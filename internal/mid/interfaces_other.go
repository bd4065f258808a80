// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

//go:build !linux

package mid

// Interfaces enumerates interfaces through the standard library.
func (SystemInterfaces) Interfaces() (map[string]string, error) {
	return netInterfaces()
}
