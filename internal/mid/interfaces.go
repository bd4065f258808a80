// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package mid

import "net"

// SystemInterfaces lists the host's network interfaces.
type SystemInterfaces struct{}

// StaticInterfaces is a fixed interface table, mostly useful in tests.
type StaticInterfaces map[string]string

// Interfaces returns a copy of the table.
func (s StaticInterfaces) Interfaces() (map[string]string, error) {
	out := make(map[string]string, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out, nil
}

// netInterfaces enumerates interfaces through the standard library.
func netInterfaces() (map[string]string, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(ifaces))
	for _, iface := range ifaces {
		out[iface.Name] = iface.HardwareAddr.String()
	}
	return out, nil
}
