// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

//go:build linux

package mid

import (
	"log/slog"

	"github.com/vishvananda/netlink"
)

// Interfaces reads links over netlink, falling back to net.Interfaces when the netlink
// socket is unavailable (restricted containers).
func (SystemInterfaces) Interfaces() (map[string]string, error) {
	links, err := netlink.LinkList()
	if err != nil {
		slog.Debug("mid: netlink link list failed, using net.Interfaces", "err", err)
		return netInterfaces()
	}
	out := make(map[string]string, len(links))
	for _, link := range links {
		attrs := link.Attrs()
		if attrs == nil {
			continue
		}
		out[attrs.Name] = attrs.HardwareAddr.String()
	}
	return out, nil
}
