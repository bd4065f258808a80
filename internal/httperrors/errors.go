// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package httperrors renders connection failures against the account service
// as troubleshooting help for the terminal.
package httperrors

import (
	"errors"
	"io"
	"net"
	"net/url"
	"strings"
	"syscall"

	"github.com/pterm/pterm"
)

// Cause classifies why a request never produced a response.
type Cause int

const (
	CauseUnknown Cause = iota
	CauseTimeout
	CauseDNS
	CauseRefused
	CauseTLS
	CauseProxy
)

// Classify inspects err and returns the most specific Cause.
func Classify(err error) Cause {
	switch {
	case err == nil:
		return CauseUnknown
	case isProxyError(err):
		return CauseProxy
	case isTimeoutError(err):
		return CauseTimeout
	case isDNSError(err):
		return CauseDNS
	case isConnectionRefusedError(err):
		return CauseRefused
	case isSSLError(err):
		return CauseTLS
	default:
		return CauseUnknown
	}
}

// PrintHelp writes troubleshooting hints for err to w. host names the service that was contacted.
func PrintHelp(w io.Writer, err error, host string) {
	p := pterm.DefaultBasicText.WithWriter(w)
	switch Classify(err) {
	case CauseTimeout:
		p.Printfln("⏱️  Timed out talking to %s", host)
		p.Println("  • Check your internet connection")
		p.Println("  • The service may be under heavy load; try again shortly")
	case CauseDNS:
		p.Printfln("🌐 Cannot resolve %s", host)
		p.Println("  • Check your internet connection and DNS settings")
	case CauseRefused:
		p.Printfln("🚫 Connection to %s was refused", host)
		p.Println("  • The service may be down, or a firewall is blocking it")
	case CauseTLS:
		p.Printfln("🔒 Secure connection to %s failed", host)
		p.Println("  • Check your system clock")
		p.Println("  • A proxy may be intercepting HTTPS traffic")
	case CauseProxy:
		p.Printfln("🧭 The proxy could not reach %s", host)
		p.Println("  • Check the --proxy value or TIAUTH_PROXY")
	default:
		p.Printfln("❌ Cannot connect to %s", host)
		p.Println("  • Check your internet connection and firewall settings")
	}
}

// isTimeoutError checks if the error is a timeout error.
func isTimeoutError(err error) bool {
	errStr := strings.ToLower(err.Error())
	if strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "deadline exceeded") {
		return true
	}

	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// isDNSError checks if the error is a DNS resolution error.
func isDNSError(err error) bool {
	var dnsErr *net.DNSError
	return errors.As(err, &dnsErr)
}

// isConnectionRefusedError checks if the error is a connection refused error.
func isConnectionRefusedError(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) && errors.Is(opErr.Err, syscall.ECONNREFUSED) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "connection refused")
}

// isSSLError checks if the error is an SSL/TLS error.
func isSSLError(err error) bool {
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "tls") ||
		strings.Contains(errStr, "ssl") ||
		strings.Contains(errStr, "certificate") ||
		strings.Contains(errStr, "handshake")
}

func isProxyError(err error) bool {
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "proxyconnect") || strings.Contains(errStr, "invalid proxy")
}

// ExtractHostFromURL extracts the hostname from a URL for error messages.
func ExtractHostFromURL(urlStr string) string {
	u, err := url.Parse(urlStr)
	if err != nil || u.Host == "" {
		return "server"
	}
	return u.Host
}
