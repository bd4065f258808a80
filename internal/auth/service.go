// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package auth provides authentication services for the CLI.
// It logs in by exchanging credentials for a session cookie, logs out by
// invalidating that cookie with the server and locally, and reports the
// current session status. Session state is persisted through internal/session
// and login requests are tagged with the machine identifier from internal/mid.
//
// On every failure the local record is left logged out, so the local state
// never claims a session the server did not grant.
package auth

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"sync"

	"tiauth/cli/internal/backend"
	apperr "tiauth/cli/internal/errors"
	"tiauth/cli/internal/fsutil"
	"tiauth/cli/internal/httperrors"
	"tiauth/cli/internal/mid"
	"tiauth/cli/internal/session"
)

// Default endpoints of the remote account service.
const (
	DefaultLoginURL  = "https://api.appcelerator.com/p/v1/auth/login"
	DefaultLogoutURL = "https://api.appcelerator.com/p/v1/auth/logout"
)

// LoginOptions configures a single login.
type LoginOptions struct {
	Username string
	Password string
	// MID is an externally managed machine identifier. When set, it is sent as is and
	// nothing is written to disk: neither the MID file nor the session file.
	MID      string
	HomeDir  string
	LoginURL string
	Proxy    string
}

// LogoutOptions configures a single logout.
type LogoutOptions struct {
	HomeDir   string
	LogoutURL string
	Proxy     string
}

// LogoutResult is the local record after a logout, with the outcome flags.
type LogoutResult struct {
	session.Record
	Success          bool `json:"success"`
	AlreadyLoggedOut bool `json:"alreadyLoggedOut"`
}

// Manager centralizes login, logout and status against the account service and local state.
// Calls are serialized, so one Manager can be shared by a whole process.
type Manager struct {
	mu        sync.Mutex
	store     *session.Store
	mids      *mid.Resolver
	transport backend.Transport
}

// NewManager constructs a Manager. A nil resolver uses the system network interfaces.
func NewManager(transport backend.Transport, resolver *mid.Resolver) *Manager {
	if resolver == nil {
		resolver = mid.NewResolver(nil)
	}
	return &Manager{
		store:     session.NewStore(),
		mids:      resolver,
		transport: transport,
	}
}

// Login exchanges credentials for a session cookie.
// The request runs to completion even if ctx is cancelled.
func (m *Manager) Login(ctx context.Context, opts LoginOptions) (session.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	home := opts.HomeDir
	persist := opts.MID == ""
	if persist {
		if err := checkWritable(home); err != nil {
			return session.Record{}, err
		}
	}

	m.store.InvalidateCache(home)
	machineID := m.mids.Resolve(home, opts.MID)

	loginURL := opts.LoginURL
	if loginURL == "" {
		loginURL = DefaultLoginURL
	}
	form := url.Values{
		"username": {opts.Username},
		"password": {opts.Password},
		"mid":      {machineID},
	}
	header := http.Header{"Accept": {"application/json"}}

	slog.Debug("auth: login", "url", loginURL, "username", opts.Username, "persist", persist)
	resp, err := m.transport.Post(context.WithoutCancel(ctx), loginURL, form, header, opts.Proxy)
	if err != nil {
		return session.Record{}, m.failLogin(home, persist, apperr.Wrap(apperr.ConnectFailure, "unable to connect to "+httperrors.ExtractHostFromURL(loginURL), err))
	}

	cookie, data, err := interpretLogin(resp)
	if err != nil {
		return session.Record{}, m.failLogin(home, persist, err)
	}

	rec := session.Record{LoggedIn: true, Cookie: cookie, Data: data}
	if persist {
		if rec, err = m.store.WriteLoggedIn(home, cookie, data); err != nil {
			return session.Record{}, m.failLogin(home, persist, apperr.Wrap(apperr.PathNotWritable, "unable to save session to "+home, err))
		}
	}
	return rec, nil
}

// failLogin resets the local record before surfacing err.
func (m *Manager) failLogin(home string, persist bool, err error) error {
	if persist {
		if _, werr := m.store.WriteLoggedOut(home); werr != nil {
			slog.Warn("auth: could not reset session after failed login", "dir", home, "err", werr)
		}
	}
	slog.Debug("auth: login failed", "kind", apperr.KindOf(err))
	return err
}

// Logout invalidates the stored session with the server and locally. The local record is
// reset to logged out whatever the server answers; server and connection failures are
// returned alongside the reset record.
func (m *Manager) Logout(ctx context.Context, opts LogoutOptions) (LogoutResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	home := opts.HomeDir
	if err := checkWritable(home); err != nil {
		return LogoutResult{}, err
	}
	m.store.InvalidateCache(home)

	if !m.store.Exists(home) {
		rec, err := m.store.WriteLoggedOut(home)
		if err != nil {
			return LogoutResult{}, apperr.Wrap(apperr.PathNotWritable, "unable to save session to "+home, err)
		}
		return LogoutResult{Record: rec, Success: true, AlreadyLoggedOut: true}, nil
	}

	current := m.store.Read(home)
	if !current.LoggedIn {
		return LogoutResult{Record: current, Success: true, AlreadyLoggedOut: true}, nil
	}

	logoutURL := opts.LogoutURL
	if logoutURL == "" {
		logoutURL = DefaultLogoutURL
	}
	header := http.Header{
		"Accept": {"application/json"},
		"Cookie": {current.Cookie},
	}

	slog.Debug("auth: logout", "url", logoutURL)
	resp, reqErr := m.transport.Get(context.WithoutCancel(ctx), logoutURL, header, opts.Proxy)

	reset, werr := m.store.WriteLoggedOut(home)
	if werr != nil {
		slog.Warn("auth: could not reset session during logout", "dir", home, "err", werr)
	}
	result := LogoutResult{Record: reset}

	if reqErr != nil {
		return result, apperr.Wrap(apperr.ConnectFailure, "unable to connect to "+httperrors.ExtractHostFromURL(logoutURL), reqErr)
	}
	if err := interpretLogout(resp); err != nil {
		return result, err
	}
	result.Success = true
	return result, nil
}

// Status reports the current session. The snapshot is memoized until the next login or logout.
func (m *Manager) Status(homeDir string) session.Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.store.Snapshot(homeDir)
}

// ResolveMachineID returns the machine identifier for homeDir, or supplied when non-empty.
func (m *Manager) ResolveMachineID(homeDir, supplied string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mids.Resolve(homeDir, supplied)
}

// ResetMachineIDCache forgets the in-memory machine identifier.
func (m *Manager) ResetMachineIDCache() {
	m.mids.Reset()
}

func checkWritable(home string) error {
	if err := fsutil.EnsureWritableDir(home); err != nil {
		return apperr.Wrap(apperr.PathNotWritable, "unable to write to "+home, err)
	}
	p := session.Path(home)
	if fsutil.Exists(p) && !fsutil.IsWritable(p) {
		return apperr.New(apperr.PathNotWritable, "unable to write to "+p)
	}
	return nil
}
