// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tiauth/cli/internal/backend"
	apperr "tiauth/cli/internal/errors"
	"tiauth/cli/internal/mid"
	"tiauth/cli/internal/session"
)

const testMAC = "00:1a:2b:3c:4d:5e"

type call struct {
	method string
	url    string
	form   url.Values
	header http.Header
	proxy  string
}

// fakeTransport answers every request with resp/err and records what was sent.
type fakeTransport struct {
	resp  *backend.Response
	err   error
	calls []call
}

func (f *fakeTransport) Post(_ context.Context, rawURL string, form url.Values, header http.Header, proxy string) (*backend.Response, error) {
	f.calls = append(f.calls, call{method: http.MethodPost, url: rawURL, form: form, header: header, proxy: proxy})
	return f.resp, f.err
}

func (f *fakeTransport) Get(_ context.Context, rawURL string, header http.Header, proxy string) (*backend.Response, error) {
	f.calls = append(f.calls, call{method: http.MethodGet, url: rawURL, header: header, proxy: proxy})
	return f.resp, f.err
}

func jsonResponse(body string, cookies ...string) *backend.Response {
	h := http.Header{"Content-Type": {"application/json"}}
	for _, c := range cookies {
		h.Add("Set-Cookie", c)
	}
	return &backend.Response{StatusCode: http.StatusOK, Header: h, Body: []byte(body)}
}

func newTestManager(tr backend.Transport) *Manager {
	return NewManager(tr, mid.NewResolver(mid.StaticInterfaces{"eth0": testMAC}))
}

func readSessionFile(t *testing.T, home string) map[string]any {
	t.Helper()
	b, err := os.ReadFile(session.Path(home))
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(b, &out))
	return out
}

func writeSessionFile(t *testing.T, home, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(home, 0o700))
	require.NoError(t, os.WriteFile(session.Path(home), []byte(content), 0o600))
}

func TestLoginSuccessPersistsSession(t *testing.T) {
	home := t.TempDir()
	cookie := "connect.sid=s%3Aabc.def; Path=/; HttpOnly"
	tr := &fakeTransport{resp: jsonResponse(`{"success":true,"activated":true,"uid":"1"}`, cookie)}
	m := newTestManager(tr)

	rec, err := m.Login(context.Background(), LoginOptions{
		Username: "a@b.com",
		Password: "x",
		HomeDir:  home,
		LoginURL: "https://auth.example.com/login",
		Proxy:    "http://proxy.local:3128",
	})
	require.NoError(t, err)

	assert.True(t, rec.LoggedIn)
	assert.Equal(t, cookie, rec.Cookie)
	assert.Equal(t, map[string]any{"activated": true, "uid": "1"}, rec.Data)

	assert.Equal(t, map[string]any{
		"loggedIn": true,
		"cookie":   cookie,
		"data":     map[string]any{"activated": true, "uid": "1"},
	}, readSessionFile(t, home))

	require.Len(t, tr.calls, 1)
	c := tr.calls[0]
	assert.Equal(t, http.MethodPost, c.method)
	assert.Equal(t, "https://auth.example.com/login", c.url)
	assert.Equal(t, "http://proxy.local:3128", c.proxy)
	assert.Equal(t, "a@b.com", c.form.Get("username"))
	assert.Equal(t, "x", c.form.Get("password"))
	assert.Equal(t, mid.Derive(testMAC), c.form.Get("mid"))
	assert.FileExists(t, mid.Path(home))
}

func TestLoginUsesDefaultURL(t *testing.T) {
	tr := &fakeTransport{resp: jsonResponse(`{"success":true}`, "connect.sid=1")}
	_, err := newTestManager(tr).Login(context.Background(), LoginOptions{HomeDir: t.TempDir()})
	require.NoError(t, err)
	assert.Equal(t, DefaultLoginURL, tr.calls[0].url)
}

func TestLoginThenStatus(t *testing.T) {
	home := t.TempDir()
	tr := &fakeTransport{resp: jsonResponse(`{"success":true,"uid":"u1","guid":"g1","email":"a@b.com","org_id":7}`, "connect.sid=abc")}
	m := newTestManager(tr)

	before := m.Status(home)
	assert.False(t, before.LoggedIn)

	_, err := m.Login(context.Background(), LoginOptions{Username: "a@b.com", Password: "x", HomeDir: home})
	require.NoError(t, err)

	assert.Equal(t, session.Snapshot{
		LoggedIn: true,
		UID:      "u1",
		GUID:     "g1",
		Email:    "a@b.com",
		Cookie:   "connect.sid=abc",
	}, m.Status(home))
}

func TestLoginFailures(t *testing.T) {
	tests := []struct {
		name string
		resp *backend.Response
		err  error
		want apperr.Kind
	}{
		{name: "connect failure", err: errors.New("dial tcp: connection refused"), want: apperr.ConnectFailure},
		{name: "not activated", resp: jsonResponse(`{"success":true,"activated":false}`, "connect.sid=1"), want: apperr.AccountNotActive},
		{name: "no cookie", resp: jsonResponse(`{"success":true}`), want: apperr.InternalServerError},
		{name: "two cookies", resp: jsonResponse(`{"success":true}`, "connect.sid=1", "other=2"), want: apperr.InternalServerError},
		{name: "wrong cookie", resp: jsonResponse(`{"success":true}`, "sid=1"), want: apperr.InternalServerError},
		{name: "bad credentials code 4", resp: jsonResponse(`{"success":false,"code":4}`), want: apperr.BadCredentials},
		{name: "bad credentials code 5", resp: jsonResponse(`{"success":false,"code":5}`), want: apperr.BadCredentials},
		{name: "bad credentials string code", resp: jsonResponse(`{"success":false,"code":" 5 "}`), want: apperr.BadCredentials},
		{name: "code with trailing text", resp: jsonResponse(`{"success":false,"code":"4abc"}`), want: apperr.LoginServerError},
		{name: "code followed by words", resp: jsonResponse(`{"success":false,"code":"5 locked"}`), want: apperr.LoginServerError},
		{name: "other failure code", resp: jsonResponse(`{"success":false,"code":9,"description":"locked"}`), want: apperr.LoginServerError},
		{name: "invalid json", resp: jsonResponse(`<html>502</html>`), want: apperr.LoginServerError},
		{name: "missing success", resp: jsonResponse(`{"uid":"1"}`), want: apperr.LoginServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			home := t.TempDir()
			writeSessionFile(t, home, `{"loggedIn":true,"cookie":"connect.sid=old","data":{"uid":"old"}}`)
			m := newTestManager(&fakeTransport{resp: tt.resp, err: tt.err})

			rec, err := m.Login(context.Background(), LoginOptions{Username: "a@b.com", Password: "x", HomeDir: home})
			require.Error(t, err)
			assert.Equal(t, tt.want, apperr.KindOf(err))
			assert.False(t, rec.LoggedIn)
			assert.Equal(t, map[string]any{"loggedIn": false}, readSessionFile(t, home))
			assert.False(t, m.Status(home).LoggedIn)
		})
	}
}

func TestLoginWithSuppliedMIDWritesNothing(t *testing.T) {
	home := filepath.Join(t.TempDir(), "never-created")
	tr := &fakeTransport{resp: jsonResponse(`{"success":true,"uid":"1"}`, "connect.sid=abc")}
	m := newTestManager(tr)

	rec, err := m.Login(context.Background(), LoginOptions{Username: "a", Password: "b", MID: "external", HomeDir: home})
	require.NoError(t, err)
	assert.True(t, rec.LoggedIn)
	assert.Equal(t, "external", tr.calls[0].form.Get("mid"))
	assert.NoDirExists(t, home)
}

func TestLoginWithSuppliedMIDFailureWritesNothing(t *testing.T) {
	home := filepath.Join(t.TempDir(), "never-created")
	m := newTestManager(&fakeTransport{resp: jsonResponse(`{"success":false,"code":4}`)})

	_, err := m.Login(context.Background(), LoginOptions{MID: "external", HomeDir: home})
	assert.True(t, apperr.IsKind(err, apperr.BadCredentials))
	assert.NoDirExists(t, home)
}

func TestLoginPathNotWritableSkipsNetwork(t *testing.T) {
	parent := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(parent, []byte("x"), 0o600))
	tr := &fakeTransport{resp: jsonResponse(`{"success":true}`, "connect.sid=1")}

	_, err := newTestManager(tr).Login(context.Background(), LoginOptions{HomeDir: filepath.Join(parent, "home")})
	assert.Equal(t, apperr.PathNotWritable, apperr.KindOf(err))
	assert.Empty(t, tr.calls)
}

func TestLogoutWithoutSessionFile(t *testing.T) {
	home := filepath.Join(t.TempDir(), ".titanium")
	tr := &fakeTransport{}

	res, err := newTestManager(tr).Logout(context.Background(), LogoutOptions{HomeDir: home})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.True(t, res.AlreadyLoggedOut)
	assert.False(t, res.LoggedIn)
	assert.Empty(t, tr.calls)
	assert.Equal(t, map[string]any{"loggedIn": false}, readSessionFile(t, home))
}

func TestLogoutIsIdempotent(t *testing.T) {
	home := t.TempDir()
	writeSessionFile(t, home, `{"loggedIn":true,"cookie":"connect.sid=abc","data":{"uid":"1"}}`)
	tr := &fakeTransport{resp: jsonResponse(`{"success":true}`)}
	m := newTestManager(tr)

	first, err := m.Logout(context.Background(), LogoutOptions{HomeDir: home, LogoutURL: "https://auth.example.com/logout"})
	require.NoError(t, err)
	assert.True(t, first.Success)
	assert.False(t, first.AlreadyLoggedOut)
	require.Len(t, tr.calls, 1)
	assert.Equal(t, http.MethodGet, tr.calls[0].method)
	assert.Equal(t, "https://auth.example.com/logout", tr.calls[0].url)
	assert.Equal(t, "connect.sid=abc", tr.calls[0].header.Get("Cookie"))

	second, err := m.Logout(context.Background(), LogoutOptions{HomeDir: home})
	require.NoError(t, err)
	assert.True(t, second.Success)
	assert.True(t, second.AlreadyLoggedOut)
	assert.Len(t, tr.calls, 1, "second logout must not reach the server")
}

func TestLogoutAlwaysResetsLocalState(t *testing.T) {
	tests := []struct {
		name string
		resp *backend.Response
		err  error
		want apperr.Kind
	}{
		{name: "connect failure", err: errors.New("dial tcp: i/o timeout"), want: apperr.ConnectFailure},
		{name: "server refused", resp: jsonResponse(`{"success":false,"description":"session unknown"}`), want: apperr.LogoutServerError},
		{name: "invalid json", resp: jsonResponse(`oops`), want: apperr.LogoutServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			home := t.TempDir()
			writeSessionFile(t, home, `{"loggedIn":true,"cookie":"connect.sid=abc","data":{"uid":"1"}}`)
			m := newTestManager(&fakeTransport{resp: tt.resp, err: tt.err})

			res, err := m.Logout(context.Background(), LogoutOptions{HomeDir: home})
			require.Error(t, err)
			assert.Equal(t, tt.want, apperr.KindOf(err))
			assert.False(t, res.LoggedIn)
			assert.False(t, res.Success)
			assert.Equal(t, map[string]any{"loggedIn": false}, readSessionFile(t, home))
		})
	}
}

func TestLogoutServerReasonIsReported(t *testing.T) {
	home := t.TempDir()
	writeSessionFile(t, home, `{"loggedIn":true,"cookie":"connect.sid=abc","data":{}}`)
	m := newTestManager(&fakeTransport{resp: jsonResponse(`{"success":false,"description":"session unknown"}`)})

	_, err := m.Logout(context.Background(), LogoutOptions{HomeDir: home})
	assert.ErrorContains(t, err, "session unknown")
}

func TestLogoutOnCorruptFile(t *testing.T) {
	home := t.TempDir()
	writeSessionFile(t, home, `{{{`)
	tr := &fakeTransport{}

	res, err := newTestManager(tr).Logout(context.Background(), LogoutOptions{HomeDir: home})
	require.NoError(t, err)
	assert.True(t, res.AlreadyLoggedOut)
	assert.Equal(t, apperr.CorruptSessionFile, apperr.KindOf(res.Err))
	assert.Empty(t, tr.calls)
}

func TestStatusRecoversFromCorruptFile(t *testing.T) {
	home := t.TempDir()
	writeSessionFile(t, home, `not json at all`)

	snap := newTestManager(&fakeTransport{}).Status(home)
	assert.False(t, snap.LoggedIn)
	assert.Equal(t, map[string]any{"loggedIn": false}, readSessionFile(t, home))
}

func TestStatusIsClearedByLogout(t *testing.T) {
	home := t.TempDir()
	writeSessionFile(t, home, `{"loggedIn":true,"cookie":"connect.sid=abc","data":{"uid":"1"}}`)
	m := newTestManager(&fakeTransport{resp: jsonResponse(`{"success":true}`)})

	assert.True(t, m.Status(home).LoggedIn)
	_, err := m.Logout(context.Background(), LogoutOptions{HomeDir: home})
	require.NoError(t, err)
	assert.False(t, m.Status(home).LoggedIn)
}

func TestResolveMachineID(t *testing.T) {
	home := t.TempDir()
	m := newTestManager(&fakeTransport{})

	first := m.ResolveMachineID(home, "")
	assert.Equal(t, mid.Derive(testMAC), first)
	assert.Equal(t, "given", m.ResolveMachineID(home, "given"))

	m.ResetMachineIDCache()
	assert.Equal(t, first, m.ResolveMachineID(home, ""), "file on disk survives a cache reset")
}
