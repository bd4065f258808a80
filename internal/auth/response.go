// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package auth

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"tiauth/cli/internal/backend"
	apperr "tiauth/cli/internal/errors"
)

// SessionCookieName is the cookie the account service issues on login.
const SessionCookieName = "connect.sid"

// badCredentialCodes are the login failure codes for an unknown user or a wrong password.
var badCredentialCodes = map[int]bool{4: true, 5: true}

// interpretLogin turns a login response into the session cookie and the session data.
func interpretLogin(resp *backend.Response) (string, map[string]any, error) {
	body, err := decodeObject(resp.Body)
	if err != nil {
		return "", nil, apperr.Wrap(apperr.LoginServerError, fmt.Sprintf("unexpected response from login server (HTTP %d)", resp.StatusCode), err)
	}

	success, ok := body["success"].(bool)
	if !ok {
		return "", nil, apperr.New(apperr.LoginServerError, fmt.Sprintf("unexpected response from login server (HTTP %d)", resp.StatusCode))
	}

	if !success {
		if code, ok := intField(body, "code"); ok && badCredentialCodes[code] {
			return "", nil, apperr.New(apperr.BadCredentials, "invalid username or password")
		}
		return "", nil, apperr.New(apperr.LoginServerError, "login failed: "+reason(body))
	}

	if activated, ok := body["activated"].(bool); ok && !activated {
		return "", nil, apperr.New(apperr.AccountNotActive, "account has not been activated")
	}

	cookies := resp.Header.Values("Set-Cookie")
	if len(cookies) != 1 || !strings.HasPrefix(cookies[0], SessionCookieName+"=") {
		return "", nil, apperr.New(apperr.InternalServerError, "server did not return a session cookie")
	}

	data := make(map[string]any, len(body))
	for k, v := range body {
		if k == "success" {
			continue
		}
		data[k] = v
	}
	return cookies[0], data, nil
}

// interpretLogout returns nil when the server confirmed the logout.
func interpretLogout(resp *backend.Response) error {
	body, err := decodeObject(resp.Body)
	if err != nil {
		return apperr.Wrap(apperr.LogoutServerError, fmt.Sprintf("unexpected response from logout server (HTTP %d)", resp.StatusCode), err)
	}
	if success, _ := body["success"].(bool); success {
		return nil
	}
	return apperr.New(apperr.LogoutServerError, "logout failed: "+reason(body))
}

func decodeObject(b []byte) (map[string]any, error) {
	var out map[string]any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	if out == nil {
		return nil, fmt.Errorf("response body is not a JSON object")
	}
	return out, nil
}

func intField(body map[string]any, key string) (int, bool) {
	switch v := body[key].(type) {
	case float64:
		return int(v), v == float64(int(v))
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n, true
		}
	}
	return 0, false
}

// reason extracts the server-reported failure description.
func reason(body map[string]any) string {
	for _, key := range []string{"description", "message", "reason", "error"} {
		if v, ok := body[key].(string); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	if code, ok := body["code"]; ok {
		return fmt.Sprintf("server returned code %v", code)
	}
	return "no reason given"
}
