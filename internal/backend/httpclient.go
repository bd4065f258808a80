// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultTimeout bounds a single request issued by HTTP.
const DefaultTimeout = 30 * time.Second

// HTTP implements Transport over net/http.
// Each call builds its own client so the proxy can vary per call.
type HTTP struct {
	// userAgent is sent on every request
	userAgent string
	// timeout applies to the whole exchange including reading the body
	timeout time.Duration
}

// NewHTTP creates an HTTP transport identifying itself as userAgent.
func NewHTTP(userAgent string) *HTTP {
	return &HTTP{userAgent: userAgent, timeout: DefaultTimeout}
}

// Post sends form to rawURL.
func (h *HTTP) Post(ctx context.Context, rawURL string, form url.Values, header http.Header, proxy string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return h.do(req, header, proxy)
}

// Get fetches rawURL.
func (h *HTTP) Get(ctx context.Context, rawURL string, header http.Header, proxy string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	return h.do(req, header, proxy)
}

func (h *HTTP) do(req *http.Request, header http.Header, proxy string) (*Response, error) {
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if h.userAgent != "" && req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", h.userAgent)
	}

	client, err := h.client(proxy)
	if err != nil {
		return nil, err
	}

	slog.Debug("backend: request", "method", req.Method, "url", req.URL.Redacted(), "proxy", proxy != "")
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	slog.Debug("backend: response", "status", resp.StatusCode, "bytes", len(body))
	return &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: body}, nil
}

// client returns a client without a cookie jar that does not follow redirects, so
// Set-Cookie headers on the first response are never lost.
func (h *HTTP) client(proxy string) (*http.Client, error) {
	tr := http.DefaultTransport.(*http.Transport).Clone()
	if proxy != "" {
		u, err := url.Parse(proxy)
		if err != nil || u.Host == "" {
			return nil, fmt.Errorf("invalid proxy %q", proxy)
		}
		tr.Proxy = http.ProxyURL(u)
	}
	return &http.Client{
		Transport: tr,
		Timeout:   h.timeout,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}, nil
}
