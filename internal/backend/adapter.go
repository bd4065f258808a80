// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package backend provides the transport used to talk to the remote account service.
// It defines the contract the auth manager depends on and an HTTP implementation.
package backend

import (
	"context"
	"net/http"
	"net/url"
)

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Transport performs exactly one request per call: no retries, no cookie jar.
// A non-nil error means the service could not be reached or the response could not be read.
// Implementations may be replaced by fakes in tests.
type Transport interface {
	// Post sends form as application/x-www-form-urlencoded.
	Post(ctx context.Context, rawURL string, form url.Values, header http.Header, proxy string) (*Response, error)
	Get(ctx context.Context, rawURL string, header http.Header, proxy string) (*Response, error)
}
