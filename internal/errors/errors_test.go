// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{name: "nil", err: nil, want: ""},
		{name: "plain error", err: stderrors.New("boom"), want: ""},
		{name: "direct", err: New(BadCredentials, "invalid username or password"), want: BadCredentials},
		{name: "wrapped", err: fmt.Errorf("login: %w", Wrap(ConnectFailure, "dial", stderrors.New("refused"))), want: ConnectFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestIsMatchesOnKind(t *testing.T) {
	err := fmt.Errorf("outer: %w", New(AccountNotActive, "account has not been activated"))

	assert.True(t, stderrors.Is(err, New(AccountNotActive, "")))
	assert.False(t, stderrors.Is(err, New(BadCredentials, "")))
	assert.True(t, IsKind(err, AccountNotActive))
}

func TestErrorString(t *testing.T) {
	cause := stderrors.New("connection refused")

	assert.Equal(t, "bad_credentials: nope", New(BadCredentials, "nope").Error())
	assert.Equal(t, "connect_failure: dial: connection refused", Wrap(ConnectFailure, "dial", cause).Error())
	assert.ErrorIs(t, Wrap(ConnectFailure, "dial", cause), cause)
}
