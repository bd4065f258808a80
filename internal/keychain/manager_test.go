// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package keychain

import (
	"testing"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCredentialsRoundTrip(t *testing.T) {
	m := NewManagerWithRing(keyring.NewArrayKeyring(nil))

	_, _, err := m.LoadCredentials()
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, m.SaveCredentials("a@b.com", "x"))
	user, pass, err := m.LoadCredentials()
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", user)
	assert.Equal(t, "x", pass)
}

func TestClearCredentials(t *testing.T) {
	m := NewManagerWithRing(keyring.NewArrayKeyring(nil))
	require.NoError(t, m.ClearCredentials(), "clearing nothing is fine")

	require.NoError(t, m.SaveCredentials("a@b.com", "x"))
	require.NoError(t, m.ClearCredentials())

	_, _, err := m.LoadCredentials()
	assert.ErrorIs(t, err, ErrNotFound)
}
