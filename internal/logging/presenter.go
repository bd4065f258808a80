// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package logging

import (
	"errors"
	"fmt"

	apperr "tiauth/cli/internal/errors"
)

// PresentError formats err for the terminal as "action: message", masked.
// Typed errors show their message and, when present, the underlying cause,
// with the kind code in brackets so it can be quoted in bug reports.
func PresentError(action string, err error) string {
	if err == nil {
		return ""
	}
	var e *apperr.E
	if !errors.As(err, &e) {
		return fmt.Sprintf("%s: %s", action, Mask(err.Error()))
	}
	msg := e.Message
	if e.Err != nil {
		msg = fmt.Sprintf("%s (%v)", msg, e.Err)
	}
	return fmt.Sprintf("%s: %s [%s]", action, Mask(msg), e.Kind)
}
