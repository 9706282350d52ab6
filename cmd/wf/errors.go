package main

import (
	"errors"
	"fmt"

	"github.com/n8n-cli/wf/internal/apperr"
)

// renderError formats err for stderr, surfacing the hint apperr carries
// alongside the message (spec §7 "Error handling": "every user-facing error
// includes a kind, a message, and, where applicable, a hint").
func renderError(err error) string {
	var e *apperr.Error
	if errors.As(err, &e) {
		if e.Hint != "" {
			return fmt.Sprintf("error: %s\nhint: %s", e.Error(), e.Hint)
		}
		return fmt.Sprintf("error: %s", e.Error())
	}
	return fmt.Sprintf("error: %v", err)
}
