package chatstream

import (
	"fmt"
	"strings"
)

// Validate checks universal constraints on StreamRequest.
func (r StreamRequest) Validate() error {
	if r.ChatID == "" {
		return fmt.Errorf("chat id must not be empty: %w", ErrValidation)
	}
	if strings.TrimSpace(r.Prompt) == "" {
		return fmt.Errorf("prompt must not be blank: %w", ErrValidation)
	}
	return nil
}
