package core

import (
	"errors"
	"testing"
)

func TestErrors(t *testing.T) {
	errorTests := []struct {
		name string
		err  error
		msg  string
	}{
		{"ErrInvalidQuantity", ErrInvalidQuantity, "invalid quantity"},
		{"ErrInvalidOrderType", ErrInvalidOrderType, "invalid order type"},
		{"ErrOrderExists", ErrOrderExists, "order exists"},
		{"ErrFillExceedsRemaining", ErrFillExceedsRemaining, "fill exceeds remaining quantity"},
	}

	for _, tt := range errorTests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err == nil {
				t.Errorf("Error %s is nil", tt.name)
			}

			if tt.err.Error() != tt.msg {
				t.Errorf("Expected error message %q, got %q", tt.msg, tt.err.Error())
			}

			if !errors.Is(tt.err, tt.err) {
				t.Errorf("Error %s does not match itself with errors.Is", tt.name)
			}
		})
	}
}
