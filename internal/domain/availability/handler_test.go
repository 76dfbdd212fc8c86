package availability

import (
	"fmt"
	"net/http"
	"testing"
)

func TestWindowError_StatusMapping(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{ErrNotFound, http.StatusNotFound},
		{fmt.Errorf("%w: 09:00-10:00 intersects 09:30-11:00", ErrWindowOverlap), http.StatusConflict},
		{fmt.Errorf("%w: start must be before end", ErrInvalidWindow), http.StatusBadRequest},
		{fmt.Errorf("%w: connection refused", ErrStorage), http.StatusServiceUnavailable},
		{fmt.Errorf("unexpected"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if he := windowError(tt.err); he.Code != tt.code {
			t.Errorf("windowError(%v) = %d, want %d", tt.err, he.Code, tt.code)
		}
	}
}
