package validation

import (
	"strings"
	"testing"
)

func TestValidateOutputFormat(t *testing.T) {
	tests := []struct {
		format string
		valid  bool
	}{
		{format: "pretty", valid: true},
		{format: "csv", valid: true},
		{format: "json", valid: true},
		{format: ""},
		{format: "JSON"},
		{format: "Csv"},
		{format: " pretty"},
		{format: "yaml"},
		{format: "table"},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			err := ValidateOutputFormat(tt.format)
			if tt.valid {
				if err != nil {
					t.Errorf("ValidateOutputFormat(%q) unexpected error = %v", tt.format, err)
				}
				return
			}
			if err == nil {
				t.Fatalf("ValidateOutputFormat(%q) expected error", tt.format)
			}
			if msg := err.Error(); !strings.HasSuffix(msg, "got "+tt.format) {
				t.Errorf("ValidateOutputFormat(%q) error %q does not name the rejected format", tt.format, msg)
			}
			for _, supported := range []string{"pretty", "csv", "json"} {
				if !strings.Contains(err.Error(), supported) {
					t.Errorf("ValidateOutputFormat(%q) error %q does not list %s", tt.format, err, supported)
				}
			}
		})
	}
}
