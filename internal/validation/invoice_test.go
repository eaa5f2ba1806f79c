package validation

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateInvoiceNumber(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"INV-2024-0001", true},
		{"INV-1999-9999", true},
		{"INV-24-001", false},
		{"inv-2024-0001", false},
		{"INV-2024-00010", false},
		{"INV-2024-001", false},
		{" INV-2024-0001", false},
		{"INV-2024-0001 ", false},
		{"INV_2024_0001", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidateInvoiceNumber(tt.input))
		})
	}
}

func TestVendorPresent(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  bool
	}{
		{"name string", "Acme", true},
		{"empty string", "", false},
		{"mapping", map[string]any{"name": "Acme"}, true},
		{"empty mapping", map[string]any{}, false},
		{"list", []any{"Acme"}, true},
		{"empty list", []any{}, false},
		{"null", nil, false},
		{"number", 42.0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, VendorPresent(tt.value))
		})
	}
}

func TestPositiveAmount(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  bool
	}{
		{"positive float", 100.0, true},
		{"small positive", 0.01, true},
		{"zero", 0.0, false},
		{"negative", -5.0, false},
		{"int", 3, true},
		{"int64", int64(7), true},
		{"numeric string", "250.50", false},
		{"padded numeric string", " 12 ", false},
		{"exponent string", "1e2", false},
		{"non-numeric string", "abc", false},
		{"bool", true, false},
		{"null", nil, false},
		{"NaN", math.NaN(), false},
		{"infinity", math.Inf(1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PositiveAmount(tt.value))
		})
	}
}
