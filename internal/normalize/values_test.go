package normalize_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"shipstream/internal/normalize"
)

func TestParseNumber(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
		ok   bool
	}{
		{"42", 42, true},
		{"1,250", 1250, true},
		{"1,250 lbs", 1250, true},
		{"$450.00", 450, true},
		{"-12.5", -12.5, true},
		{"", 0, false},
		{"n/a", 0, false},
		{"heavy", 0, false},
		{"-", 0, false},
	}
	for _, tt := range tests {
		got, ok := normalize.ParseNumber(tt.raw)
		assert.Equal(t, tt.ok, ok, "raw=%q", tt.raw)
		assert.Equal(t, tt.want, got, "raw=%q", tt.raw)
	}
}

func TestCleanString(t *testing.T) {
	assert.Equal(t, "Acme Freight", normalize.CleanString("  Acme   Freight \n"))
	assert.Equal(t, "", normalize.CleanString("   "))
}
