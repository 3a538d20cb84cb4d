package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"finora/pkg/contracts/domain"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name  string
		value domain.Value
		want  float64
	}{
		{"number passes through", domain.Number(42.5), 42.5},
		{"plain text", domain.Text("100"), 100},
		{"thousands separators and suffix", domain.Text("1,234.5x"), 1234.5},
		{"currency prefix", domain.Text("AED 2,000.75"), 2000.75},
		{"negative", domain.Text("-10.25"), -10.25},
		{"longest prefix", domain.Text("12.3.4"), 12.3},
		{"leading dot", domain.Text(".5"), 0.5},
		{"letters only", domain.Text("abc"), 0},
		{"lone minus", domain.Text("-"), 0},
		{"empty", domain.Value{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, ParseAmount(tt.value), 1e-9)
		})
	}
}

func TestParseAmountOK(t *testing.T) {
	_, ok := ParseAmountOK(domain.Text("n/a"))
	assert.False(t, ok)

	f, ok := ParseAmountOK(domain.Text("0"))
	assert.True(t, ok)
	assert.Zero(t, f)
}

func TestFormatCurrency(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0.00"},
		{-5, "-5.00"},
		{150, "150.00"},
		{1234.5, "1,234.50"},
		{1234567.891, "1,234,567.89"},
		{-98765.4321, "-98,765.43"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatCurrency(tt.in))
		})
	}
}

func TestSumIsExact(t *testing.T) {
	var s Sum
	for i := 0; i < 10; i++ {
		s.AddFloat(0.1)
	}
	assert.Equal(t, 1.0, s.Float64())

	s.Add(domain.Text("abc"))
	s.Add(domain.Text("-0.5"))
	assert.Equal(t, 0.5, s.Float64())
}
