package calculation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatCurrency(t *testing.T) {
	tests := []struct {
		amount float64
		symbol string
		want   string
	}{
		{1234.5, "€", "1 234,50 €"},
		{0, "€", "0,00 €"},
		{0.5, "€", "0,50 €"},
		{1234567.891, "€", "1 234 567,89 €"},
		{-42.1, "€", "-42,10 €"},
		{99.999, "lei", "100,00 lei"},
		{12, "", "12,00 €"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatCurrency(tt.amount, tt.symbol))
		})
	}
}

func TestParseCurrency(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"1 234,50 €", 1234.5},
		{"12,5", 12.5},
		{"  42 ", 42},
		{"$19.99", 19.99},
		{"-3,25€", -3.25},
		{"12abc", 12},
		{"abc", 0},
		{"", 0},
		{"€", 0},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.InDelta(t, tt.want, ParseCurrency(tt.in), 1e-9)
		})
	}
}
