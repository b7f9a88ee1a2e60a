package currency

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		amount float64
		code   string
		want   string
	}{
		{0, "EUR", "EUR 0"},
		{87, "EUR", "EUR 87"},
		{999.6, "EUR", "EUR 1.000"},
		{1234, "eur", "EUR 1.234"},
		{1234567, "EUR", "EUR 1.234.567"},
		{-4500, "EUR", "-EUR 4.500"},
		{1234, "USD", "USD 1,234"},
		{1234, "", "EUR 1.234"},
		{123456, "CHF", "CHF 123'456"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, Format(tt.amount, tt.code))
		})
	}
}
