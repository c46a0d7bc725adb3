package normalize

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestToNumber(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  float64
	}{
		{"native float", 1234.56, 1234.56},
		{"native int", 42, 42},
		{"nil", nil, 0},
		{"brazilian thousands and decimal", "1.234,56", 1234.56},
		{"comma decimal only", "2666,66", 2666.66},
		{"plain decimal", "1234.56", 1234.56},
		{"currency prefix", "R$ 1.500,00", 1500},
		{"negative adjustment", "-120,50", -120.50},
		{"garbage", "abc", 0},
		{"empty string", "", 0},
		{"whitespace", "   ", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, ToNumber(tt.input), 1e-9)
		})
	}
}

func TestToCurrencyRoundsHalfUp(t *testing.T) {
	assert.InDelta(t, 10.13, ToCurrency("10,125"), 1e-9)
	assert.InDelta(t, 10.12, ToCurrency(10.124), 1e-9)
	assert.InDelta(t, 0, ToCurrency("not a number"), 1e-9)
}

func TestToISODate(t *testing.T) {
	t.Run("native time", func(t *testing.T) {
		got, ok := ToISODate(time.Date(2025, 10, 1, 15, 4, 5, 0, time.UTC))
		assert.True(t, ok)
		assert.Equal(t, "2025-10-01", got)
	})

	t.Run("spreadsheet serial", func(t *testing.T) {
		// 45931 days after 1899-12-30 is 2025-10-01.
		got, ok := ToISODate(float64(45931))
		assert.True(t, ok)
		assert.Equal(t, "2025-10-01", got)
	})

	t.Run("iso string", func(t *testing.T) {
		got, ok := ToISODate("2025-10-01")
		assert.True(t, ok)
		assert.Equal(t, "2025-10-01", got)
	})

	t.Run("brazilian slash date", func(t *testing.T) {
		got, ok := ToISODate("01/10/2025")
		assert.True(t, ok)
		assert.Equal(t, "2025-10-01", got)
	})

	t.Run("brazilian dash date with short year", func(t *testing.T) {
		got, ok := ToISODate("1-2-25")
		assert.True(t, ok)
		assert.Equal(t, "2025-02-01", got)
	})

	t.Run("no pattern", func(t *testing.T) {
		_, ok := ToISODate("yesterday")
		assert.False(t, ok)
	})

	t.Run("nil", func(t *testing.T) {
		_, ok := ToISODate(nil)
		assert.False(t, ok)
	})
}

func TestCleanText(t *testing.T) {
	assert.Equal(t, "Consignado", CleanText("  Consignado  "))
	assert.Equal(t, "", CleanText("   "))
	assert.Equal(t, "", CleanText(nil))
	assert.Equal(t, "42", CleanText(42))
}
