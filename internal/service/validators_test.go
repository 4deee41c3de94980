package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateAmount(t *testing.T) {
	tests := []struct {
		name    string
		amount  string
		want    int64
		wantErr bool
	}{
		{"whole", "30", 3000, false},
		{"two decimals", "0.01", 1, false},
		{"trailing zeros", "12.500", 1250, false},
		{"zero", "0", 0, true},
		{"negative", "-5", 0, true},
		{"three decimals", "1.005", 0, true},
		{"too large", "100000000000000000", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cents, err := ValidateAmount(decimal.RequireFromString(tt.amount))
			if tt.wantErr {
				assertServiceCode(t, err, ErrCodeInvalidAmount)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, cents)
		})
	}
}

func TestValidateRecipient(t *testing.T) {
	got, err := ValidateRecipient("  bob@example.com ")
	require.NoError(t, err)
	assert.Equal(t, "bob@example.com", got)

	_, err = ValidateRecipient("   ")
	assertServiceCode(t, err, ErrCodeRecipientRequired)
}

func TestValidateLimit(t *testing.T) {
	tests := []struct {
		limit   int
		want    int
		wantErr bool
	}{
		{0, DefaultListLimit, false},
		{1, 1, false},
		{100, 100, false},
		{101, 0, true},
		{-1, 0, true},
	}

	for _, tt := range tests {
		got, err := ValidateLimit(tt.limit)
		if tt.wantErr {
			assertServiceCode(t, err, ErrCodeInvalidRequest)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}
