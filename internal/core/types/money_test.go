package types

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"almacen/internal/core/apperror"
)

func TestParseMoneyRoundsHalfUp(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"10", "10"},
		{"10.005", "10.01"},
		{"10.004", "10"},
		{"-0.005", "-0.01"},
	}

	for _, tt := range tests {
		got, err := ParseMoney("amount", tt.in)
		require.NoError(t, err)
		assert.True(t, got.Equal(decimal.RequireFromString(tt.want)),
			"ParseMoney(%q) = %s, want %s", tt.in, got, tt.want)
	}
}

func TestParseQuantityKeepsThreeDigits(t *testing.T) {
	got, err := ParseQuantity("quantity", "7.5004")
	require.NoError(t, err)
	assert.True(t, got.Equal(decimal.RequireFromString("7.5")))

	got, err = ParseQuantity("quantity", "0.1235")
	require.NoError(t, err)
	assert.True(t, got.Equal(decimal.RequireFromString("0.124")))
}

func TestParseRejectsGarbage(t *testing.T) {
	_, err := ParseMoney("amount", "twelve")
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
	assert.Equal(t, "amount", appErr.Details["field"])

	_, err = ParseQuantity("quantity", "")
	require.Error(t, err)
}

func TestMoneyMarshalsAsString(t *testing.T) {
	// The HTTP layer serializes domain structs directly, so amounts
	// must travel as exact decimal strings, not floats.
	b, err := MustMoney("45.50").MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"45.5"`, string(b))
}
