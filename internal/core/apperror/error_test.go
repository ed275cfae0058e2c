package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFactoryStatusAndCode(t *testing.T) {
	tests := []struct {
		name   string
		err    *AppError
		code   string
		status int
	}{
		{"validation", NewValidation("bad input"), CodeValidation, http.StatusBadRequest},
		{"not found", NewNotFound("product", "x"), CodeNotFound, http.StatusNotFound},
		{"conflict", NewConflict("busy"), CodeConflict, http.StatusConflict},
		{"duplicate", NewDuplicate("closing", "closing_date", "2026-08-28"), CodeDuplicate, http.StatusConflict},
		{"unauthorized", NewUnauthorized("no token"), CodeUnauthorized, http.StatusUnauthorized},
		{"forbidden", NewForbidden("no permission"), CodeForbidden, http.StatusForbidden},
		{"internal", NewInternal(errors.New("boom")), CodeInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.status, tt.err.HTTPStatus)
		})
	}
}

func TestInsufficientStockDetails(t *testing.T) {
	err := NewInsufficientStock("p1", "Rice", decimal.NewFromInt(5), decimal.NewFromInt(2))

	assert.Equal(t, CodeInsufficientStock, err.Code)
	assert.Equal(t, http.StatusUnprocessableEntity, err.HTTPStatus)
	assert.Equal(t, "5", err.Details["requested"])
	assert.Equal(t, "2", err.Details["available"])
	assert.Contains(t, err.Message, "Rice")
}

func TestOverpaymentMessageCarriesBothFigures(t *testing.T) {
	err := NewOverpayment(decimal.RequireFromString("60"), decimal.RequireFromString("45.50"))

	assert.Equal(t, CodeOverpayment, err.Code)
	assert.Equal(t, http.StatusUnprocessableEntity, err.HTTPStatus)
	assert.Contains(t, err.Message, "60.00")
	assert.Contains(t, err.Message, "45.50")
}

func TestAsAppErrorThroughWrapping(t *testing.T) {
	orig := NewNotFound("customer", "c1")
	wrapped := fmt.Errorf("load customer: %w", orig)

	appErr, ok := AsAppError(wrapped)
	require.True(t, ok)
	assert.Equal(t, CodeNotFound, appErr.Code)

	_, ok = AsAppError(errors.New("plain"))
	assert.False(t, ok)
}

func TestWithDetailAndCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewValidation("bad").WithDetail("field", "amount").WithCause(cause)

	assert.Equal(t, "amount", err.Details["field"])
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection reset")
}
