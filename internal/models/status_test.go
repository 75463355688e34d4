package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestOrderStatusTransitions(t *testing.T) {
	tests := []struct {
		from, to OrderStatus
		ok       bool
	}{
		{StatusPending, StatusShipped, true},
		{StatusPending, StatusCancel, true},
		{StatusShipped, StatusDone, true},
		{StatusPending, StatusDone, false},
		{StatusShipped, StatusCancel, false},
		{StatusDone, StatusPending, false},
		{StatusCancel, StatusPending, false},
		{StatusPending, StatusPending, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.ok, tt.from.CanTransition(tt.to))
		})
	}

	assert.True(t, StatusDone.Terminal())
	assert.True(t, StatusCancel.Terminal())
	assert.False(t, StatusPending.Terminal())
}

func TestParseOrderStatus(t *testing.T) {
	st, err := ParseOrderStatus("shipped")
	assert.NoError(t, err)
	assert.Equal(t, StatusShipped, st)

	_, err = ParseOrderStatus("lost")
	assert.Error(t, err)
	_, err = ParseOrderStatus("")
	assert.Error(t, err)
}

func TestSumLines(t *testing.T) {
	lines := []OrderDetail{
		{Quantity: 2, Price: decimal.NewFromInt(100)},
		{Quantity: 1, Price: decimal.NewFromInt(50)},
		{Quantity: 3, Price: decimal.RequireFromString("19.99")},
	}

	assert.True(t, decimal.RequireFromString("309.97").Equal(SumLines(lines)))
	assert.True(t, decimal.Zero.Equal(SumLines(nil)))
}

func TestPaymentMethodValid(t *testing.T) {
	assert.True(t, PaymentCOD.Valid())
	assert.True(t, PaymentOnline.Valid())
	assert.False(t, PaymentMethod("cash").Valid())
}

func TestMissingProductSnapshot(t *testing.T) {
	s := MissingProduct(42)
	assert.Equal(t, uint(42), s.ProductID)
	assert.False(t, s.Available)
	assert.Equal(t, UnavailableProductName, s.Name)
	assert.Nil(t, s.ImageURL)
}
