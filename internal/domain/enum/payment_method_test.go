package enum

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePaymentMethod(t *testing.T) {
	tests := []struct {
		in   string
		want PaymentMethod
		ok   bool
	}{
		{"CASH", PaymentMethodCash, true},
		{"cash", PaymentMethodCash, true},
		{" Card ", PaymentMethodCard, true},
		{"mobile_money", PaymentMethodMobileMoney, true},
		{"MOBILE_MONEY", PaymentMethodMobileMoney, true},
		{"CHEQUE", "", false},
		{"", "", false},
		{"mpesa", "", false},
	}

	for _, tt := range tests {
		got, ok := NormalizePaymentMethod(tt.in)
		assert.Equal(t, tt.ok, ok, "input %q", tt.in)
		assert.Equal(t, tt.want, got, "input %q", tt.in)
	}
}
