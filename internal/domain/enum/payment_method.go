package enum

import "strings"

// PaymentMethod is how a sale was settled. Stored upper case.
type PaymentMethod string

const (
	PaymentMethodCash        PaymentMethod = "CASH"
	PaymentMethodCard        PaymentMethod = "CARD"
	PaymentMethodMobileMoney PaymentMethod = "MOBILE_MONEY"
)

// NormalizePaymentMethod upper-cases the input and reports whether it names
// a supported payment method.
func NormalizePaymentMethod(s string) (PaymentMethod, bool) {
	m := PaymentMethod(strings.ToUpper(strings.TrimSpace(s)))
	switch m {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodMobileMoney:
		return m, true
	}
	return "", false
}

// PaymentMethods lists the supported payment methods
func PaymentMethods() []PaymentMethod {
	return []PaymentMethod{PaymentMethodCash, PaymentMethodCard, PaymentMethodMobileMoney}
}
