package order

import (
	"fmt"

	"fulfillment/internal/pkg/errs"
)

// PaymentMethod selects the branch of the lifecycle an order follows.
type PaymentMethod string

const (
	Online PaymentMethod = "online"
	COD    PaymentMethod = "cod"
)

// ParsePaymentMethod accepts "online" or "cod".
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	m := PaymentMethod(s)
	if err := m.Validate(); err != nil {
		return "", err
	}
	return m, nil
}

func (m PaymentMethod) Validate() error {
	if m != Online && m != COD {
		return errs.NewValueIsInvalidErrorWithCause("payment_method", fmt.Errorf("%q is not online or cod", string(m)))
	}
	return nil
}

func (m PaymentMethod) String() string {
	return string(m)
}
