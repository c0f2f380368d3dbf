package rate

import (
	"errors"
	"strings"
)

var (
	ErrCurrencyRequired = errors.New("currency is required")
	ErrAmountRequired   = errors.New("amount is required")
	ErrAmountInvalid    = errors.New("please enter a valid amount")
)

// ValidateConversionRequest checks raw request input before it reaches the service.
func ValidateConversionRequest(currency, amount string) error {
	if strings.TrimSpace(currency) == "" {
		return ErrCurrencyRequired
	}
	if strings.TrimSpace(amount) == "" {
		return ErrAmountRequired
	}
	if !ValidateAmount(amount) {
		return ErrAmountInvalid
	}
	return nil
}
