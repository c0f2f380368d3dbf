package rate

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"fxconvert/internal/domain"

	"github.com/shopspring/decimal"
)

// maxExponent bounds the decimal exponent of amounts and rates so that
// multiplication and rendering stay cheap.
const maxExponent = 400

var errOutOfRange = errors.New("number out of range")

// ValidateAmount reports whether text is a finite decimal number.
func ValidateAmount(text string) bool {
	_, err := parseDecimal(text)
	return err == nil
}

// Convert multiplies a USD amount by rate. The product is not rounded.
func Convert(amountText string, rate decimal.Decimal) (decimal.Decimal, error) {
	amount, err := parseDecimal(amountText)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", domain.ErrInvalidAmount, amountText)
	}
	if err = checkRange(rate); err != nil {
		return decimal.Zero, fmt.Errorf("%w: %w", domain.ErrInvalidRate, err)
	}
	return amount.Mul(rate), nil
}

// decimal.NewFromString already rejects NaN and Inf.
func parseDecimal(text string) (decimal.Decimal, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return decimal.Zero, fmt.Errorf("empty number")
	}
	d, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Zero, err
	}
	if err = checkRange(d); err != nil {
		return decimal.Zero, err
	}
	return d, nil
}

// checkRange accepts values whose exponent is within maxExponent and whose
// magnitude fits a float64.
func checkRange(d decimal.Decimal) error {
	if exp := d.Exponent(); exp < -maxExponent || exp > maxExponent {
		return errOutOfRange
	}
	if f, _ := d.Float64(); math.IsInf(f, 0) {
		return errOutOfRange
	}
	return nil
}
