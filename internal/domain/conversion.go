package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type Conversion struct {
	AmountUSD       decimal.Decimal
	ConvertedAmount decimal.Decimal
	Currency        string
	ExchangeRate    decimal.Decimal
	RecordDate      time.Time
}

// Message renders the conversion the way it is shown to users.
func (c Conversion) Message() string {
	return fmt.Sprintf("$%s USD is worth %s %s", c.AmountUSD.String(), c.ConvertedAmount.String(), c.Currency)
}
