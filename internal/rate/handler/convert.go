package handler

import (
	"net/http"
	"strings"
	"time"

	"fxconvert/internal/rate"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type ConvertResponse struct {
	AmountUSD       decimal.Decimal `json:"amount_usd" swaggertype:"string" example:"100"`
	ConvertedAmount decimal.Decimal `json:"converted_amount" swaggertype:"string" example:"92.5"`
	Currency        string          `json:"currency" example:"Euro"`
	ExchangeRate    decimal.Decimal `json:"exchange_rate" swaggertype:"string" example:"0.925"`
	RecordDate      string          `json:"record_date" example:"2025-03-31"`
	Message         string          `json:"message" example:"$100 USD is worth 92.5 Euro"`
}

// Convert godoc
// @Summary Convert US dollars
// @Description Converts a USD amount into the selected currency using the latest rate
// @Tags Conversion
// @Produce json
// @Param currency query string true "Currency" example(Euro)
// @Param amount query string true "Amount in USD" example(100)
// @Success 200 {object} ConvertResponse
// @Failure 400 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Failure 503 {object} errorResponse
// @Router /convert [get]
func (h *Handler) Convert(w http.ResponseWriter, r *http.Request) {
	currency := strings.TrimSpace(r.URL.Query().Get("currency"))
	amount := strings.TrimSpace(r.URL.Query().Get("amount"))

	if err := rate.ValidateConversionRequest(currency, amount); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	conv, err := h.service.Convert(r.Context(), currency, amount)
	if err != nil {
		h.writeServiceError(w, "Convert", err, logrus.Fields{"currency": currency, "amount": amount})
		return
	}

	writeJSON(w, http.StatusOK, ConvertResponse{
		AmountUSD:       conv.AmountUSD,
		ConvertedAmount: conv.ConvertedAmount,
		Currency:        conv.Currency,
		ExchangeRate:    conv.ExchangeRate,
		RecordDate:      conv.RecordDate.Format(time.DateOnly),
		Message:         conv.Message(),
	})
}
