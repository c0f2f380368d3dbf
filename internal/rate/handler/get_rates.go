package handler

import (
	"net/http"
	"strings"
	"time"

	"fxconvert/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type RateResponse struct {
	Currency     string          `json:"currency" example:"Euro"`
	RecordDate   string          `json:"record_date" example:"2025-03-31"`
	ExchangeRate decimal.Decimal `json:"exchange_rate" swaggertype:"string" example:"0.925"`
}

type GetRatesResponse struct {
	SnapshotID string         `json:"snapshot_id" example:"77b5d9f5-0569-47e3-aee2-f659d59fbd97"`
	Source     string         `json:"source" example:"api"`
	FetchedAt  time.Time      `json:"fetched_at" example:"2025-01-02T15:04:05Z"`
	Skipped    int            `json:"skipped" example:"0"`
	Rates      []RateResponse `json:"rates"`
}

func toRateResponse(e domain.RateEntry) RateResponse {
	return RateResponse{
		Currency:     e.Currency,
		RecordDate:   e.RecordDate.Format(time.DateOnly),
		ExchangeRate: e.ExchangeRate,
	}
}

// GetRates godoc
// @Summary Current rate table
// @Description Latest rate per currency
// @Tags Rates
// @Produce json
// @Success 200 {object} GetRatesResponse
// @Failure 503 {object} errorResponse
// @Router /rates [get]
func (h *Handler) GetRates(w http.ResponseWriter, r *http.Request) {
	snap, err := h.service.Snapshot(r.Context())
	if err != nil {
		h.writeServiceError(w, "GetRates", err, logrus.Fields{})
		return
	}

	entries := snap.Table.Entries()
	rates := make([]RateResponse, 0, len(entries))
	for _, e := range entries {
		rates = append(rates, toRateResponse(e))
	}
	writeJSON(w, http.StatusOK, GetRatesResponse{
		SnapshotID: snap.ID.String(),
		Source:     snap.Source,
		FetchedAt:  snap.FetchedAt,
		Skipped:    snap.Table.Skipped(),
		Rates:      rates,
	})
}

// LookupRate godoc
// @Summary Rate of one currency
// @Tags Rates
// @Produce json
// @Param currency query string true "Currency" example(Euro)
// @Success 200 {object} RateResponse
// @Failure 400 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Failure 503 {object} errorResponse
// @Router /rates/lookup [get]
func (h *Handler) LookupRate(w http.ResponseWriter, r *http.Request) {
	currency := strings.TrimSpace(r.URL.Query().Get("currency"))
	if currency == "" {
		writeError(w, http.StatusBadRequest, "currency is required")
		return
	}

	entry, err := h.service.Lookup(r.Context(), currency)
	if err != nil {
		h.writeServiceError(w, "LookupRate", err, logrus.Fields{"currency": currency})
		return
	}
	writeJSON(w, http.StatusOK, toRateResponse(entry))
}
