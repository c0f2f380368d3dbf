package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"fxconvert/internal/domain"
	"fxconvert/internal/rate"

	"github.com/sirupsen/logrus"
)

type RateService interface {
	CurrenciesAsync(ctx context.Context) <-chan rate.CurrenciesResult
	Snapshot(ctx context.Context) (*domain.Snapshot, error)
	Lookup(ctx context.Context, currency string) (domain.RateEntry, error)
	Convert(ctx context.Context, currency string, amount string) (domain.Conversion, error)
	RefreshAsync(ctx context.Context, force bool) <-chan rate.RefreshResult
}

type Handler struct {
	service RateService
	logger  logrus.FieldLogger
}

func NewRateHandler(service RateService, logger logrus.FieldLogger) *Handler {
	return &Handler{service: service, logger: logger}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, statusCode int, errorMsg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(errorResponse{
		Error: errorMsg,
	})
}

func writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(body)
}

// writeServiceError maps service errors to status codes; anything unexpected
// is logged and reported as 500.
func (h *Handler) writeServiceError(w http.ResponseWriter, handlerName string, err error, fields logrus.Fields) {
	switch {
	case errors.Is(err, domain.ErrInvalidAmount):
		writeError(w, http.StatusBadRequest, rate.ErrAmountInvalid.Error())
	case errors.Is(err, domain.ErrCurrencyNotFound):
		writeError(w, http.StatusNotFound, "selected currency is not available in the exchange rates")
	case errors.Is(err, domain.ErrRatesUnavailable), errors.Is(err, domain.ErrFetchFailed):
		h.logger.WithError(err).WithFields(fields).WithField("handler", handlerName).Warn("exchange rates unavailable")
		writeError(w, http.StatusServiceUnavailable, "exchange rates are unavailable right now")
	default:
		msg := "ups, something went wrong this time"
		h.logger.WithError(err).WithFields(fields).WithField("handler", handlerName).Error(msg)
		writeError(w, http.StatusInternalServerError, msg)
	}
}
