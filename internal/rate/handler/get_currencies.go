package handler

import (
	"net/http"

	"github.com/sirupsen/logrus"
)

type GetCurrenciesResponse struct {
	Codes []string `json:"codes" example:"Euro,Dollar,Yen"`
}

// GetCurrencies godoc
// @Summary List currencies
// @Description Currencies offered by the rates API in the order they were first seen
// @Tags Currencies
// @Produce json
// @Success 200 {object} GetCurrenciesResponse
// @Failure 503 {object} errorResponse
// @Router /currencies [get]
func (h *Handler) GetCurrencies(w http.ResponseWriter, r *http.Request) {
	select {
	case <-r.Context().Done():
		h.logger.WithError(r.Context().Err()).WithField("handler", "GetCurrencies").Debug("Request ended before currencies were loaded")
	case res := <-h.service.CurrenciesAsync(r.Context()):
		if res.Err != nil {
			h.writeServiceError(w, "GetCurrencies", res.Err, logrus.Fields{})
			return
		}
		writeJSON(w, http.StatusOK, GetCurrenciesResponse{Codes: res.Codes})
	}
}
