package handler

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type RefreshRatesResponse struct {
	RefreshID string `json:"refresh_id" example:"77b5d9f5-0569-47e3-aee2-f659d59fbd97"`
}

// RefreshRates godoc
// @Summary Refresh rates
// @Description Starts a background refresh from the rates API; the outcome is logged
// @Tags Rates
// @Produce json
// @Success 202 {object} RefreshRatesResponse
// @Router /rates/refresh [post]
func (h *Handler) RefreshRates(w http.ResponseWriter, r *http.Request) {
	refreshID := uuid.NewString()
	resCh := h.service.RefreshAsync(context.WithoutCancel(r.Context()), true)

	go func() {
		log := h.logger.WithFields(logrus.Fields{"handler": "RefreshRates", "refresh_id": refreshID})
		res := <-resCh
		if res.Err != nil {
			log.WithError(res.Err).Error("Rates refresh failed")
			return
		}
		log.WithField("currencies", res.Snapshot.Table.Len()).Info("Rates refreshed")
	}()

	writeJSON(w, http.StatusAccepted, RefreshRatesResponse{RefreshID: refreshID})
}
