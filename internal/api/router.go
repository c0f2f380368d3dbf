package api

import (
	_ "fxconvert/docs"
	"fxconvert/internal/rate/handler"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	swagger "github.com/swaggo/http-swagger"
)

func NewRouter(rateHandler *handler.Handler) *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Heartbeat("/healthz"))

	// Swagger UI
	router.Get("/swagger/*", swagger.WrapHandler)

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/currencies", rateHandler.GetCurrencies)
		r.Get("/rates", rateHandler.GetRates)
		r.Get("/rates/lookup", rateHandler.LookupRate)
		r.Post("/rates/refresh", rateHandler.RefreshRates)
		r.Get("/convert", rateHandler.Convert)
	})
	return router
}
