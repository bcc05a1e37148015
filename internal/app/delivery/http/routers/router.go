package routers

import (
	"fmt"
	"time"

	"consultation-service/internal/app/config"
	"consultation-service/internal/app/delivery/http/controllers"
	"consultation-service/internal/app/delivery/http/middlewares"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
)

func SetupRoutes(
	router *chi.Mux,
	internalConfig *config.InternalConfig,
	middlewares *middlewares.Middlewares,
	appointmentController *controllers.AppointmentController,
	paymentController *controllers.PaymentController,
	quotaController *controllers.QuotaController,
	earningsController *controllers.EarningsController,
) {

	corsOptions := cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	router.Use(cors.Handler(corsOptions))

	if internalConfig.App.MaxRequests > 0 {
		router.Use(httprate.LimitByIP(internalConfig.App.MaxRequests, time.Second))
	}

	router.Use(middlewares.RequestIDMiddleware)
	router.Use(middlewares.Logging)
	router.Use(middlewares.ErrorHandler)
	router.Use(middlewares.BodyLimit)

	endpointPrefix := fmt.Sprintf("/%s", internalConfig.App.EndpointPrefix)
	versionPrefix := fmt.Sprintf("/%s", internalConfig.App.Version)

	router.Route(endpointPrefix, func(r chi.Router) {
		r.Route(versionPrefix, func(r chi.Router) {
			r.Use(middlewares.Authenticate)

			r.Route("/appointments", func(r chi.Router) {
				attachAppointmentRoutes(r, appointmentController)

				r.Route("/{id}/payment", func(r chi.Router) {
					attachPaymentRoutes(r, paymentController)
				})
			})

			r.Route("/quotas", func(r chi.Router) {
				attachQuotaRoutes(r, quotaController)
			})

			r.Route("/earnings", func(r chi.Router) {
				attachEarningsRoutes(r, earningsController)
			})
		})
	})
}
