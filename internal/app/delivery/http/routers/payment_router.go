package routers

import (
	"consultation-service/internal/app/delivery/http/controllers"

	"github.com/go-chi/chi/v5"
)

func attachPaymentRoutes(router chi.Router, paymentController *controllers.PaymentController) {
	router.Post("/preauthorize", paymentController.Preauthorize)
	router.Post("/capture", paymentController.Capture)
	router.Post("/cancel", paymentController.Cancel)
}
