package routers

import (
	"consultation-service/internal/app/delivery/http/controllers"

	"github.com/go-chi/chi/v5"
)

func attachEarningsRoutes(router chi.Router, earningsController *controllers.EarningsController) {
	router.Post("/appointments/{id}", earningsController.Compute)
	router.Get("/doctors/{doctorID}/report", earningsController.Report)
	router.Post("/doctors/{doctorID}/report/export", earningsController.Export)
}
