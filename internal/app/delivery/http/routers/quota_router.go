package routers

import (
	"consultation-service/internal/app/delivery/http/controllers"

	"github.com/go-chi/chi/v5"
)

func attachQuotaRoutes(router chi.Router, quotaController *controllers.QuotaController) {
	router.Get("/{patientID}", quotaController.FindByPatientID)
	router.Put("/{patientID}/cycle", quotaController.ResetCycle)
}
