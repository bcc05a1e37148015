package routers

import (
	"consultation-service/internal/app/delivery/http/controllers"

	"github.com/go-chi/chi/v5"
)

func attachAppointmentRoutes(router chi.Router, appointmentController *controllers.AppointmentController) {
	router.Post("/", appointmentController.Book)
	router.Post("/emergency", appointmentController.BookEmergency)
	router.Post("/stale/cancel", appointmentController.CancelStale)
	router.Get("/emergencies/active", appointmentController.ListActiveEmergencies)
	router.Get("/{id}", appointmentController.Get)
	router.Post("/{id}/confirm", appointmentController.Confirm)
	router.Post("/{id}/start", appointmentController.Start)
	router.Post("/{id}/complete", appointmentController.Complete)
	router.Post("/{id}/cancel", appointmentController.Cancel)
}
