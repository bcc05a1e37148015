package contracts

import (
	"context"
	"time"

	"consultation-service/internal/app/models"
	"consultation-service/internal/pkg/dto/requests"
	"consultation-service/internal/pkg/dto/responses"
)

type AppointmentRepository interface {
	Create(ctx context.Context, appointment *models.Appointment) (*models.Appointment, error)
	FindByID(ctx context.Context, appointmentID int64) (*models.Appointment, error)
	AssignDoctor(ctx context.Context, appointmentID, doctorID int64) (*models.Appointment, error)
	MarkIncludedInPlan(ctx context.Context, appointmentID int64) (*models.Appointment, error)
	MarkAuthorized(ctx context.Context, appointmentID int64, authorizationID string, amount int64) (*models.Appointment, error)
	MarkPaymentCompleted(ctx context.Context, appointmentID int64, authorizationID string) (*models.Appointment, error)
	MarkPaymentCancelled(ctx context.Context, appointmentID int64, authorizationID string) (*models.Appointment, error)
	TransitionStatus(ctx context.Context, appointmentID int64, from, to models.AppointmentStatus, allowedPayment []models.PaymentStatus) (*models.Appointment, error)
	SetVideoRoomURL(ctx context.Context, appointmentID int64, url string) error
	Touch(ctx context.Context, appointmentID int64) error
	FindStale(ctx context.Context, cutoff time.Time, limit int) ([]models.Appointment, error)
	FindActiveEmergencies(ctx context.Context) ([]models.Appointment, error)
}

type AppointmentUsecase interface {
	Book(ctx context.Context, actor *models.Actor, request *requests.BookAppointment) (*models.Appointment, error)
	BookEmergency(ctx context.Context, actor *models.Actor, request *requests.BookEmergencyAppointment) (*models.Appointment, error)
	Get(ctx context.Context, actor *models.Actor, appointmentID int64) (*models.Appointment, error)
	Confirm(ctx context.Context, actor *models.Actor, appointmentID int64) (*models.Appointment, error)
	Start(ctx context.Context, actor *models.Actor, appointmentID int64) (*models.Appointment, error)
	Complete(ctx context.Context, actor *models.Actor, appointmentID int64) (*models.Appointment, error)
	Cancel(ctx context.Context, actor *models.Actor, appointmentID int64) (*models.Appointment, error)
	CancelStale(ctx context.Context, actor *models.Actor, olderThan time.Time) (*responses.StaleCancellation, error)
	ListActiveEmergencies(ctx context.Context, actor *models.Actor) ([]models.Appointment, error)
}
