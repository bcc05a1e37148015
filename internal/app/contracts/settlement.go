package contracts

import (
	"context"

	"consultation-service/internal/app/models"
	"consultation-service/internal/pkg/dto/requests"
	"consultation-service/internal/pkg/dto/responses"
)

type SettlementUsecase interface {
	RequestPreauthorization(ctx context.Context, actor *models.Actor, appointmentID int64, request *requests.Preauthorization) (*responses.Preauthorization, error)
	CapturePayment(ctx context.Context, actor *models.Actor, appointmentID int64) (*models.Appointment, error)
	CancelPayment(ctx context.Context, actor *models.Actor, appointmentID int64) (*models.Appointment, error)
}
