package contracts

import (
	"context"
	"time"

	"consultation-service/internal/app/models"
)

type QuotaRepository interface {
	FindByPatientID(ctx context.Context, patientID int64) (*models.QuotaEntry, error)
	ExistsUsage(ctx context.Context, appointmentID int64) (bool, error)
	ConsumeOnce(ctx context.Context, patientID, appointmentID int64, decrementCounter bool, now time.Time) (bool, error)
	Upsert(ctx context.Context, entry *models.QuotaEntry) (*models.QuotaEntry, error)
}

type QuotaUsecase interface {
	HasRemainingQuota(ctx context.Context, patientID int64) (*models.QuotaStatus, error)
	DecrementOnce(ctx context.Context, patientID, appointmentID int64) (bool, error)
	HasConsumedQuota(ctx context.Context, appointmentID int64) (bool, error)
	ResetCycle(ctx context.Context, patientID int64, planName string, cycleStart, cycleEnd time.Time) (*models.QuotaEntry, error)
	PlanForPatient(ctx context.Context, patientID int64) (*models.Plan, error)
}
