package contracts

import (
	"context"
	"time"

	"consultation-service/internal/app/models"
)

type EarningsRepository interface {
	CreateIfAbsent(ctx context.Context, line *models.EarningsLine) (*models.EarningsLine, error)
	FindByAppointmentID(ctx context.Context, appointmentID int64) (*models.EarningsLine, error)
	FindByDoctorAndRange(ctx context.Context, doctorID int64, from, to time.Time) ([]models.EarningsLine, error)
}

type EarningsUsecase interface {
	ComputeEarnings(ctx context.Context, appointmentID int64) (int64, error)
	MonthlyReport(ctx context.Context, doctorID int64, from, to time.Time) (*models.EarningsReport, error)
	ExportMonthlyReport(ctx context.Context, doctorID int64, month string) (*models.ExportedReport, error)
}
