package contracts

import (
	"context"

	"consultation-service/internal/app/models"
)

type BillingRepository interface {
	FindBillingProfileByPatientID(ctx context.Context, patientID int64) (*models.BillingProfile, error)
	FindDoctorFeeByDoctorID(ctx context.Context, doctorID int64) (*models.DoctorFee, error)
}
