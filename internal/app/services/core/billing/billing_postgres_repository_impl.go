package billing

import (
	"context"
	"database/sql"

	"consultation-service/internal/app/contracts"
	"consultation-service/internal/app/models"
	"consultation-service/internal/pkg/exceptions"
	"consultation-service/internal/pkg/queries"
)

type billingPostgresRepository struct {
	DB *sql.DB
}

func NewBillingPostgresRepository(db *sql.DB) contracts.BillingRepository {
	return &billingPostgresRepository{
		DB: db,
	}
}

func (repo *billingPostgresRepository) FindBillingProfileByPatientID(ctx context.Context, patientID int64) (*models.BillingProfile, error) {
	var profile models.BillingProfile
	err := repo.DB.QueryRowContext(ctx, queries.GetBillingProfileByPatientID, patientID).Scan(
		&profile.PatientID,
		&profile.CustomerRef,
		&profile.PaymentMethodRef,
		&profile.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, exceptions.ErrPostgresDBFindData(err)
	}
	return &profile, nil
}

func (repo *billingPostgresRepository) FindDoctorFeeByDoctorID(ctx context.Context, doctorID int64) (*models.DoctorFee, error) {
	var fee models.DoctorFee
	err := repo.DB.QueryRowContext(ctx, queries.GetDoctorFeeByDoctorID, doctorID).Scan(
		&fee.DoctorID,
		&fee.ConsultationFee,
		&fee.EmergencyFee,
		&fee.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, exceptions.ErrPostgresDBFindData(err)
	}
	return &fee, nil
}
