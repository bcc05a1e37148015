package plans

import (
	"context"
	"database/sql"

	"consultation-service/internal/app/contracts"
	"consultation-service/internal/app/models"
	"consultation-service/internal/pkg/exceptions"
	"consultation-service/internal/pkg/queries"
)

type planPostgresRepository struct {
	DB *sql.DB
}

func NewPlanPostgresRepository(db *sql.DB) contracts.PlanRepository {
	return &planPostgresRepository{
		DB: db,
	}
}

func (repo *planPostgresRepository) FindByName(ctx context.Context, name string) (*models.Plan, error) {
	var plan models.Plan
	err := repo.DB.QueryRowContext(ctx, queries.GetPlanByName, name).Scan(
		&plan.Name,
		&plan.EmergencyQuota.Unlimited,
		&plan.EmergencyQuota.Count,
		&plan.SpecialistDiscountPct,
		&plan.EmergencyIncludedMinutes,
		&plan.CreatedAt,
		&plan.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, exceptions.ErrPostgresDBFindData(err)
	}
	return &plan, nil
}
