package contracts

import (
	"context"

	"consultation-service/internal/app/models"
)

type PlanRepository interface {
	FindByName(ctx context.Context, name string) (*models.Plan, error)
}

type PlanCatalog interface {
	GetPlan(ctx context.Context, name string) (*models.Plan, error)
}
