package contracts

import (
	"context"

	"consultation-service/internal/app/models"
)

type EventPublisher interface {
	Publish(ctx context.Context, event models.SettlementEvent) error
}
