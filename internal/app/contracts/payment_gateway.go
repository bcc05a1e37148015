package contracts

import (
	"context"

	"consultation-service/internal/pkg/dto/requests"
	"consultation-service/internal/pkg/dto/responses"
)

type PaymentGatewayService interface {
	CreateAuthorization(ctx context.Context, request *requests.GatewayAuthorization) (*responses.GatewayAuthorization, error)
	Capture(ctx context.Context, authorizationID string) (*responses.GatewayAuthorizationStatus, error)
	Cancel(ctx context.Context, authorizationID string) (*responses.GatewayAuthorizationStatus, error)
}
