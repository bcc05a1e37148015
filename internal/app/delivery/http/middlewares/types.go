package middlewares

import (
	"consultation-service/internal/app/config"
	"consultation-service/internal/app/contracts"

	"go.uber.org/zap"
)

type Middlewares struct {
	Log            *zap.Logger
	InternalConfig *config.InternalConfig
	AccessControl  contracts.AccessControl
}

func NewMiddlewares(logger *zap.Logger, internalConfig *config.InternalConfig, accessControl contracts.AccessControl) *Middlewares {
	return &Middlewares{
		Log:            logger,
		InternalConfig: internalConfig,
		AccessControl:  accessControl,
	}
}
