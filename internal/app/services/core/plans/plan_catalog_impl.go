package plans

import (
	"context"
	"sync"
	"time"

	"consultation-service/internal/app/config"
	"consultation-service/internal/app/contracts"
	"consultation-service/internal/app/models"
	"consultation-service/internal/pkg/constvars"
	"consultation-service/internal/pkg/exceptions"
	"consultation-service/internal/pkg/utils"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

type planCatalog struct {
	PlanRepository  contracts.PlanRepository
	RedisRepository contracts.RedisRepository
	InternalConfig  *config.InternalConfig
	Log             *zap.Logger
}

var (
	planCatalogInstance contracts.PlanCatalog
	oncePlanCatalog     sync.Once
)

func NewPlanCatalog(
	planRepository contracts.PlanRepository,
	redisRepository contracts.RedisRepository,
	internalConfig *config.InternalConfig,
	logger *zap.Logger,
) contracts.PlanCatalog {
	oncePlanCatalog.Do(func() {
		planCatalogInstance = &planCatalog{
			PlanRepository:  planRepository,
			RedisRepository: redisRepository,
			InternalConfig:  internalConfig,
			Log:             logger,
		}
	})
	return planCatalogInstance
}

// GetPlan reads through the redis cache; cache failures fall back to the database.
func (uc *planCatalog) GetPlan(ctx context.Context, name string) (*models.Plan, error) {
	requestID := utils.RequestIDFromContext(ctx)
	cacheKey := utils.GeneratePlanCacheKey(name)

	cached, err := uc.RedisRepository.Get(ctx, cacheKey)
	if err != nil {
		uc.Log.Warn("planCatalog.GetPlan cache read failed, falling back to database",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingRedisKey, cacheKey),
			zap.Error(err),
		)
	} else if cached != "" {
		var plan models.Plan
		if err := json.Unmarshal([]byte(cached), &plan); err == nil {
			return &plan, nil
		}
		uc.Log.Warn("planCatalog.GetPlan discarding undecodable cache entry",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingRedisKey, cacheKey),
		)
	}

	plan, err := uc.PlanRepository.FindByName(ctx, name)
	if err != nil {
		uc.Log.Error("planCatalog.GetPlan error fetching plan",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingPlanNameKey, name),
			zap.Error(err),
		)
		return nil, err
	}
	if plan == nil {
		return nil, exceptions.ErrPlanNotFound(nil, name)
	}

	ttl := time.Duration(uc.InternalConfig.Settlement.PlanCacheTTLInMinutes) * time.Minute
	if err := uc.RedisRepository.Set(ctx, cacheKey, plan, ttl); err != nil {
		uc.Log.Warn("planCatalog.GetPlan cache write failed",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingRedisKey, cacheKey),
			zap.Error(err),
		)
	}

	return plan, nil
}
