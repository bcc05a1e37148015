package plans

import (
	"context"
	"errors"
	"testing"
	"time"

	"consultation-service/internal/app/config"
	"consultation-service/internal/app/contracts"
	"consultation-service/internal/app/models"
	"consultation-service/internal/pkg/exceptions"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubPlanRepository struct {
	contracts.PlanRepository
	plans map[string]*models.Plan
	calls int
}

func (s *stubPlanRepository) FindByName(_ context.Context, name string) (*models.Plan, error) {
	s.calls++
	return s.plans[name], nil
}

type stubRedisRepository struct {
	values  map[string]string
	getErr  error
	setErr  error
	setKeys []string
}

func (s *stubRedisRepository) Get(_ context.Context, key string) (string, error) {
	if s.getErr != nil {
		return "", s.getErr
	}
	return s.values[key], nil
}

func (s *stubRedisRepository) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	if s.setErr != nil {
		return s.setErr
	}
	raw, _ := json.Marshal(value)
	s.values[key] = string(raw)
	s.setKeys = append(s.setKeys, key)
	return nil
}

func (s *stubRedisRepository) Delete(_ context.Context, key string) error {
	delete(s.values, key)
	return nil
}

func (s *stubRedisRepository) TrySetNX(_ context.Context, key string, value interface{}, _ time.Duration) (bool, error) {
	if _, ok := s.values[key]; ok {
		return false, nil
	}
	raw, _ := json.Marshal(value)
	s.values[key] = string(raw)
	return true, nil
}

func newTestCatalog(repo contracts.PlanRepository, cache contracts.RedisRepository) *planCatalog {
	cfg := &config.InternalConfig{}
	cfg.Settlement.PlanCacheTTLInMinutes = 10
	return &planCatalog{
		PlanRepository:  repo,
		RedisRepository: cache,
		InternalConfig:  cfg,
		Log:             zap.NewNop(),
	}
}

func basicPlan() *models.Plan {
	return &models.Plan{
		Name:                     "basic",
		EmergencyQuota:           models.EmergencyQuota{Count: 1},
		EmergencyIncludedMinutes: 30,
	}
}

func TestGetPlanReadsThroughCache(t *testing.T) {
	repo := &stubPlanRepository{plans: map[string]*models.Plan{"basic": basicPlan()}}
	cache := &stubRedisRepository{values: map[string]string{}}
	catalog := newTestCatalog(repo, cache)

	plan, err := catalog.GetPlan(context.Background(), "basic")
	require.NoError(t, err)
	assert.Equal(t, 1, plan.EmergencyQuota.Count)
	assert.Equal(t, []string{"plan:basic"}, cache.setKeys)

	plan, err = catalog.GetPlan(context.Background(), "basic")
	require.NoError(t, err)
	assert.Equal(t, "basic", plan.Name)
	assert.Equal(t, 1, repo.calls)
}

func TestGetPlanFallsBackWhenCacheUnavailable(t *testing.T) {
	repo := &stubPlanRepository{plans: map[string]*models.Plan{"basic": basicPlan()}}
	cache := &stubRedisRepository{
		values: map[string]string{},
		getErr: errors.New("connection refused"),
		setErr: errors.New("connection refused"),
	}
	catalog := newTestCatalog(repo, cache)

	plan, err := catalog.GetPlan(context.Background(), "basic")
	require.NoError(t, err)
	assert.Equal(t, "basic", plan.Name)
	assert.Equal(t, 1, repo.calls)
}

func TestGetPlanIgnoresCorruptCacheEntry(t *testing.T) {
	repo := &stubPlanRepository{plans: map[string]*models.Plan{"basic": basicPlan()}}
	cache := &stubRedisRepository{values: map[string]string{"plan:basic": "{not json"}}
	catalog := newTestCatalog(repo, cache)

	plan, err := catalog.GetPlan(context.Background(), "basic")
	require.NoError(t, err)
	assert.Equal(t, "basic", plan.Name)
	assert.Equal(t, 1, repo.calls)
}

func TestGetPlanNotFound(t *testing.T) {
	repo := &stubPlanRepository{plans: map[string]*models.Plan{}}
	cache := &stubRedisRepository{values: map[string]string{}}
	catalog := newTestCatalog(repo, cache)

	_, err := catalog.GetPlan(context.Background(), "platinum")
	assert.True(t, exceptions.IsKind(err, exceptions.KindPlanNotFound))
}
